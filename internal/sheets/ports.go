// Package sheets declares the outbound ports for pushing subscriptions to a
// shared spreadsheet, along with the value layout every adapter writes.
package sheets

import (
	"context"

	"github.com/sibintb/submanager/internal/models"
)

// SubscriptionWriter replaces the content of the target sheet with list.
type SubscriptionWriter interface {
	WriteSubscriptions(ctx context.Context, list []models.Subscription) (rangeRef string, err error)
}

// Header is the first row written by every adapter.
var Header = []any{"name", "price", "cycle", "category", "nextPayment", "active", "currency"}

// Values lays list out as sheet rows, header first.
func Values(list []models.Subscription) [][]any {
	values := make([][]any, 0, len(list)+1)
	values = append(values, Header)
	for _, s := range list {
		values = append(values, []any{s.Name, s.Price, s.Cycle, s.Category, s.NextPayment, s.Active, s.CurrencyOrDefault()})
	}
	return values
}
