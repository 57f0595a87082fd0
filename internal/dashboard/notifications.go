package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/sibintb/submanager/internal/models"
)

// Notification is an active subscription whose next payment is due within
// ExpiringWindowDays.
type Notification struct {
	models.Subscription
	DaysLeft int `json:"daysLeft"`
}

// Notifications lists the active subscriptions due between today (0 days) and
// ExpiringWindowDays days ahead, both inclusive, soonest first. Records due on
// the same day keep their relative order.
func Notifications(list []models.Subscription, today time.Time) []Notification {
	out := make([]Notification, 0)
	for _, s := range list {
		if !s.Active {
			continue
		}
		days, ok := daysLeft(s, today)
		if !ok {
			continue
		}
		out = append(out, Notification{Subscription: s, DaysLeft: days})
	}
	slices.SortStableFunc(out, func(a, b Notification) int {
		return a.DaysLeft - b.DaysLeft
	})
	return out
}

// DueIn phrases a DaysLeft value: "today", "tomorrow" or "in N days".
func DueIn(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
