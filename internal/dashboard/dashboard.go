// Package dashboard derives the figures shown on the dashboard from a list of
// subscriptions: spend statistics, the per-category breakdown, the filtered and
// sorted table and the upcoming-payment notifications.
//
// Every function is pure: it reads the given slice, never modifies it, and
// takes the reference instant "today" as a parameter.
package dashboard

import (
	"time"

	"github.com/sibintb/submanager/internal/models"
)

// ExpiringWindowDays is the inclusive horizon, in days, of the upcoming-payment
// notifications and of Stats.ExpiringCount.
const ExpiringWindowDays = 7

// Dashboard bundles the derived figures of one snapshot.
type Dashboard struct {
	Stats         Stats           `json:"stats"`
	Categories    []CategoryTotal `json:"categories"`
	Notifications []Notification  `json:"notifications"`
}

// Build computes the full dashboard of list as of today.
func Build(list []models.Subscription, today time.Time) Dashboard {
	return Dashboard{
		Stats:         ComputeStats(list, today),
		Categories:    CategoryBreakdown(list),
		Notifications: Notifications(list, today),
	}
}
