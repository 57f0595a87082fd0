package dashboard

import (
	"time"

	"github.com/sibintb/submanager/internal/lib/dates"
	"github.com/sibintb/submanager/internal/models"
)

// Stats holds the aggregate counters of the dashboard header.
type Stats struct {
	// TotalMonthly sums the price of active subscriptions whose cycle label
	// mentions "Month". Yearly plans are not converted and do not count.
	TotalMonthly  float64 `json:"totalMonthly"`
	ActiveCount   int     `json:"activeCount"`
	ExpiringCount int     `json:"expiringCount"`
}

// ComputeStats aggregates list as of today.
func ComputeStats(list []models.Subscription, today time.Time) Stats {
	var st Stats
	for _, s := range list {
		if !s.Active {
			continue
		}
		st.ActiveCount++
		if s.IsMonthly() {
			st.TotalMonthly += s.Price
		}
		if _, ok := daysLeft(s, today); ok {
			st.ExpiringCount++
		}
	}
	return st
}

// TotalActiveSpend sums the price of every active subscription regardless of
// cycle. It always equals the sum of CategoryBreakdown values.
func TotalActiveSpend(list []models.Subscription) float64 {
	var total float64
	for _, s := range list {
		if s.Active {
			total += s.Price
		}
	}
	return total
}

// daysLeft returns the days until the next payment of s and whether that falls
// inside the notification window. Unparseable dates are never in the window.
func daysLeft(s models.Subscription, today time.Time) (int, bool) {
	days, err := dates.DaysUntil(s.NextPayment, today)
	if err != nil {
		return 0, false
	}
	return days, days >= 0 && days <= ExpiringWindowDays
}
