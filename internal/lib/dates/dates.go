// Package dates works with the ISO calendar dates (2006-01-02) stored on
// subscriptions: parsing, formatting and day distances.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO 8601 calendar date layout used by records and CSV files.
const Layout = time.DateOnly

const day = 24 * time.Hour

// Parse reads an ISO calendar date as UTC midnight.
func Parse(s string) (time.Time, error) {
	const op = "dates.Parse"
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Format returns the UTC calendar date of t in ISO form.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// DaysUntil returns the number of days from today to date, rounded up.
//
// The date is taken as UTC midnight and today as the given instant, so a
// payment due later today yields 0 once today is past midnight and 1 before.
// Past-due dates give negative values.
func DaysUntil(date string, today time.Time) (int, error) {
	target, err := Parse(date)
	if err != nil {
		return 0, err
	}
	diff := target.Sub(today)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days), nil
}

// Clock returns the current instant. Services take a Clock instead of calling
// time.Now so that day computations are reproducible in tests.
type Clock func() time.Time

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}
