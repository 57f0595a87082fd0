package models

// UpcomingPayment is the message the scheduler publishes for every active
// subscription due within the notification window.
type UpcomingPayment struct {
	SubscriptionID string  `json:"subscriptionId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	NextPayment    string  `json:"nextPayment"`
	DaysLeft       int     `json:"daysLeft"`
}
