// Package models contains the domain structures: the subscription record, the
// user account, the cycle and category enumerations, and the request structs
// that arrive as JSON and are validated before reaching business logic.
package models

import "strings"

// DefaultCurrency is assumed for records that carry no currency.
const DefaultCurrency = "USD"

// Cycles lists the billing intervals offered by the subscription form.
var Cycles = []string{
	"1 Month", "3 Months", "4 Months", "6 Months",
	"1 Year", "2 Years", "3 Years", "4 Years", "5 Years",
}

// Categories lists the categories offered by the subscription form.
var Categories = []string{
	"Entertainment", "Software", "Infrastructure", "AI Tools", "Health", "Education", "Utilities",
}

// OtherCategory is assigned by the CSV importer when a row has no category.
const OtherCategory = "Other"

// Subscription is a recurring-payment record.
//
// NextPayment is kept as the ISO date string (2006-01-02) it was entered with;
// Cycle and Category may hold values outside the enumerations.
type Subscription struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Cycle       string  `json:"cycle"`
	Category    string  `json:"category"`
	NextPayment string  `json:"nextPayment"`
	Active      bool    `json:"active"`
	Currency    string  `json:"currency,omitempty"`
}

// CurrencyOrDefault returns Currency, or DefaultCurrency when it is empty.
func (s Subscription) CurrencyOrDefault() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}

// IsMonthly reports whether the cycle label mentions a month.
// "3 Months" counts, "1 Year" does not.
func (s Subscription) IsMonthly() bool {
	return strings.Contains(s.Cycle, "Month")
}

// DummySubscription is the subscription form as it arrives in a JSON request.
type DummySubscription struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Cycle       string  `json:"cycle" validate:"required,cycle"`
	Category    string  `json:"category" validate:"required,category"`
	NextPayment string  `json:"nextPayment" validate:"required,isodate"`
	Active      bool    `json:"active"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// ToSubscription converts the form into a record without an ID.
func (d DummySubscription) ToSubscription() Subscription {
	currency := d.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return Subscription{
		Name:        strings.TrimSpace(d.Name),
		Price:       d.Price,
		Cycle:       d.Cycle,
		Category:    d.Category,
		NextPayment: d.NextPayment,
		Active:      d.Active,
		Currency:    currency,
	}
}

// SubscriptionPatch carries a partial update; nil fields are left untouched.
type SubscriptionPatch struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Cycle       *string  `json:"cycle,omitempty" validate:"omitempty,cycle"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,category"`
	NextPayment *string  `json:"nextPayment,omitempty" validate:"omitempty,isodate"`
	Active      *bool    `json:"active,omitempty"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// Apply returns sub with every non-nil patch field applied.
func (p SubscriptionPatch) Apply(sub Subscription) Subscription {
	if p.Name != nil {
		sub.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		sub.Price = *p.Price
	}
	if p.Cycle != nil {
		sub.Cycle = *p.Cycle
	}
	if p.Category != nil {
		sub.Category = *p.Category
	}
	if p.NextPayment != nil {
		sub.NextPayment = *p.NextPayment
	}
	if p.Active != nil {
		sub.Active = *p.Active
	}
	if p.Currency != nil {
		sub.Currency = *p.Currency
	}
	return sub
}

// IsEmpty reports whether the patch changes nothing.
func (p SubscriptionPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Cycle == nil && p.Category == nil &&
		p.NextPayment == nil && p.Active == nil && p.Currency == nil
}
