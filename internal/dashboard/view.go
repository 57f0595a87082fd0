package dashboard

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sibintb/submanager/internal/models"
)

// AllCategories disables the category filter.
const AllCategories = "All"

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Sort keys, named after the JSON fields of models.Subscription.
const (
	SortByID          = "id"
	SortByName        = "name"
	SortByPrice       = "price"
	SortByCycle       = "cycle"
	SortByCategory    = "category"
	SortByNextPayment = "nextPayment"
	SortByActive      = "active"
	SortByCurrency    = "currency"
)

// Query selects and orders the rows of the subscription table.
type Query struct {
	Search        string `json:"search"`
	Category      string `json:"category"`
	SortKey       string `json:"sort"`
	SortDirection string `json:"dir"`
}

// DefaultQuery shows every category ordered by next payment date.
func DefaultQuery() Query {
	return Query{Category: AllCategories, SortKey: SortByNextPayment, SortDirection: Asc}
}

// ToggleSort returns the query after a click on the key column header: the
// active ascending column flips to descending, anything else sorts ascending.
func (q Query) ToggleSort(key string) Query {
	dir := Asc
	if q.SortKey == key && q.SortDirection == Asc {
		dir = Desc
	}
	q.SortKey = key
	q.SortDirection = dir
	return q
}

// FilterAndSort returns a new slice with the rows of list matching q, ordered
// by q.SortKey. The sort is stable; an unknown key keeps the input order.
func FilterAndSort(list []models.Subscription, q Query) []models.Subscription {
	fold := cases.Fold()
	term := fold.String(q.Search)

	out := make([]models.Subscription, 0, len(list))
	for _, s := range list {
		if q.Category != "" && q.Category != AllCategories && s.Category != q.Category {
			continue
		}
		if term != "" && !strings.Contains(fold.String(s.Name), term) {
			continue
		}
		out = append(out, s)
	}

	less := comparator(q.SortKey, fold)
	if less == nil {
		return out
	}
	if q.SortDirection == Desc {
		slices.SortStableFunc(out, func(a, b models.Subscription) int { return less(b, a) })
	} else {
		slices.SortStableFunc(out, less)
	}
	return out
}

func comparator(key string, fold cases.Caser) func(a, b models.Subscription) int {
	text := func(field func(models.Subscription) string) func(a, b models.Subscription) int {
		return func(a, b models.Subscription) int {
			return strings.Compare(fold.String(field(a)), fold.String(field(b)))
		}
	}

	switch key {
	case SortByID:
		return text(func(s models.Subscription) string { return s.ID })
	case SortByName:
		return text(func(s models.Subscription) string { return s.Name })
	case SortByCycle:
		return text(func(s models.Subscription) string { return s.Cycle })
	case SortByCategory:
		return text(func(s models.Subscription) string { return s.Category })
	case SortByNextPayment:
		return text(func(s models.Subscription) string { return s.NextPayment })
	case SortByCurrency:
		return text(func(s models.Subscription) string { return s.CurrencyOrDefault() })
	case SortByPrice:
		return func(a, b models.Subscription) int { return cmp.Compare(a.Price, b.Price) }
	case SortByActive:
		return func(a, b models.Subscription) int { return boolRank(a.Active) - boolRank(b.Active) }
	default:
		return nil
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
