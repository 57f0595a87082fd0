package dashboard

import "github.com/sibintb/submanager/internal/models"

// CategoryTotal is one bar of the category chart.
type CategoryTotal struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CategoryBreakdown sums the price of active subscriptions per category.
// Entries appear in the order their category is first seen in list; inactive
// records neither add to a total nor create an entry.
func CategoryBreakdown(list []models.Subscription) []CategoryTotal {
	out := make([]CategoryTotal, 0)
	index := make(map[string]int)
	for _, s := range list {
		if !s.Active {
			continue
		}
		i, ok := index[s.Category]
		if !ok {
			i = len(out)
			index[s.Category] = i
			out = append(out, CategoryTotal{Label: s.Category})
		}
		out[i].Value += s.Price
	}
	return out
}
