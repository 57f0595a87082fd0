package csvio

import (
	"strconv"
	"strings"

	"github.com/sibintb/submanager/internal/models"
)

// templateRow is the example data row of the import template.
var templateRow = []string{"Netflix Example", "15.99", "1 Month", "Entertainment", "2024-12-31", "true"}

// Export renders list with the header
// name,price,cycle,category,nextPayment,active,currency followed by one row per
// record, in list order. Rows are separated by "\n" and the text has no
// trailing newline. Values are written as is; a comma inside a value shifts the
// remaining columns of its row.
func Export(list []models.Subscription) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportColumns, delimiter))
	for _, s := range list {
		b.WriteString(newline)
		b.WriteString(strings.Join([]string{
			s.Name,
			FormatPrice(s.Price),
			s.Cycle,
			s.Category,
			s.NextPayment,
			strconv.FormatBool(s.Active),
			s.CurrencyOrDefault(),
		}, delimiter))
	}
	return b.String()
}

// Template returns the import template: the required header and one example row.
func Template() string {
	return strings.Join(RequiredColumns, delimiter) + newline + strings.Join(templateRow, delimiter)
}

// FormatPrice writes a price in its shortest decimal form: 15.99, 10, 0.5.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
