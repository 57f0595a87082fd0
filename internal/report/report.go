// Package report renders subscription lists as spreadsheet and PDF documents.
package report

import (
	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/models"
)

// File names and content types of the generated documents.
const (
	XLSXFileName    = "subscriptions_export.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PDFFileName     = "subscriptions_export.pdf"
	PDFContentType  = "application/pdf"
)

// Title heads the PDF report.
const Title = "Subscription Report"

// TableHeader is the column set of the PDF table.
var TableHeader = []string{"Name", "Price", "Cycle", "Category", "Next Payment", "Active"}

// Rows formats list for display, one row per record in TableHeader order.
func Rows(list []models.Subscription) [][]string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		active := "No"
		if s.Active {
			active = "Yes"
		}
		rows = append(rows, []string{
			s.Name,
			csvio.FormatPrice(s.Price) + " " + s.CurrencyOrDefault(),
			s.Cycle,
			s.Category,
			s.NextPayment,
			active,
		})
	}
	return rows
}
