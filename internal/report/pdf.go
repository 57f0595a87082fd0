package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/sibintb/submanager/internal/models"
)

// column widths in millimetres on a landscape A4 page
var pdfWidths = []float64{70, 35, 35, 50, 40, 25}

const (
	pdfFont    = "Helvetica"
	lineHeight = 8.0
)

// WritePDF writes list as a one-table landscape report.
func WritePDF(w io.Writer, list []models.Subscription) error {
	const op = "report.WritePDF"

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range TableHeader {
			pdf.CellFormat(pdfWidths[i], lineHeight, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 10)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 12, Title, "", 1, "L", false, 0, "")
	pdf.Ln(4)
	header()

	for _, row := range Rows(list) {
		for i, v := range row {
			pdf.CellFormat(pdfWidths[i], lineHeight, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
