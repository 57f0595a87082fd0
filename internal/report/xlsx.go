package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sibintb/submanager/internal/models"
)

// SheetName is the only sheet of the XLSX export.
const SheetName = "Subscriptions"

var xlsxHeader = []any{"name", "price", "cycle", "category", "nextPayment", "active", "currency"}

// WriteXLSX writes list as a workbook with a header row followed by one row
// per record. Prices are numeric cells and active is a boolean cell.
func WriteXLSX(w io.Writer, list []models.Subscription) error {
	const op = "report.WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i, s := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		row := []any{s.Name, s.Price, s.Cycle, s.Category, s.NextPayment, s.Active, s.CurrencyOrDefault()}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
