// Package csvio converts subscriptions to and from the comma-separated
// interchange format of the dashboard.
//
// The format has a single header line and no quoting or escaping: values are
// expected to be free of commas. Export, Template and Import keep that
// contract byte for byte so that files produced by older exports and the
// published template keep importing.
package csvio

import (
	"errors"
	"fmt"
	"strings"
)

// File names and content type offered for download.
const (
	ExportFileName   = "subscriptions_export.csv"
	TemplateFileName = "import_template.csv"
	ContentType      = "text/csv; charset=utf-8"
)

// DefaultMaxSize is the largest accepted import payload, 2 MiB.
const DefaultMaxSize int64 = 2 * 1024 * 1024

const (
	delimiter = ","
	newline   = "\n"
)

// Column names of the interchange format.
const (
	ColName        = "name"
	ColPrice       = "price"
	ColCycle       = "cycle"
	ColCategory    = "category"
	ColNextPayment = "nextPayment"
	ColActive      = "active"
	ColCurrency    = "currency"
)

// RequiredColumns must all be present in an import header, in any order.
var RequiredColumns = []string{ColName, ColPrice, ColCycle, ColCategory, ColNextPayment, ColActive}

// exportColumns is the fixed header order of Export.
var exportColumns = []string{ColName, ColPrice, ColCycle, ColCategory, ColNextPayment, ColActive, ColCurrency}

var (
	// ErrFileTooLarge is returned for payloads above the importer's limit.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrMalformedFile is returned when the header or every data row is missing.
	ErrMalformedFile = errors.New("file must include headers and at least one data row")
)

// MissingColumnsError lists the required columns absent from an import header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// IsFormatError reports whether err aborts an import because of the file
// itself rather than a failure of the caller.
func IsFormatError(err error) bool {
	var missing *MissingColumnsError
	return errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrMalformedFile) || errors.As(err, &missing)
}

// Describe returns the message shown to the user for a rejected import file,
// or "" when err is not a format error.
func Describe(err error, maxSize int64) string {
	var missing *MissingColumnsError
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("File is too large. Maximum size allowed is %s.", sizeLabel(maxSize))
	case errors.As(err, &missing):
		return fmt.Sprintf("Invalid format. Missing columns: %s. Please use the template.", strings.Join(missing.Columns, ", "))
	case errors.Is(err, ErrMalformedFile):
		return "Invalid file content. Must include headers and at least one data row."
	default:
		return ""
	}
}

func sizeLabel(n int64) string {
	const mb = 1024 * 1024
	if n > 0 && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
