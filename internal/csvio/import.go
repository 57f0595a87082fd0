package csvio

import (
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sibintb/submanager/internal/lib/dates"
	"github.com/sibintb/submanager/internal/models"
)

// Defaults applied to empty or absent import values.
const (
	DefaultName  = "Unknown"
	DefaultCycle = "1 Month"
)

// Result is the outcome of a successful parse.
type Result struct {
	Records []models.Subscription `json:"records"`
	Valid   int                   `json:"valid"`
}

// Empty reports that the file parsed but produced no records.
func (r Result) Empty() bool {
	return r.Valid == 0
}

// Importer parses import files up to MaxSize bytes.
type Importer struct {
	MaxSize int64
}

// NewImporter returns an Importer with the given limit; a non-positive limit
// selects DefaultMaxSize.
func NewImporter(maxSize int64) Importer {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return Importer{MaxSize: maxSize}
}

// Import parses data with DefaultMaxSize. See Importer.Import.
func Import(data []byte, today time.Time) (Result, error) {
	return NewImporter(DefaultMaxSize).Import(data, today)
}

// Import turns an interchange file into candidate records without IDs.
//
// The whole file is rejected with ErrFileTooLarge, ErrMalformedFile or a
// *MissingColumnsError; individual rows never fail. Blank lines are skipped,
// columns are matched by header position and unknown columns are ignored.
// Empty values fall back to defaults: name "Unknown", price 0, cycle "1 Month",
// category "Other" and the payment date of today. A row is active only when
// its active value is exactly "true". Currency is always USD.
func (im Importer) Import(data []byte, today time.Time) (Result, error) {
	if int64(len(data)) > im.MaxSize {
		return Result{}, ErrFileTooLarge
	}

	lines := strings.Split(string(data), newline)
	if len(lines) < 2 {
		return Result{}, ErrMalformedFile
	}

	header := splitRow(lines[0])
	var missing []string
	for _, col := range RequiredColumns {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Result{}, &MissingColumnsError{Columns: missing}
	}

	todayISO := dates.Format(today)
	records := make([]models.Subscription, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if trim(line) == "" {
			continue
		}
		values := splitRow(line)
		entry := make(map[string]string, len(header))
		for i, col := range header {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			entry[col] = v
		}
		records = append(records, models.Subscription{
			Name:        orDefault(entry[ColName], DefaultName),
			Price:       ParsePrice(entry[ColPrice]),
			Cycle:       orDefault(entry[ColCycle], DefaultCycle),
			Category:    orDefault(entry[ColCategory], models.OtherCategory),
			NextPayment: orDefault(entry[ColNextPayment], todayISO),
			Active:      entry[ColActive] == "true",
			Currency:    models.DefaultCurrency,
		})
	}

	return Result{Records: records, Valid: len(records)}, nil
}

// ParsePrice reads the leading decimal number of s, so "15.99 USD" gives 15.99.
// Anything without a leading number, and negative amounts, give 0.
func ParsePrice(s string) float64 {
	s = trim(s)
	n := numberPrefix(s)
	if n == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// numberPrefix returns the length of the longest prefix of s shaped like
// [+-]digits[.digits][e[+-]digits], or 0 when it holds no mantissa digit.
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func splitRow(line string) []string {
	fields := strings.Split(line, delimiter)
	for i, f := range fields {
		fields[i] = trim(f)
	}
	return fields
}

// trim strips white space and a byte order mark, which spreadsheet tools put
// in front of the first header.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
