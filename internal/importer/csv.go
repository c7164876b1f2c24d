// Package importer turns uploaded bank exports (CSV and OFX) into
// normalized transactions ready for review before insertion.
package importer

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// MappingWarning is returned when the caller has not yet told us which
// columns hold the date and the amount.
const MappingWarning = "Please map the date and amount columns to continue."

// maxRowWarnings caps how many per-row parse failures are reported.
const maxRowWarnings = 20

// sampleRows is how many raw rows a preview includes.
const sampleRows = 5

// CSVOptions configures one CSV parse. Column fields name columns from the
// detected column list; empty date or amount column puts the result in
// mapping mode.
type CSVOptions struct {
	Delimiter         string
	HasHeader         bool
	DateColumn        string
	AmountColumn      string
	DescriptionColumn string
	CategoryColumn    string
	DateFormat        string
}

// ParsedTransaction is one normalized row.
type ParsedTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// Preview is the result of parsing an upload. When NeedsMapping is set,
// Transactions is empty and Warnings carries MappingWarning.
type Preview struct {
	Columns      []string            `json:"columns"`
	SampleRows   [][]string          `json:"sample_rows"`
	Transactions []ParsedTransaction `json:"transactions"`
	Warnings     []string            `json:"warnings"`
	NeedsMapping bool                `json:"needs_mapping"`
}

var currencyRunes = regexp.MustCompile(`[€$£¥₹\s]`)
var decimalComma = regexp.MustCompile(`^-?[\d.]*,\d{2}$`)

// DecodeText interprets raw bytes as UTF-8, falling back to Latin-1 for
// legacy bank exports.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ParseAmount normalizes a raw amount string into a float. Currency symbols
// and whitespace are stripped. When both separators appear, whichever comes
// last is the decimal separator; a lone comma followed by exactly two digits
// is treated as a decimal comma, any other comma as a thousands separator.
func ParseAmount(raw string) (float64, error) {
	s := currencyRunes.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if decimalComma.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", raw)
	}
	return d.InexactFloat64(), nil
}

// dateLayouts are tried in order after the caller's preferred layout.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"2006/01/02",
	"02-01-2006",
	"01-02-2006",
	"20060102",
}

// ParseDate parses a raw date using the preferred layout first, then a set
// of common bank formats, and returns it as YYYY-MM-DD.
func ParseDate(raw, preferred string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	layouts := dateLayouts
	if preferred != "" {
		layouts = append([]string{preferred}, dateLayouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", raw)
}

// ParseCSV decodes and parses an uploaded CSV. Without a date and amount
// column mapping it returns the detected columns and sample rows so the
// caller can map them; with a mapping it returns normalized transactions,
// reporting rows it could not parse as warnings.
func ParseCSV(data []byte, opts CSVOptions) (*Preview, error) {
	text := DecodeText(data)

	reader := csv.NewReader(strings.NewReader(text))
	if opts.Delimiter != "" {
		reader.Comma = []rune(opts.Delimiter)[0]
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("the file contains no rows")
	}

	var columns []string
	var rows [][]string
	if opts.HasHeader {
		for _, name := range records[0] {
			columns = append(columns, strings.TrimSpace(name))
		}
		rows = records[1:]
	} else {
		for i := range records[0] {
			columns = append(columns, fmt.Sprintf("Column %d", i+1))
		}
		rows = records
	}

	preview := &Preview{Columns: columns}
	for i := 0; i < len(rows) && i < sampleRows; i++ {
		preview.SampleRows = append(preview.SampleRows, rows[i])
	}

	if opts.DateColumn == "" || opts.AmountColumn == "" {
		preview.NeedsMapping = true
		preview.Warnings = append(preview.Warnings, MappingWarning)
		return preview, nil
	}

	dateIdx := columnIndex(columns, opts.DateColumn)
	amountIdx := columnIndex(columns, opts.AmountColumn)
	if dateIdx < 0 || amountIdx < 0 {
		return nil, fmt.Errorf("mapped column not found in file")
	}
	descIdx := columnIndex(columns, opts.DescriptionColumn)
	catIdx := columnIndex(columns, opts.CategoryColumn)

	for rowNum, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if dateIdx >= len(row) || amountIdx >= len(row) {
			preview.warn(fmt.Sprintf("Row %d: missing mapped columns, skipped", rowNum+1))
			continue
		}

		date, err := ParseDate(row[dateIdx], opts.DateFormat)
		if err != nil {
			preview.warn(fmt.Sprintf("Row %d: %v, skipped", rowNum+1, err))
			continue
		}
		amount, err := ParseAmount(row[amountIdx])
		if err != nil {
			preview.warn(fmt.Sprintf("Row %d: %v, skipped", rowNum+1, err))
			continue
		}

		tx := ParsedTransaction{Date: date, Amount: amount}
		if descIdx >= 0 && descIdx < len(row) {
			tx.Description = strings.TrimSpace(row[descIdx])
		}
		if catIdx >= 0 && catIdx < len(row) {
			tx.Category = strings.TrimSpace(row[catIdx])
		}
		preview.Transactions = append(preview.Transactions, tx)
	}

	return preview, nil
}

// warn appends a row warning unless the cap has been reached.
func (p *Preview) warn(msg string) {
	if len(p.Warnings) < maxRowWarnings {
		p.Warnings = append(p.Warnings, msg)
	}
}

func columnIndex(columns []string, name string) int {
	if name == "" {
		return -1
	}
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
