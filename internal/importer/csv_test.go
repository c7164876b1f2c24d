package importer

import (
	"strings"
	"testing"
)

func TestParseAmount_Formats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1234.56", 1234.56},
		{"1,234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1234,56", 1234.56},
		{"1,234", 1234},
		{"-42.50", -42.5},
		{"€ 19,99", 19.99},
		{"$1,000.00", 1000},
		{"  -300  ", -300},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "€"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) should fail", in)
		}
	}
}

func TestParseDate_Fallbacks(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-05-14", "2025-05-14"},
		{"14/05/2025", "2025-05-14"},
		{"14.05.2025", "2025-05-14"},
		{"2025/05/14", "2025-05-14"},
		{"14-05-2025", "2025-05-14"},
		{"20250514", "2025-05-14"},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in, "")
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDate_PreferredLayoutWins(t *testing.T) {
	// 03/04 is ambiguous; the caller's layout decides.
	got, err := ParseDate("03/04/2025", "01/02/2006")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2025-03-04" {
		t.Errorf("got %q, want 2025-03-04 with MM/DD layout", got)
	}
}

func TestDecodeText_Latin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid as standalone UTF-8.
	raw := []byte{'c', 'a', 'f', 0xE9}
	if got := DecodeText(raw); got != "café" {
		t.Errorf("got %q, want café", got)
	}
	if got := DecodeText([]byte("plain utf-8")); got != "plain utf-8" {
		t.Errorf("valid UTF-8 must pass through, got %q", got)
	}
}

func TestParseCSV_NeedsMapping(t *testing.T) {
	data := []byte("Date,Amount,Description\n2025-05-01,-42.50,Groceries\n")
	preview, err := ParseCSV(data, CSVOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	if !preview.NeedsMapping {
		t.Fatal("expected mapping mode without date/amount columns")
	}
	if len(preview.Warnings) != 1 || preview.Warnings[0] != MappingWarning {
		t.Errorf("expected the mapping warning, got %v", preview.Warnings)
	}
	if len(preview.Columns) != 3 || preview.Columns[0] != "Date" {
		t.Errorf("unexpected columns %v", preview.Columns)
	}
	if len(preview.Transactions) != 0 {
		t.Error("mapping mode must not produce transactions")
	}
}

func TestParseCSV_WithMapping(t *testing.T) {
	data := []byte("Date;Amount;Description;Category\n" +
		"2025-05-01;-42,50;Groceries;Food\n" +
		"2025-05-02;1.500,00;Salary;Income\n")
	preview, err := ParseCSV(data, CSVOptions{
		Delimiter:         ";",
		HasHeader:         true,
		DateColumn:        "Date",
		AmountColumn:      "Amount",
		DescriptionColumn: "Description",
		CategoryColumn:    "Category",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(preview.Transactions))
	}
	first := preview.Transactions[0]
	if first.Date != "2025-05-01" || first.Amount != -42.5 || first.Description != "Groceries" || first.Category != "Food" {
		t.Errorf("unexpected first transaction %+v", first)
	}
	if preview.Transactions[1].Amount != 1500 {
		t.Errorf("expected 1500, got %v", preview.Transactions[1].Amount)
	}
}

func TestParseCSV_NoHeaderUsesColumnNames(t *testing.T) {
	data := []byte("2025-05-01,-10.00\n2025-05-02,-20.00\n")
	preview, err := ParseCSV(data, CSVOptions{
		DateColumn:   "Column 1",
		AmountColumn: "Column 2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Columns) != 2 || preview.Columns[1] != "Column 2" {
		t.Errorf("unexpected columns %v", preview.Columns)
	}
	if len(preview.Transactions) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(preview.Transactions))
	}
}

func TestParseCSV_BadRowsBecomeWarnings(t *testing.T) {
	data := []byte("Date,Amount\n" +
		"not-a-date,-10.00\n" +
		"2025-05-02,not-a-number\n" +
		"2025-05-03,-30.00\n")
	preview, err := ParseCSV(data, CSVOptions{
		HasHeader:    true,
		DateColumn:   "Date",
		AmountColumn: "Amount",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Transactions) != 1 {
		t.Errorf("expected 1 good transaction, got %d", len(preview.Transactions))
	}
	if len(preview.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", preview.Warnings)
	}
}

func TestParseCSV_WarningCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Date,Amount\n")
	for i := 0; i < 30; i++ {
		sb.WriteString("bad,bad\n")
	}
	preview, err := ParseCSV([]byte(sb.String()), CSVOptions{
		HasHeader:    true,
		DateColumn:   "Date",
		AmountColumn: "Amount",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Warnings) != maxRowWarnings {
		t.Errorf("warnings should cap at %d, got %d", maxRowWarnings, len(preview.Warnings))
	}
}

func TestParseCSV_Empty(t *testing.T) {
	if _, err := ParseCSV([]byte(""), CSVOptions{}); err == nil {
		t.Error("empty file should be an error")
	}
}

func TestOFXDescription(t *testing.T) {
	if got := ofxDescription("ACME", "invoice 42"); got != "ACME - invoice 42" {
		t.Errorf("got %q", got)
	}
	if got := ofxDescription("ACME", ""); got != "ACME" {
		t.Errorf("got %q", got)
	}
	if got := ofxDescription("", "memo only"); got != "memo only" {
		t.Errorf("got %q", got)
	}
}
