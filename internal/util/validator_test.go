package util

import (
	"testing"
)

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{"2024-01-01", "2024-12-31", "2025-06-15"}
	for _, date := range testCases {
		if err := ValidateDate(date); err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_Invalid(t *testing.T) {
	testCases := []string{"", "2024-13-01", "2024-02-30", "01/01/2024", "not-a-date"}
	for _, date := range testCases {
		if err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateMonth_Valid(t *testing.T) {
	for _, month := range []string{"2024-01", "2025-12"} {
		if err := ValidateMonth(month); err != nil {
			t.Errorf("ValidateMonth(%q) error = %v, want nil", month, err)
		}
	}
}

func TestValidateMonth_Invalid(t *testing.T) {
	for _, month := range []string{"", "2024-13", "2024", "2024-1", "2024-01-01"} {
		if err := ValidateMonth(month); err == nil {
			t.Errorf("ValidateMonth(%q) error = nil, want error", month)
		}
	}
}

func TestMonthBounds_RegularMonth(t *testing.T) {
	start, end, err := MonthBounds("2025-04")
	if err != nil {
		t.Fatal(err)
	}
	if start != "2025-04-01" || end != "2025-04-30" {
		t.Errorf("MonthBounds(2025-04) = %s..%s, want 2025-04-01..2025-04-30", start, end)
	}
}

func TestMonthBounds_LeapFebruary(t *testing.T) {
	_, end, err := MonthBounds("2024-02")
	if err != nil {
		t.Fatal(err)
	}
	if end != "2024-02-29" {
		t.Errorf("February 2024 should end on the 29th, got %s", end)
	}
}
