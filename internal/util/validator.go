package util

import (
	"fmt"
	"time"
)

// ValidateDate checks a YYYY-MM-DD date string.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateMonth checks a YYYY-MM month string.
func ValidateMonth(monthStr string) error {
	if monthStr == "" {
		return fmt.Errorf("month is empty")
	}
	_, err := time.Parse("2006-01", monthStr)
	if err != nil {
		return fmt.Errorf("invalid month format: %w", err)
	}
	return nil
}

// MonthBounds returns the first and last calendar day of a YYYY-MM month.
func MonthBounds(monthStr string) (start, end string, err error) {
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid month format: %w", err)
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02"), nil
}
