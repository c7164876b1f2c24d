package util

import "time"

// NowISO returns the current UTC time as an ISO-8601 string. All record
// timestamps are stored in this format.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}
