package handler

import (
	"testing"
	"time"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandOccurrences_NonRecurring(t *testing.T) {
	from := at("2025-05-01T00:00:00Z")
	to := at("2025-05-07T23:59:59Z")

	inside := expandOccurrences(at("2025-05-03T10:00:00Z"), "", from, to)
	if len(inside) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(inside))
	}
	outside := expandOccurrences(at("2025-05-09T10:00:00Z"), "", from, to)
	if len(outside) != 0 {
		t.Errorf("task after the window must not appear, got %d", len(outside))
	}
}

func TestExpandOccurrences_Daily(t *testing.T) {
	from := at("2025-05-01T00:00:00Z")
	to := at("2025-05-07T23:59:59Z")

	// Base before the window: the expansion fast-forwards into it.
	occ := expandOccurrences(at("2025-04-20T08:00:00Z"), "daily", from, to)
	if len(occ) != 7 {
		t.Fatalf("expected 7 daily occurrences in a 7-day window, got %d", len(occ))
	}
	if !occ[0].Equal(at("2025-05-01T08:00:00Z")) {
		t.Errorf("first occurrence = %v, want 2025-05-01T08:00:00Z", occ[0])
	}
}

func TestExpandOccurrences_Weekly(t *testing.T) {
	from := at("2025-05-01T00:00:00Z")
	to := at("2025-05-31T23:59:59Z")

	occ := expandOccurrences(at("2025-05-05T10:00:00Z"), "weekly", from, to)
	want := []string{
		"2025-05-05T10:00:00Z",
		"2025-05-12T10:00:00Z",
		"2025-05-19T10:00:00Z",
		"2025-05-26T10:00:00Z",
	}
	if len(occ) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(occ))
	}
	for i, w := range want {
		if !occ[i].Equal(at(w)) {
			t.Errorf("occurrence %d = %v, want %s", i, occ[i], w)
		}
	}
}

func TestExpandOccurrences_MonthlyKeepsTime(t *testing.T) {
	from := at("2025-06-01T00:00:00Z")
	to := at("2025-08-31T23:59:59Z")

	occ := expandOccurrences(at("2025-01-15T14:30:00Z"), "monthly", from, to)
	if len(occ) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occ))
	}
	if occ[0].Hour() != 14 || occ[0].Minute() != 30 {
		t.Errorf("occurrence must keep the base time of day, got %v", occ[0])
	}
}

func TestExpandOccurrences_BaseAfterWindow(t *testing.T) {
	from := at("2025-05-01T00:00:00Z")
	to := at("2025-05-07T23:59:59Z")
	occ := expandOccurrences(at("2025-06-01T00:00:00Z"), "daily", from, to)
	if len(occ) != 0 {
		t.Errorf("recurrence starting after the window yields nothing, got %d", len(occ))
	}
}

func TestExpandOccurrences_Capped(t *testing.T) {
	from := at("2020-01-01T00:00:00Z")
	to := at("2030-01-01T00:00:00Z")
	occ := expandOccurrences(at("2020-01-01T00:00:00Z"), "daily", from, to)
	if len(occ) != maxOccurrences {
		t.Errorf("expansion must cap at %d, got %d", maxOccurrences, len(occ))
	}
}
