package model

import "testing"

func TestDateRange_Days(t *testing.T) {
	dr := DateRange{StartDate: "2026-01-01", EndDate: "2026-01-03"}
	days, err := dr.Days()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2026-01-01", "2026-01-02", "2026-01-03"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, d := range want {
		if days[i] != d {
			t.Errorf("day %d: expected %s, got %s", i, d, days[i])
		}
	}
}

func TestDateRange_Days_InvalidFormat(t *testing.T) {
	dr := DateRange{StartDate: "not-a-date", EndDate: "2026-01-03"}
	if _, err := dr.Days(); err == nil {
		t.Error("expected error for invalid start date")
	}
}

func TestDateRange_Days_SingleDay(t *testing.T) {
	dr := DateRange{StartDate: "2026-01-01", EndDate: "2026-01-01"}
	days, err := dr.Days()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0] != "2026-01-01" {
		t.Errorf("expected single-day range, got %v", days)
	}
}
