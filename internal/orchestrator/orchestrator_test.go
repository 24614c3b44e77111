package orchestrator

import "testing"

func TestAddDays_AdvancesCalendarDate(t *testing.T) {
	got := addDays("2026-01-01", 6)
	if got != "2026-01-07" {
		t.Errorf("expected 2026-01-07, got %s", got)
	}
}

func TestAddDays_CrossesMonthBoundary(t *testing.T) {
	got := addDays("2026-01-30", 3)
	if got != "2026-02-02" {
		t.Errorf("expected 2026-02-02, got %s", got)
	}
}

func TestAddDays_ZeroOffsetReturnsSameDate(t *testing.T) {
	got := addDays("2026-03-15", 0)
	if got != "2026-03-15" {
		t.Errorf("expected 2026-03-15, got %s", got)
	}
}

func TestAddDays_InvalidInputReturnsUnchanged(t *testing.T) {
	got := addDays("not-a-date", 5)
	if got != "not-a-date" {
		t.Errorf("expected input to be returned unchanged on parse failure, got %s", got)
	}
}
