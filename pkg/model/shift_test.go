package model

import "testing"

func TestShift_IsNight_LateStartWithoutSpanningMidnight(t *testing.T) {
	s := &Shift{ShiftID: "evening", StartMinute: 21 * 60, EndMinute: 23 * 60, ShiftType: "day"}
	if !s.IsNight() {
		t.Error("expected a shift starting at 21:00 to be night even though it does not span midnight")
	}
}

func TestShift_IsNight_BySpanningMidnight(t *testing.T) {
	s := &Shift{ShiftID: "swing", StartMinute: 22 * 60, EndMinute: 6 * 60, ShiftType: "day"}
	if !s.IsNight() {
		t.Error("expected shift starting at 22:00 to be night regardless of ShiftType")
	}
}

func TestShift_IsNight_EarlyMorningStartIsNight(t *testing.T) {
	s := &Shift{ShiftID: "predawn", StartMinute: 5 * 60, EndMinute: 13 * 60, ShiftType: "day"}
	if !s.IsNight() {
		t.Error("expected a shift starting at 05:00 (before 06:00) to be night")
	}
}

func TestShift_IsNight_DayShiftIsNotNight(t *testing.T) {
	s := &Shift{ShiftID: "day", StartMinute: 8 * 60, EndMinute: 16 * 60, ShiftType: "day"}
	if s.IsNight() {
		t.Error("expected regular day shift to not be night")
	}
}

func TestShift_IsNight_ExplicitNightTagDoesNotOverrideStartTime(t *testing.T) {
	s := &Shift{ShiftID: "mislabeled", StartMinute: 8 * 60, EndMinute: 16 * 60, ShiftType: "night"}
	if s.IsNight() {
		t.Error("expected classification to follow start time, not the shift_type tag")
	}
}

func TestShift_SpansMidnight(t *testing.T) {
	s := &Shift{StartMinute: 22 * 60, EndMinute: 6 * 60}
	if !s.SpansMidnight() {
		t.Error("expected end before start to span midnight")
	}
	s2 := &Shift{StartMinute: 8 * 60, EndMinute: 16 * 60}
	if s2.SpansMidnight() {
		t.Error("did not expect same-day shift to span midnight")
	}
}
