package model

import "testing"

func TestCatalogSnapshot_LookupsAndMisses(t *testing.T) {
	snapshot := &CatalogSnapshot{
		Employees: map[string]*Employee{"emp1": {EmployeeID: "emp1"}},
		Shifts:    map[string]*Shift{"day": {ShiftID: "day"}},
	}

	if snapshot.EmployeeByID("emp1") == nil {
		t.Error("expected to find emp1")
	}
	if snapshot.EmployeeByID("ghost") != nil {
		t.Error("expected nil for unknown employee")
	}
	if snapshot.ShiftByID("day") == nil {
		t.Error("expected to find day shift")
	}
	if snapshot.ShiftByID("ghost") != nil {
		t.Error("expected nil for unknown shift")
	}
}

func TestCatalogSnapshot_DemandsInHorizon(t *testing.T) {
	snapshot := &CatalogSnapshot{
		Demands: []*Demand{
			{Date: "2026-01-01", ShiftID: "day", Skill: "Nurse", Required: 1},
			{Date: "2026-01-05", ShiftID: "day", Skill: "Nurse", Required: 1},
			{Date: "2026-01-10", ShiftID: "day", Skill: "Nurse", Required: 1},
		},
	}

	inRange := snapshot.DemandsInHorizon([]string{"2026-01-01", "2026-01-05"})
	if len(inRange) != 2 {
		t.Fatalf("expected 2 demands in horizon, got %d", len(inRange))
	}
	for _, d := range inRange {
		if d.Date == "2026-01-10" {
			t.Error("did not expect out-of-horizon demand to be included")
		}
	}
}
