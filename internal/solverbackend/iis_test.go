package solverbackend

import (
	"testing"

	"github.com/hospitalroster/core/internal/milp"
)

func TestClassifyConflicts_UsesModelConstraintGroup(t *testing.T) {
	m := &milp.Model{
		Constraints: []milp.Constraint{
			{Tag: "coverage:2026-01-01:day:Nurse", Group: "coverage"},
		},
	}

	conflicts := ClassifyConflicts(m, []string{"coverage:2026-01-01:day:Nurse"})
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Type != ConflictCoverage {
		t.Errorf("expected COVERAGE_SHORTAGE, got %s", conflicts[0].Type)
	}
}

func TestClassifyConflicts_FallsBackToTagPrefixWhenConstraintMissing(t *testing.T) {
	m := &milp.Model{} // constraint not found in model
	conflicts := ClassifyConflicts(m, []string{"rest:emp1:2026-01-01:night:day"})

	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Type != ConflictRest {
		t.Errorf("expected REST_VIOLATION from tag-prefix fallback, got %s", conflicts[0].Type)
	}
}

func TestClassifyConflicts_UnknownTagPrefix(t *testing.T) {
	m := &milp.Model{}
	conflicts := ClassifyConflicts(m, []string{"mystery_constraint:foo"})

	if conflicts[0].Type != ConflictUnknown {
		t.Errorf("expected UNKNOWN for unrecognized prefix, got %s", conflicts[0].Type)
	}
}

func TestClassifyConflicts_AllKnownGroups(t *testing.T) {
	cases := map[string]ConflictType{
		"forbidden_pair":   ConflictRest,
		"max_weekly_hours": ConflictHours,
		"min_weekly_hours": ConflictHours,
		"skill_ratio":      ConflictRatio,
		"consecutive_days": ConflictConsecutive,
		"complete_weekend": ConflictWeekend,
		"night_cap":        ConflictNightCap,
		"min_shifts":       ConflictMinShifts,
	}
	for group, want := range cases {
		m := &milp.Model{Constraints: []milp.Constraint{{Tag: "t:" + group, Group: group}}}
		conflicts := ClassifyConflicts(m, []string{"t:" + group})
		if conflicts[0].Type != want {
			t.Errorf("group %s: expected %s, got %s", group, want, conflicts[0].Type)
		}
	}
}
