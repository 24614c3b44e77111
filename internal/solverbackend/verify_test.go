package solverbackend

import (
	"strings"
	"testing"

	"github.com/hospitalroster/core/internal/milp"
)

func TestVerify_NoViolationsForSatisfyingSolution(t *testing.T) {
	m := &milp.Model{
		Constraints: []milp.Constraint{
			{Tag: "c1", Group: "coverage", Terms: []milp.Term{{Var: "x1", Coef: 1}}, Sense: milp.GE, RHS: 1},
		},
	}
	values := map[string]float64{"x1": 1}

	if v := Verify(m, values); len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}
}

func TestVerify_DetectsViolatedConstraint(t *testing.T) {
	m := &milp.Model{
		Constraints: []milp.Constraint{
			{Tag: "c1", Group: "coverage", Terms: []milp.Term{{Var: "x1", Coef: 1}}, Sense: milp.GE, RHS: 1},
		},
	}
	values := map[string]float64{"x1": 0} // shortfall not covered by any slack here

	violations := Verify(m, values)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if violations[0].Tag != "c1" {
		t.Errorf("expected violation tag c1, got %s", violations[0].Tag)
	}
}

func TestVerify_TolerancePreventsFalsePositives(t *testing.T) {
	m := &milp.Model{
		Constraints: []milp.Constraint{
			{Tag: "c1", Group: "g", Terms: []milp.Term{{Var: "x1", Coef: 1}}, Sense: milp.EQ, RHS: 1},
		},
	}
	values := map[string]float64{"x1": 1 + 1e-9}

	if v := Verify(m, values); len(v) != 0 {
		t.Errorf("expected floating point noise within tolerance to pass, got %v", v)
	}
}

func TestVerify_MissingVariableTreatedAsZero(t *testing.T) {
	m := &milp.Model{
		Constraints: []milp.Constraint{
			{Tag: "c1", Group: "g", Terms: []milp.Term{{Var: "unset", Coef: 1}}, Sense: milp.LE, RHS: 0},
		},
	}
	if v := Verify(m, map[string]float64{}); len(v) != 0 {
		t.Errorf("expected missing variable to default to 0 and satisfy <= 0, got %v", v)
	}
}

func TestSummarize_EmptyReturnsEmptyString(t *testing.T) {
	if s := Summarize(nil); s != "" {
		t.Errorf("expected empty string for no violations, got %q", s)
	}
}

func TestSummarize_IncludesEachViolation(t *testing.T) {
	violations := []Violation{
		{Tag: "c1", Group: "coverage", LHS: 0, Sense: milp.GE, RHS: 1},
		{Tag: "c2", Group: "forbidden_pair", LHS: 2, Sense: milp.LE, RHS: 1},
	}
	summary := Summarize(violations)
	if !strings.Contains(summary, "c1") || !strings.Contains(summary, "c2") {
		t.Errorf("expected summary to mention both violated tags, got %q", summary)
	}
}
