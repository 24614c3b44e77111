package stats

import (
	"testing"

	"github.com/hospitalroster/core/pkg/model"
)

func snapshotWithEmployees(employees ...*model.Employee) *model.CatalogSnapshot {
	m := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		m[e.EmployeeID] = e
	}
	return &model.CatalogSnapshot{Employees: m, Shifts: map[string]*model.Shift{}}
}

func TestCoverageAnalyzer_Analyze_PartialCoverage(t *testing.T) {
	analyzer := NewCoverageAnalyzer()

	demands := []*model.Demand{
		{Date: "2026-01-11", ShiftID: "morning", Skill: "Nurse", Required: 2},
	}
	emp := model.NewEmployee("emp1", "员工1", "Junior", []string{"Nurse"}, 30, 40, 20)
	assignments := []*model.Assignment{
		{EmployeeID: "emp1", Date: "2026-01-11", ShiftID: "morning"},
	}

	metrics := analyzer.Analyze(demands, assignments, snapshotWithEmployees(emp))

	if metrics == nil {
		t.Fatal("metrics should not be nil")
	}
	if metrics.OverallCoverage != 50 {
		t.Errorf("expected 50%% coverage, got %.1f%%", metrics.OverallCoverage)
	}
	if len(metrics.UncoveredDemands) != 1 {
		t.Errorf("expected 1 uncovered demand, got %d", len(metrics.UncoveredDemands))
	}
	if metrics.UncoveredDemands[0].Shortage != 1 {
		t.Errorf("expected shortage of 1, got %d", metrics.UncoveredDemands[0].Shortage)
	}
}

func TestCoverageAnalyzer_FullCoverage(t *testing.T) {
	analyzer := NewCoverageAnalyzer()

	demands := []*model.Demand{
		{Date: "2026-01-11", ShiftID: "morning", Skill: "Nurse", Required: 1},
	}
	emp := model.NewEmployee("emp1", "员工1", "Junior", []string{"Nurse"}, 30, 40, 20)
	assignments := []*model.Assignment{
		{EmployeeID: "emp1", Date: "2026-01-11", ShiftID: "morning"},
	}

	metrics := analyzer.Analyze(demands, assignments, snapshotWithEmployees(emp))

	if metrics.OverallCoverage != 100 {
		t.Errorf("expected 100%% coverage, got %.1f%%", metrics.OverallCoverage)
	}
	if len(metrics.UncoveredDemands) != 0 {
		t.Errorf("expected 0 uncovered demands, got %d", len(metrics.UncoveredDemands))
	}
}

func TestCoverageAnalyzer_EmptyInput(t *testing.T) {
	analyzer := NewCoverageAnalyzer()

	metrics := analyzer.Analyze(nil, nil, snapshotWithEmployees())

	if metrics == nil {
		t.Fatal("should return metrics for nil input")
	}
	if metrics.OverallCoverage != 100 {
		t.Errorf("empty demand should report 100%% coverage, got %.1f%%", metrics.OverallCoverage)
	}
}

func TestCoverageAnalyzer_SkillMismatchNotCounted(t *testing.T) {
	analyzer := NewCoverageAnalyzer()

	demands := []*model.Demand{
		{Date: "2026-01-11", ShiftID: "morning", Skill: "Doctor", Required: 1},
	}
	emp := model.NewEmployee("emp1", "员工1", "Junior", []string{"Nurse"}, 30, 40, 20)
	assignments := []*model.Assignment{
		{EmployeeID: "emp1", Date: "2026-01-11", ShiftID: "morning"},
	}

	metrics := analyzer.Analyze(demands, assignments, snapshotWithEmployees(emp))

	if metrics.OverallCoverage != 0 {
		t.Errorf("assignment without matching skill should not satisfy demand, got %.1f%%", metrics.OverallCoverage)
	}
}

func TestCoverageAnalyzer_UnderstaffedAlert(t *testing.T) {
	analyzer := NewCoverageAnalyzer()
	analyzer.SetAlertRatio(0.5)

	demands := []*model.Demand{
		{Date: "2026-01-11", ShiftID: "night", Skill: "Nurse", Required: 4},
	}
	emp := model.NewEmployee("emp1", "员工1", "Junior", []string{"Nurse"}, 30, 40, 20)
	assignments := []*model.Assignment{
		{EmployeeID: "emp1", Date: "2026-01-11", ShiftID: "night"},
	}

	metrics := analyzer.Analyze(demands, assignments, snapshotWithEmployees(emp))

	if len(metrics.Understaffed) != 1 {
		t.Fatalf("expected 1 understaffed period, got %d", len(metrics.Understaffed))
	}
	if metrics.Understaffed[0].Ratio != 0.25 {
		t.Errorf("expected ratio 0.25, got %f", metrics.Understaffed[0].Ratio)
	}
}

func TestCoverageAnalyzer_DailyCoverage(t *testing.T) {
	analyzer := NewCoverageAnalyzer()

	demands := []*model.Demand{
		{Date: "2026-01-11", ShiftID: "morning", Skill: "Nurse", Required: 1},
		{Date: "2026-01-12", ShiftID: "morning", Skill: "Nurse", Required: 1},
	}
	emp := model.NewEmployee("emp1", "员工1", "Junior", []string{"Nurse"}, 30, 40, 20)
	assignments := []*model.Assignment{
		{EmployeeID: "emp1", Date: "2026-01-11", ShiftID: "morning"},
	}

	metrics := analyzer.Analyze(demands, assignments, snapshotWithEmployees(emp))

	if len(metrics.DailyCoverage) != 2 {
		t.Errorf("expected 2 daily coverage entries, got %d", len(metrics.DailyCoverage))
	}
	if metrics.DailyCoverage["2026-01-11"].CoverageRate != 100 {
		t.Errorf("expected day 1 fully covered, got %f", metrics.DailyCoverage["2026-01-11"].CoverageRate)
	}
	if metrics.DailyCoverage["2026-01-12"].CoverageRate != 0 {
		t.Errorf("expected day 2 uncovered, got %f", metrics.DailyCoverage["2026-01-12"].CoverageRate)
	}
}

func TestCoverageAnalyzer_GenerateCoverageReport(t *testing.T) {
	analyzer := NewCoverageAnalyzer()
	demands := []*model.Demand{
		{Date: "2026-01-11", ShiftID: "morning", Skill: "Nurse", Required: 2},
	}
	metrics := analyzer.Analyze(demands, nil, snapshotWithEmployees())

	report := analyzer.GenerateCoverageReport(metrics)
	if report == "" {
		t.Fatal("report should not be empty")
	}
}
