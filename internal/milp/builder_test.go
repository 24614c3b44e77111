package milp

import (
	"testing"

	"github.com/hospitalroster/core/pkg/model"
)

func snapshotFor(employees []*model.Employee, shifts []*model.Shift, demands []*model.Demand) *model.CatalogSnapshot {
	empByID := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		empByID[e.EmployeeID] = e
	}
	shiftByID := make(map[string]*model.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ShiftID] = s
	}
	return &model.CatalogSnapshot{Employees: empByID, Shifts: shiftByID, Demands: demands}
}

func baseDayShift() *model.Shift {
	return &model.Shift{ShiftID: "day", Name: "白班", StartMinute: 8 * 60, EndMinute: 16 * 60, LengthHours: 8, ShiftType: "day"}
}

func baseNightShift() *model.Shift {
	return &model.Shift{ShiftID: "night", Name: "夜班", StartMinute: 22 * 60, EndMinute: 6 * 60, LengthHours: 8, ShiftType: "night"}
}

func hasConstraintTag(m *Model, tag string) bool {
	return m.ConstraintByTag(tag) != nil
}

// S-OPT-1: a single demand row exactly satisfiable by one qualified employee
// produces a coverage constraint requiring at least one assignment variable.
func TestBuild_CoverageConstraint_RequiresQualifiedEmployee(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", []string{"Nurse"}, 30, 40, 0)
	shift := baseDayShift()
	demand := &model.Demand{Date: "2026-01-05", ShiftID: "day", Skill: "Nurse", Required: 1}

	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{shift}, []*model.Demand{demand})
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: false}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := m.ConstraintByTag("coverage:2026-01-05:day:Nurse")
	if c == nil {
		t.Fatal("expected coverage constraint for the single demand row")
	}
	if c.Sense != GE || c.RHS != 1 {
		t.Errorf("expected >= 1, got sense=%s rhs=%f", c.Sense, c.RHS)
	}
	found := false
	for _, term := range c.Terms {
		if term.Var == "x:emp1:2026-01-05:day" {
			found = true
		}
	}
	if !found {
		t.Error("expected qualified employee's assignment variable in coverage constraint")
	}
}

// S-COVER-UNSAT: allow_uncovered_demand=false pins the slack variable's
// upper bound to zero, turning the elastic constraint into a hard one.
func TestBuild_DisallowUncovered_PinsSlackUpperToZero(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", []string{"Nurse"}, 30, 40, 0)
	shift := baseDayShift()
	demand := &model.Demand{Date: "2026-01-05", ShiftID: "day", Skill: "Nurse", Required: 2}

	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{shift}, []*model.Demand{demand})
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: false}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var slack *Variable
	for i := range m.Variables {
		if m.Variables[i].Name == "y:2026-01-05:day:Nurse" {
			slack = &m.Variables[i]
		}
	}
	if slack == nil {
		t.Fatal("expected shortfall slack variable to exist")
	}
	if slack.Upper != 0 {
		t.Errorf("expected slack upper bound 0 when uncovered demand disallowed, got %f", slack.Upper)
	}
}

func TestBuild_AllowUncovered_SlackHasLargeUpperBound(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", []string{"Nurse"}, 30, 40, 0)
	shift := baseDayShift()
	demand := &model.Demand{Date: "2026-01-05", ShiftID: "day", Skill: "Nurse", Required: 2}
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{shift}, []*model.Demand{demand})
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: true, PenaltyUncovered: 1000}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range m.Variables {
		if v.Name == "y:2026-01-05:day:Nurse" {
			if v.Upper <= 1 {
				t.Errorf("expected large upper bound for elastic slack, got %f", v.Upper)
			}
			if v.ObjCoef != 1000 {
				t.Errorf("expected penalty coefficient 1000, got %f", v.ObjCoef)
			}
			return
		}
	}
	t.Fatal("expected slack variable to exist")
}

// S-REST: consecutive shifts closer together than min_rest_hours are forbidden
// via a pairwise <= 1 constraint across the day boundary.
func TestBuild_RestConstraint_ForbidsBackToBackNightThenDay(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	night := baseNightShift()
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{night, day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 2, SolverTimeLimit: 30, AllowUncoveredDemand: true, MinRestHours: 11}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// night shift on day 1 ends at 06:00 next day; day shift on day 2 starts at 08:00 --
	// only a 2 hour gap, well under 11h minimum rest.
	if !hasConstraintTag(m, "rest:emp1:2026-01-05:night:day") {
		t.Error("expected rest constraint forbidding night-then-day back to back")
	}
}

func TestBuild_RestConstraint_DisabledWhenZero(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	night := baseNightShift()
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{night, day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 2, SolverTimeLimit: 30, AllowUncoveredDemand: true, MinRestHours: 0}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range m.Constraints {
		if c.Group == "forbidden_pair" {
			t.Fatal("expected no rest constraints when MinRestHours is 0")
		}
	}
}

// S-CONSEC: a rolling window of max_consecutive_days+1 days caps total shifts
// worked in that window.
func TestBuild_ConsecutiveDaysConstraint_WindowSize(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-01", HorizonDays: 10, SolverTimeLimit: 30, AllowUncoveredDemand: true, MaxConsecutiveDays: 6}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := m.ConstraintByTag("consecutive_days:emp1:2026-01-01")
	if c == nil {
		t.Fatal("expected a consecutive-days constraint starting at the horizon start")
	}
	if len(c.Terms) != 7 { // 7-day window (MaxConsecutiveDays+1) x 1 shift type
		t.Errorf("expected 7 terms in the rolling window, got %d", len(c.Terms))
	}
	if c.RHS != 6 {
		t.Errorf("expected RHS 6, got %f", c.RHS)
	}
}

func TestBuild_ConsecutiveDaysConstraint_SkippedWhenWindowExceedsHorizon(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-01", HorizonDays: 3, SolverTimeLimit: 30, AllowUncoveredDemand: true, MaxConsecutiveDays: 6}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range m.Constraints {
		if c.Group == "consecutive_days" {
			t.Fatal("expected no consecutive-days constraints when horizon shorter than window")
		}
	}
}

// S-RATIO: senior headcount must be >= junior headcount on every critical shift.
// Seniority is a skill tag, not a Role -- both employees below are Nurses.
func TestBuild_SkillRatioConstraint(t *testing.T) {
	senior := model.NewEmployee("sen1", "资深1", "Nurse", []string{"Nurse", "Senior"}, 50, 40, 0)
	junior := model.NewEmployee("jun1", "初级1", "Nurse", []string{"Nurse", "Junior"}, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{senior, junior}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: true}

	m, err := Build(snapshot, req, Params{CriticalShiftIDs: []string{"day"}}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := m.ConstraintByTag("skill_ratio:2026-01-05:day")
	if c == nil {
		t.Fatal("expected a skill ratio constraint")
	}
	if c.Sense != GE || c.RHS != 0 {
		t.Errorf("expected senior-junior >= 0, got sense=%s rhs=%f", c.Sense, c.RHS)
	}
	var seniorCoef, juniorCoef float64
	for _, term := range c.Terms {
		switch term.Var {
		case "x:sen1:2026-01-05:day":
			seniorCoef = term.Coef
		case "x:jun1:2026-01-05:day":
			juniorCoef = term.Coef
		}
	}
	if seniorCoef != 1 || juniorCoef != -1 {
		t.Errorf("expected +1 senior / -1 junior coefficients, got %f / %f", seniorCoef, juniorCoef)
	}
}

func TestBuild_SkillRatioConstraint_SkippedWhenNoCriticalShifts(t *testing.T) {
	senior := model.NewEmployee("sen1", "资深1", "Nurse", []string{"Nurse", "Senior"}, 50, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{senior}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: true}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range m.Constraints {
		if c.Group == "skill_ratio" {
			t.Fatal("expected no skill ratio constraints when no critical shifts configured")
		}
	}
}

func TestBuild_SkillRatioConstraint_OnlyAppliesToCriticalShift(t *testing.T) {
	senior := model.NewEmployee("sen1", "资深1", "Nurse", []string{"Nurse", "Senior"}, 50, 40, 0)
	junior := model.NewEmployee("jun1", "初级1", "Nurse", []string{"Nurse", "Junior"}, 30, 40, 0)
	day := baseDayShift()
	night := baseNightShift()
	snapshot := snapshotFor([]*model.Employee{senior, junior}, []*model.Shift{day, night}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: true}

	m, err := Build(snapshot, req, Params{CriticalShiftIDs: []string{"night"}}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ConstraintByTag("skill_ratio:2026-01-05:night") == nil {
		t.Fatal("expected a skill ratio constraint on the critical shift")
	}
	if m.ConstraintByTag("skill_ratio:2026-01-05:day") != nil {
		t.Error("did not expect a skill ratio constraint on a non-critical shift")
	}
}

// S-WEEKEND: with require_complete_weekends set, a Saturday assignment forces
// a Sunday assignment (any shift), and none on Saturday forces none on Sunday.
func TestBuild_CompleteWeekendConstraint_LinksSaturdayAndSunday(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	// 2026-01-03 is a Saturday, 2026-01-04 is a Sunday.
	req := model.Request{HorizonStart: "2026-01-03", HorizonDays: 2, SolverTimeLimit: 30, AllowUncoveredDemand: true, RequireCompleteWeekends: true}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := m.ConstraintByTag("complete_weekend:emp1:2026-01-03")
	if c == nil {
		t.Fatal("expected complete-weekend linking constraint")
	}
	if c.Sense != EQ || c.RHS != 0 {
		t.Errorf("expected equality constraint at 0, got sense=%s rhs=%f", c.Sense, c.RHS)
	}
}

func TestBuild_CompleteWeekendConstraint_DisabledByDefault(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	// 2026-01-03 is a Saturday, 2026-01-04 is a Sunday -- but the flag is off.
	req := model.Request{HorizonStart: "2026-01-03", HorizonDays: 2, SolverTimeLimit: 30, AllowUncoveredDemand: true}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range m.Constraints {
		if c.Group == "complete_weekend" {
			t.Fatal("expected no complete-weekend constraint when require_complete_weekends is false")
		}
	}
}

func TestBuild_CompleteWeekendConstraint_SkipsNonWeekendBoundary(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	// 2026-01-05 (Monday) through 2026-01-06 (Tuesday): no weekend boundary.
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 2, SolverTimeLimit: 30, AllowUncoveredDemand: true, RequireCompleteWeekends: true}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range m.Constraints {
		if c.Group == "complete_weekend" {
			t.Fatal("expected no complete-weekend constraint across a non-weekend boundary")
		}
	}
}

func TestBuild_NightCapConstraint(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	night := baseNightShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{night}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 5, SolverTimeLimit: 30, AllowUncoveredDemand: true, MaxNightShifts: 2}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := m.ConstraintByTag("night_cap:emp1")
	if c == nil {
		t.Fatal("expected a night cap constraint")
	}
	if c.RHS != 2 {
		t.Errorf("expected cap of 2, got %f", c.RHS)
	}
	if len(c.Terms) != 5 {
		t.Errorf("expected one term per horizon day, got %d", len(c.Terms))
	}
}

func TestBuild_WeeklyHours_MinHoursAddsGracefulSlack(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 0, 20)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 7, SolverTimeLimit: 30, AllowUncoveredDemand: true, PenaltyUncovered: 500}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	foundZ := false
	for _, v := range m.Variables {
		if v.Name == "z:emp1:2026-01-05" {
			foundZ = true
			if v.Upper != 20 {
				t.Errorf("expected slack upper bound = min weekly hours, got %f", v.Upper)
			}
		}
	}
	if !foundZ {
		t.Error("expected min-hours downshift slack variable to be created")
	}
}

func TestBuild_OneShiftPerDayConstraint(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	night := baseNightShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day, night}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: true}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := m.ConstraintByTag("one_shift_per_day:emp1:2026-01-05")
	if c == nil {
		t.Fatal("expected one-shift-per-day constraint")
	}
	if len(c.Terms) != 2 || c.Sense != LE || c.RHS != 1 {
		t.Errorf("expected <= 1 across both shift options, got %+v", c)
	}
}

func TestBuild_PreferenceStore_AvoidedAssignmentIncreasesObjectiveCoefficient(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 1, SolverTimeLimit: 30, AllowUncoveredDemand: true, WeightPreference: 50}

	prefs := NewPreferenceStore()
	prefs.Avoid("emp1", "2026-01-05", "day")

	m, err := Build(snapshot, req, Params{}, prefs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range m.Variables {
		if v.Name == "x:emp1:2026-01-05:day" {
			base := emp.HourlyCost * day.LengthHours
			if v.ObjCoef != base+50 {
				t.Errorf("expected objective coefficient %f, got %f", base+50, v.ObjCoef)
			}
			return
		}
	}
	t.Fatal("expected assignment variable to exist")
}

// constraint family 8: every employee must work at least min_shifts_per_employee
// shifts across the horizon.
func TestBuild_MinShiftsConstraint_RequiresThreshold(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 7, SolverTimeLimit: 30, AllowUncoveredDemand: true, MinShiftsPerEmployee: 3}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := m.ConstraintByTag("min_shifts:emp1")
	if c == nil {
		t.Fatal("expected a min_shifts constraint")
	}
	if c.Sense != GE || c.RHS != 3 {
		t.Errorf("expected >= 3, got sense=%s rhs=%f", c.Sense, c.RHS)
	}
	if len(m.Warnings) != 0 {
		t.Errorf("did not expect a downshift warning for an achievable minimum, got %v", m.Warnings)
	}
}

func TestBuild_MinShiftsConstraint_SkippedWhenZero(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 40, 0)
	day := baseDayShift()
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 7, SolverTimeLimit: 30, AllowUncoveredDemand: true}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range m.Constraints {
		if c.Group == "min_shifts" {
			t.Fatal("expected no min_shifts constraints when min_shifts_per_employee is 0")
		}
	}
}

// An employee whose max_weekly_hours/shift-length ceiling can't reach the
// requested minimum gets downshifted, with a warning recorded on the model.
func TestBuild_MinShiftsConstraint_DownshiftsWhenUnachievable(t *testing.T) {
	emp := model.NewEmployee("emp1", "员工1", "Nurse", nil, 30, 8, 0) // one 8h shift/week ceiling
	day := baseDayShift()                                           // 8h shifts
	snapshot := snapshotFor([]*model.Employee{emp}, []*model.Shift{day}, nil)
	req := model.Request{HorizonStart: "2026-01-05", HorizonDays: 7, SolverTimeLimit: 30, AllowUncoveredDemand: true, MinShiftsPerEmployee: 5}

	m, err := Build(snapshot, req, Params{}, NewPreferenceStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := m.ConstraintByTag("min_shifts:emp1")
	if c == nil {
		t.Fatal("expected a min_shifts constraint even after downshift")
	}
	if c.RHS != 1 {
		t.Errorf("expected downshifted RHS of 1 (one week x one shift/week ceiling), got %f", c.RHS)
	}
	if len(m.Warnings) != 1 {
		t.Fatalf("expected exactly one downshift warning, got %v", m.Warnings)
	}
}

func TestBuild_InvalidHorizonStart_ReturnsError(t *testing.T) {
	snapshot := snapshotFor(nil, nil, nil)
	req := model.Request{HorizonStart: "not-a-date", HorizonDays: 1, SolverTimeLimit: 30}

	if _, err := Build(snapshot, req, Params{}, NewPreferenceStore()); err == nil {
		t.Error("expected error for invalid horizon start date")
	}
}
