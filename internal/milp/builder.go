package milp

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hospitalroster/core/pkg/model"
)

// Params 承载与具体排班请求无关、由运维方配置的建模参数。
// 请求本身携带的排班偏好（休息时长、连续工作天数等）见 model.Request。
type Params struct {
	// CriticalShiftIDs 是资深/初级配比约束生效的班次集合。为空表示不启用该约束族。
	CriticalShiftIDs []string
}

// PreferenceStore 记录员工对(employee_id,date,shift_id)三元组的"避免"偏好。
// 该存储只承载软约束目标项，从不作为硬约束参与求解。
type PreferenceStore struct {
	avoid map[string]bool
}

// NewPreferenceStore 创建空的偏好存储
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{avoid: make(map[string]bool)}
}

// Avoid 登记一条"避免"偏好
func (p *PreferenceStore) Avoid(employeeID, date, shiftID string) {
	p.avoid[preferenceKey(employeeID, date, shiftID)] = true
}

// IsAvoided 判断给定三元组是否登记了"避免"偏好
func (p *PreferenceStore) IsAvoided(employeeID, date, shiftID string) bool {
	return p.avoid[preferenceKey(employeeID, date, shiftID)]
}

func preferenceKey(employeeID, date, shiftID string) string {
	return employeeID + "|" + date + "|" + shiftID
}

// xVar 返回员工-日期-班次分配变量名
func xVar(employeeID, date, shiftID string) string {
	return fmt.Sprintf("x:%s:%s:%s", employeeID, date, shiftID)
}

// yVar 返回某天某班次某技能的覆盖缺口松弛变量名
func yVar(date, shiftID, skill string) string {
	return fmt.Sprintf("y:%s:%s:%s", date, shiftID, skill)
}

// zVar 返回某员工某周最小工时下调松弛变量名
func zVar(employeeID, weekStart string) string {
	return fmt.Sprintf("z:%s:%s", employeeID, weekStart)
}

// Build 从目录快照、请求参数与偏好存储构建完整的MILP模型
func Build(snapshot *model.CatalogSnapshot, req model.Request, params Params, prefs *PreferenceStore) (*Model, error) {
	days, err := (model.DateRange{StartDate: req.HorizonStart, EndDate: addDays(req.HorizonStart, req.HorizonDays-1)}).Days()
	if err != nil {
		return nil, fmt.Errorf("展开排班周期日期失败: %w", err)
	}

	employees := sortedEmployees(snapshot)
	shifts := sortedShifts(snapshot)
	demands := snapshot.DemandsInHorizon(days)

	m := &Model{Sense: Minimize, TimeLimit: req.SolverTimeLimit}
	varSeen := make(map[string]bool)

	addVar := func(v Variable) {
		if !varSeen[v.Name] {
			varSeen[v.Name] = true
			m.Variables = append(m.Variables, v)
		}
	}

	// x[e,d,s] 二元分配变量，目标系数为该员工在该班次上的小时成本
	for _, e := range employees {
		for _, d := range days {
			for _, s := range shifts {
				coef := e.HourlyCost * s.LengthHours
				if prefs != nil && prefs.IsAvoided(e.EmployeeID, d, s.ShiftID) {
					coef += req.WeightPreference
				}
				addVar(Variable{Name: xVar(e.EmployeeID, d, s.ShiftID), Kind: Binary, Upper: 1, ObjCoef: coef})
			}
		}
	}

	// y[d,s,skill] 覆盖缺口松弛变量：allow_uncovered_demand=false时上界为0，退化为硬约束
	uncoveredUpper := 1e9
	if !req.AllowUncoveredDemand {
		uncoveredUpper = 0
	}
	for _, dem := range demands {
		addVar(Variable{Name: yVar(dem.Date, dem.ShiftID, dem.Skill), Kind: Continuous, Upper: uncoveredUpper, ObjCoef: req.PenaltyUncovered})
	}

	buildCoverageConstraints(m, snapshot, demands)
	buildOneShiftPerDayConstraints(m, employees, days, shifts)
	buildWeeklyHoursConstraints(m, employees, days, shifts, addVar, req)
	buildRestConstraints(m, employees, days, shifts, req)
	buildConsecutiveDaysConstraints(m, employees, days, shifts, req)
	buildNightCapConstraints(m, employees, days, shifts, req)
	buildSkillRatioConstraints(m, employees, days, shifts, params)
	buildCompleteWeekendConstraints(m, employees, days, shifts, req.RequireCompleteWeekends)
	buildMinShiftsConstraints(m, employees, days, shifts, req)

	return m, nil
}

func buildCoverageConstraints(m *Model, snapshot *model.CatalogSnapshot, demands []*model.Demand) {
	for _, dem := range demands {
		var terms []Term
		for _, e := range snapshot.Employees {
			if !e.HasSkill(dem.Skill) {
				continue
			}
			terms = append(terms, Term{Var: xVar(e.EmployeeID, dem.Date, dem.ShiftID), Coef: 1})
		}
		terms = append(terms, Term{Var: yVar(dem.Date, dem.ShiftID, dem.Skill), Coef: 1})
		m.Constraints = append(m.Constraints, Constraint{
			Tag:   fmt.Sprintf("coverage:%s:%s:%s", dem.Date, dem.ShiftID, dem.Skill),
			Group: "coverage",
			Terms: terms,
			Sense: GE,
			RHS:   float64(dem.Required),
		})
	}
}

func buildOneShiftPerDayConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift) {
	for _, e := range employees {
		for _, d := range days {
			var terms []Term
			for _, s := range shifts {
				terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: 1})
			}
			m.Constraints = append(m.Constraints, Constraint{
				Tag:   fmt.Sprintf("one_shift_per_day:%s:%s", e.EmployeeID, d),
				Group: "one_shift_per_day",
				Terms: terms,
				Sense: LE,
				RHS:   1,
			})
		}
	}
}

func buildWeeklyHoursConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, addVar func(Variable), req model.Request) {
	weeks := groupByWeek(days)
	for _, e := range employees {
		for weekStart, weekDays := range weeks {
			var terms []Term
			for _, d := range weekDays {
				for _, s := range shifts {
					terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: s.LengthHours})
				}
			}
			if e.MaxWeeklyHours > 0 {
				m.Constraints = append(m.Constraints, Constraint{
					Tag:   fmt.Sprintf("max_weekly_hours:%s:%s", e.EmployeeID, weekStart),
					Group: "max_weekly_hours",
					Terms: terms,
					Sense: LE,
					RHS:   e.MaxWeeklyHours,
				})
			}
			if e.MinWeeklyHours > 0 {
				z := zVar(e.EmployeeID, weekStart)
				addVar(Variable{Name: z, Kind: Continuous, Upper: e.MinWeeklyHours, ObjCoef: req.PenaltyUncovered})
				withSlack := append(append([]Term{}, terms...), Term{Var: z, Coef: 1})
				m.Constraints = append(m.Constraints, Constraint{
					Tag:   fmt.Sprintf("min_weekly_hours:%s:%s", e.EmployeeID, weekStart),
					Group: "min_weekly_hours",
					Terms: withSlack,
					Sense: GE,
					RHS:   e.MinWeeklyHours,
				})
			}
		}
	}
}

// buildRestConstraints 禁止在相邻两天安排的班次组合间隔小于min_rest_hours的小时数。
// 间隔按 (24h + 次日开始分钟 - 当日结束分钟) 计算；跨夜班次（结束时间落在次日）的
// 结束分钟先加24h，即间隔为 (次日开始分钟 - 次日结束分钟)。
func buildRestConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, req model.Request) {
	if req.MinRestHours <= 0 {
		return
	}
	for _, e := range employees {
		for i := 0; i < len(days)-1; i++ {
			today, tomorrow := days[i], days[i+1]
			for _, s1 := range shifts {
				for _, s2 := range shifts {
					gap := restGapHours(s1, s2)
					if gap >= req.MinRestHours {
						continue
					}
					m.Constraints = append(m.Constraints, Constraint{
						Tag:   fmt.Sprintf("rest:%s:%s:%s:%s", e.EmployeeID, today, s1.ShiftID, s2.ShiftID),
						Group: "forbidden_pair",
						Terms: []Term{
							{Var: xVar(e.EmployeeID, today, s1.ShiftID), Coef: 1},
							{Var: xVar(e.EmployeeID, tomorrow, s2.ShiftID), Coef: 1},
						},
						Sense: LE,
						RHS:   1,
					})
				}
			}
		}
	}
}

// restGapHours 计算s1结束到s2开始之间的间隔小时数，按24小时环形处理跨夜情形
func restGapHours(s1, s2 *model.Shift) float64 {
	end1 := s1.EndMinute
	if s1.SpansMidnight() {
		end1 += 24 * 60
	}
	start2 := s2.StartMinute + 24*60
	gapMinutes := start2 - end1
	for gapMinutes < 0 {
		gapMinutes += 24 * 60
	}
	return float64(gapMinutes) / 60.0
}

func buildConsecutiveDaysConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, req model.Request) {
	if req.MaxConsecutiveDays <= 0 || req.MaxConsecutiveDays >= len(days) {
		return
	}
	window := req.MaxConsecutiveDays + 1
	for _, e := range employees {
		for i := 0; i+window <= len(days); i++ {
			var terms []Term
			for _, d := range days[i : i+window] {
				for _, s := range shifts {
					terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: 1})
				}
			}
			m.Constraints = append(m.Constraints, Constraint{
				Tag:   fmt.Sprintf("consecutive_days:%s:%s", e.EmployeeID, days[i]),
				Group: "consecutive_days",
				Terms: terms,
				Sense: LE,
				RHS:   float64(req.MaxConsecutiveDays),
			})
		}
	}
}

func buildNightCapConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, req model.Request) {
	if req.MaxNightShifts <= 0 {
		return
	}
	var nightShifts []*model.Shift
	for _, s := range shifts {
		if s.IsNight() {
			nightShifts = append(nightShifts, s)
		}
	}
	if len(nightShifts) == 0 {
		return
	}
	for _, e := range employees {
		var terms []Term
		for _, d := range days {
			for _, s := range nightShifts {
				terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: 1})
			}
		}
		m.Constraints = append(m.Constraints, Constraint{
			Tag:   fmt.Sprintf("night_cap:%s", e.EmployeeID),
			Group: "night_cap",
			Terms: terms,
			Sense: LE,
			RHS:   float64(req.MaxNightShifts),
		})
	}
}

// buildSkillRatioConstraints 在被标记为关键班次的(日期,班次)对上，保证资深员工人数
// 不少于初级员工人数。资深/初级由技能集合中的"Senior"/"Junior"标记决定，与Role无关。
// 未配置CriticalShiftIDs时该约束族不启用。
func buildSkillRatioConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, params Params) {
	if len(params.CriticalShiftIDs) == 0 {
		return
	}
	critical := make(map[string]bool, len(params.CriticalShiftIDs))
	for _, id := range params.CriticalShiftIDs {
		critical[id] = true
	}
	for _, d := range days {
		for _, s := range shifts {
			if !critical[s.ShiftID] {
				continue
			}
			var terms []Term
			for _, e := range employees {
				switch {
				case e.IsSenior():
					terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: 1})
				case e.IsJunior():
					terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: -1})
				}
			}
			if len(terms) == 0 {
				continue
			}
			m.Constraints = append(m.Constraints, Constraint{
				Tag:   fmt.Sprintf("skill_ratio:%s:%s", d, s.ShiftID),
				Group: "skill_ratio",
				Terms: terms,
				Sense: GE,
				RHS:   0,
			})
		}
	}
}

// buildCompleteWeekendConstraints 若require_complete_weekends为真，员工周六所上班次数之和
// 必须等于周日所上班次数之和：周六上班则周日也上班（班次可以不同），或两天都不上
func buildCompleteWeekendConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, requireComplete bool) {
	if !requireComplete {
		return
	}
	for i := 0; i < len(days)-1; i++ {
		sat, sun, err := weekendPair(days[i], days[i+1])
		if err != nil || !sat {
			continue
		}
		for _, e := range employees {
			terms := make([]Term, 0, 2*len(shifts))
			for _, s := range shifts {
				terms = append(terms,
					Term{Var: xVar(e.EmployeeID, days[i], s.ShiftID), Coef: 1},
					Term{Var: xVar(e.EmployeeID, sun, s.ShiftID), Coef: -1},
				)
			}
			m.Constraints = append(m.Constraints, Constraint{
				Tag:   fmt.Sprintf("complete_weekend:%s:%s", e.EmployeeID, days[i]),
				Group: "complete_weekend",
				Terms: terms,
				Sense: EQ,
				RHS:   0,
			})
		}
	}
}

// buildMinShiftsConstraints 保证每名员工在整个排班周期内至少上min_shifts_per_employee个班次。
// 若该值超出员工按最大周工时/最长班次时长能达到的班次数上限，则下调到可行值并记录警告，
// 而不是让模型直接不可行。
func buildMinShiftsConstraints(m *Model, employees []*model.Employee, days []string, shifts []*model.Shift, req model.Request) {
	if req.MinShiftsPerEmployee <= 0 {
		return
	}
	var longestShift float64
	for _, s := range shifts {
		if s.LengthHours > longestShift {
			longestShift = s.LengthHours
		}
	}
	if longestShift <= 0 {
		return
	}
	numWeeks := len(groupByWeek(days))

	for _, e := range employees {
		achievable := 0
		if e.MaxWeeklyHours > 0 {
			achievable = int(math.Floor(e.MaxWeeklyHours/longestShift)) * numWeeks
		}
		effectiveMin := req.MinShiftsPerEmployee
		if effectiveMin > achievable {
			m.Warnings = append(m.Warnings, fmt.Sprintf(
				"min_shifts downshifted for %s: requested %d exceeds achievable %d given max_weekly_hours and longest shift length, using %d",
				e.EmployeeID, req.MinShiftsPerEmployee, achievable, achievable))
			effectiveMin = achievable
		}
		if effectiveMin <= 0 {
			continue
		}
		var terms []Term
		for _, d := range days {
			for _, s := range shifts {
				terms = append(terms, Term{Var: xVar(e.EmployeeID, d, s.ShiftID), Coef: 1})
			}
		}
		m.Constraints = append(m.Constraints, Constraint{
			Tag:   fmt.Sprintf("min_shifts:%s", e.EmployeeID),
			Group: "min_shifts",
			Terms: terms,
			Sense: GE,
			RHS:   float64(effectiveMin),
		})
	}
}

func weekendPair(day1, day2 string) (isSaturday bool, sunday string, err error) {
	t1, err := time.Parse("2006-01-02", day1)
	if err != nil {
		return false, "", err
	}
	t2, err := time.Parse("2006-01-02", day2)
	if err != nil {
		return false, "", err
	}
	if t1.Weekday() == time.Saturday && t2.Weekday() == time.Sunday && t2.Sub(t1) == 24*time.Hour {
		return true, day2, nil
	}
	return false, "", nil
}

func groupByWeek(days []string) map[string][]string {
	weeks := make(map[string][]string)
	for _, d := range days {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		// ISO周起点：向前回退到本周一
		offset := int(t.Weekday())
		if offset == 0 {
			offset = 7 // Sunday
		}
		weekStart := t.AddDate(0, 0, -(offset - 1)).Format("2006-01-02")
		weeks[weekStart] = append(weeks[weekStart], d)
	}
	return weeks
}

func addDays(date string, n int) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format("2006-01-02")
}

func sortedEmployees(snapshot *model.CatalogSnapshot) []*model.Employee {
	out := make([]*model.Employee, 0, len(snapshot.Employees))
	for _, e := range snapshot.Employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

func sortedShifts(snapshot *model.CatalogSnapshot) []*model.Shift {
	out := make([]*model.Shift, 0, len(snapshot.Shifts))
	for _, s := range snapshot.Shifts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShiftID < out[j].ShiftID })
	return out
}
