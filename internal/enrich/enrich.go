// Package enrich 将求解产出的原始分配与目录快照连接，补上展示所需的
// 员工姓名、角色、班次名称，并派生加班标记。
package enrich

import (
	"math"
	"sort"
	"time"

	"github.com/hospitalroster/core/pkg/model"
)

// overtimeThresholdRatio 是加班判定阈值相对于员工个人最大周工时的比例
const overtimeThresholdRatio = 0.9

// fallbackWeeklyHours 用于目录快照中已找不到该员工时的兜底周工时基准
const fallbackWeeklyHours = 40.0

// DeriveOvertime 按员工在同一周内的累计工时，将超过该员工个人
// max_weekly_hours*0.9 的部分标记为加班。排序在DeriveOvertime内部
// 按(employee_id,date)稳定进行，保证同一周内先到先得地累加工时，
// 与目录快照中的其余处理顺序无关。
func DeriveOvertime(assignments []*model.Assignment, snapshot *model.CatalogSnapshot) {
	sorted := make([]*model.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EmployeeID != sorted[j].EmployeeID {
			return sorted[i].EmployeeID < sorted[j].EmployeeID
		}
		return sorted[i].Date < sorted[j].Date
	})

	cumulative := make(map[string]float64) // key: employeeID|weekStart
	for _, a := range sorted {
		weekStart := weekStartOf(a.Date)
		key := a.EmployeeID + "|" + weekStart
		before := cumulative[key]
		cumulative[key] = before + a.Hours
		a.IsOvertime = cumulative[key] > overtimeThreshold(snapshot, a.EmployeeID)
	}
}

func overtimeThreshold(snapshot *model.CatalogSnapshot, employeeID string) float64 {
	if snapshot != nil {
		if e := snapshot.EmployeeByID(employeeID); e != nil && e.MaxWeeklyHours > 0 {
			return e.MaxWeeklyHours * overtimeThresholdRatio
		}
	}
	return fallbackWeeklyHours * overtimeThresholdRatio
}

// EnrichRoster 将原始分配与目录快照连接，为已从目录中删除的员工/班次填入
// 兜底展示值（姓名回退为employee_id，角色回退为"Unknown"）。结果按
// (date, shift start_minute, employee role, employee display name) 稳定排序。
func EnrichRoster(snapshot *model.CatalogSnapshot, assignments []*model.Assignment) []*model.EnrichedAssignment {
	out := make([]*model.EnrichedAssignment, 0, len(assignments))
	for _, a := range assignments {
		ea := &model.EnrichedAssignment{
			Assignment:   *a,
			EmployeeName: a.EmployeeID,
			EmployeeRole: "Unknown",
		}
		if e := snapshot.EmployeeByID(a.EmployeeID); e != nil {
			ea.EmployeeName = e.Name
			ea.EmployeeRole = e.Role
		}
		if s := snapshot.ShiftByID(a.ShiftID); s != nil {
			ea.ShiftName = s.Name
		}
		out = append(out, ea)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		si, sj := shiftStartMinute(snapshot, out[i].ShiftID), shiftStartMinute(snapshot, out[j].ShiftID)
		if si != sj {
			return si < sj
		}
		if out[i].EmployeeRole != out[j].EmployeeRole {
			return out[i].EmployeeRole < out[j].EmployeeRole
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out
}

// shiftStartMinute 返回班次开始分钟数，班次已从目录删除时排到末尾
func shiftStartMinute(snapshot *model.CatalogSnapshot, shiftID string) int {
	if s := snapshot.ShiftByID(shiftID); s != nil {
		return s.StartMinute
	}
	return math.MaxInt32
}

func weekStartOf(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	return t.AddDate(0, 0, -(offset - 1)).Format("2006-01-02")
}
