package orchestrator

import (
	"strings"

	"github.com/hospitalroster/core/internal/milp"
	"github.com/hospitalroster/core/pkg/model"
)

// extractAssignments 从求解结果的变量取值中挑出取值为1的分配变量(x:employee:date:shift)，
// 还原为具体的排班分配记录。y/z等松弛变量不产生分配记录。values必须已经过
// milp.RoundBinaries取整——与Verify校验的是同一份取整结果，而不是各自
// 独立地对原始浮点值取整。
func extractAssignments(runID string, m *milp.Model, snapshot *model.CatalogSnapshot, values map[string]float64) []*model.Assignment {
	var assignments []*model.Assignment
	for _, v := range m.Variables {
		if v.Kind != milp.Binary || !strings.HasPrefix(v.Name, "x:") {
			continue
		}
		if values[v.Name] != 1 {
			continue
		}
		employeeID, date, shiftID, ok := parseAssignmentVar(v.Name)
		if !ok {
			continue
		}
		shift := snapshot.ShiftByID(shiftID)
		employee := snapshot.EmployeeByID(employeeID)
		hours := 0.0
		cost := 0.0
		if shift != nil {
			hours = shift.LengthHours
		}
		if employee != nil {
			cost = hours * employee.HourlyCost
		}
		assignments = append(assignments, &model.Assignment{
			RunID:      runID,
			EmployeeID: employeeID,
			Date:       date,
			ShiftID:    shiftID,
			Hours:      hours,
			Cost:       cost,
		})
	}
	return assignments
}

// parseAssignmentVar 解析"x:employee_id:date:shift_id"格式的变量名。
// employee_id本身不含冒号（由目录写入时保证），故按前三个冒号切分即可。
func parseAssignmentVar(name string) (employeeID, date, shiftID string, ok bool) {
	parts := strings.SplitN(name, ":", 4)
	if len(parts) != 4 {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}
