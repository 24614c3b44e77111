package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hospitalroster/core/pkg/model"
)

// CatalogRepository 持久化员工/班次/需求目录数据
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository 创建目录仓储
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// UpsertEmployees 以employee_id为幂等键批量写入员工
func (r *CatalogRepository) UpsertEmployees(ctx context.Context, employees []*model.Employee) error {
	for _, e := range employees {
		skills, err := json.Marshal(e.Skills)
		if err != nil {
			return fmt.Errorf("序列化员工技能失败: %w", err)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO employees (employee_id, name, role, skills, hourly_cost, max_weekly_hours, min_weekly_hours)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (employee_id) DO UPDATE SET
				name = EXCLUDED.name,
				role = EXCLUDED.role,
				skills = EXCLUDED.skills,
				hourly_cost = EXCLUDED.hourly_cost,
				max_weekly_hours = EXCLUDED.max_weekly_hours,
				min_weekly_hours = EXCLUDED.min_weekly_hours
		`, e.EmployeeID, e.Name, e.Role, skills, e.HourlyCost, e.MaxWeeklyHours, e.MinWeeklyHours)
		if err != nil {
			return fmt.Errorf("写入员工 %s 失败: %w", e.EmployeeID, err)
		}
	}
	return nil
}

// UpsertShifts 以shift_id为幂等键批量写入班次
func (r *CatalogRepository) UpsertShifts(ctx context.Context, shifts []*model.Shift) error {
	for _, s := range shifts {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO shifts (shift_id, name, start_minute, end_minute, length_hours, shift_type)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (shift_id) DO UPDATE SET
				name = EXCLUDED.name,
				start_minute = EXCLUDED.start_minute,
				end_minute = EXCLUDED.end_minute,
				length_hours = EXCLUDED.length_hours,
				shift_type = EXCLUDED.shift_type
		`, s.ShiftID, s.Name, s.StartMinute, s.EndMinute, s.LengthHours, s.ShiftType)
		if err != nil {
			return fmt.Errorf("写入班次 %s 失败: %w", s.ShiftID, err)
		}
	}
	return nil
}

// UpsertDemands 以(date, shift_id, skill)为幂等键批量写入需求
func (r *CatalogRepository) UpsertDemands(ctx context.Context, demands []*model.Demand) error {
	for _, d := range demands {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO demands (date, shift_id, skill, required)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (date, shift_id, skill) DO UPDATE SET
				required = EXCLUDED.required
		`, d.Date, d.ShiftID, d.Skill, d.Required)
		if err != nil {
			return fmt.Errorf("写入需求 %s/%s/%s 失败: %w", d.Date, d.ShiftID, d.Skill, err)
		}
	}
	return nil
}

// demoCatalog 是 /api/v1/catalog/seed 重置目录时使用的固定演示数据集：
// 三名员工、三个班次、一周需求，与端到端场景中使用的字面量数据一致。
func demoCatalog() (employees []*model.Employee, shifts []*model.Shift, demands []*model.Demand) {
	employees = []*model.Employee{
		model.NewEmployee("E1", "Dr. Chen", "Doctor", []string{"MD"}, 150, 40, 0),
		model.NewEmployee("E2", "Nurse Wang", "Nurse", []string{"RN", "ICU", "Senior"}, 55, 48, 0),
		model.NewEmployee("E3", "Nurse Liu", "Nurse", []string{"RN", "Junior"}, 50, 40, 0),
	}
	shifts = []*model.Shift{
		{ShiftID: "S1", Name: "Morning", StartMinute: 7 * 60, EndMinute: 15 * 60, LengthHours: 8, ShiftType: "day"},
		{ShiftID: "S2", Name: "Afternoon", StartMinute: 15 * 60, EndMinute: 23 * 60, LengthHours: 8, ShiftType: "day"},
		{ShiftID: "S3", Name: "Night", StartMinute: 23 * 60, EndMinute: 7 * 60, LengthHours: 8, ShiftType: "night"},
	}

	horizonStart, _ := time.Parse("2006-01-02", "2025-12-01")
	for i := 0; i < 7; i++ {
		d := horizonStart.AddDate(0, 0, i).Format("2006-01-02")
		demands = append(demands,
			&model.Demand{Date: d, ShiftID: "S1", Skill: "RN", Required: 1},
			&model.Demand{Date: d, ShiftID: "S2", Skill: "RN", Required: 1},
			&model.Demand{Date: d, ShiftID: "S3", Skill: "RN", Required: 1},
		)
		if i == 0 {
			demands = append(demands, &model.Demand{Date: d, ShiftID: "S1", Skill: "MD", Required: 1})
		}
	}
	return employees, shifts, demands
}

// SeedFixedDataset 将三张目录表重置为固定的演示数据集：清空后按固定顺序
// （班次、员工、需求）重新写入，与seed.py的清空再重建思路一致，但数据不
// 再来自客户端请求体。
func (r *CatalogRepository) SeedFixedDataset(ctx context.Context) (employeeCount, shiftCount, demandCount int, err error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM demands`); err != nil {
		return 0, 0, 0, fmt.Errorf("清空需求表失败: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM employees`); err != nil {
		return 0, 0, 0, fmt.Errorf("清空员工表失败: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shifts`); err != nil {
		return 0, 0, 0, fmt.Errorf("清空班次表失败: %w", err)
	}

	employees, shifts, demands := demoCatalog()
	if err := r.UpsertShifts(ctx, shifts); err != nil {
		return 0, 0, 0, err
	}
	if err := r.UpsertEmployees(ctx, employees); err != nil {
		return 0, 0, 0, err
	}
	if err := r.UpsertDemands(ctx, demands); err != nil {
		return 0, 0, 0, err
	}
	return len(employees), len(shifts), len(demands), nil
}

// Snapshot 拍摄某一时刻的目录快照，用于一次求解任务的整个生命周期
func (r *CatalogRepository) Snapshot(ctx context.Context) (*model.CatalogSnapshot, error) {
	employees, err := r.loadEmployees(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := r.loadShifts(ctx)
	if err != nil {
		return nil, err
	}
	demands, err := r.loadDemands(ctx)
	if err != nil {
		return nil, err
	}
	return &model.CatalogSnapshot{
		Employees: employees,
		Shifts:    shifts,
		Demands:   demands,
	}, nil
}

func (r *CatalogRepository) loadEmployees(ctx context.Context) (map[string]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT employee_id, name, role, skills, hourly_cost, max_weekly_hours, min_weekly_hours FROM employees`)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*model.Employee)
	for rows.Next() {
		var e model.Employee
		var skillsRaw []byte
		if err := rows.Scan(&e.EmployeeID, &e.Name, &e.Role, &skillsRaw, &e.HourlyCost, &e.MaxWeeklyHours, &e.MinWeeklyHours); err != nil {
			return nil, fmt.Errorf("扫描员工行失败: %w", err)
		}
		var skills []string
		if len(skillsRaw) > 0 {
			if err := json.Unmarshal(skillsRaw, &skills); err != nil {
				return nil, fmt.Errorf("解析员工 %s 技能失败: %w", e.EmployeeID, err)
			}
		}
		e.Skills = skills
		result[e.EmployeeID] = &e
	}
	return result, rows.Err()
}

func (r *CatalogRepository) loadShifts(ctx context.Context) (map[string]*model.Shift, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT shift_id, name, start_minute, end_minute, length_hours, shift_type FROM shifts`)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*model.Shift)
	for rows.Next() {
		var s model.Shift
		if err := rows.Scan(&s.ShiftID, &s.Name, &s.StartMinute, &s.EndMinute, &s.LengthHours, &s.ShiftType); err != nil {
			return nil, fmt.Errorf("扫描班次行失败: %w", err)
		}
		result[s.ShiftID] = &s
	}
	return result, rows.Err()
}

func (r *CatalogRepository) loadDemands(ctx context.Context) ([]*model.Demand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, shift_id, skill, required FROM demands`)
	if err != nil {
		return nil, fmt.Errorf("查询需求失败: %w", err)
	}
	defer rows.Close()

	var result []*model.Demand
	for rows.Next() {
		var d model.Demand
		if err := rows.Scan(&d.Date, &d.ShiftID, &d.Skill, &d.Required); err != nil {
			return nil, fmt.Errorf("扫描需求行失败: %w", err)
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}
