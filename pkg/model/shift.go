package model

// Shift 班次定义
type Shift struct {
	BaseModel
	ShiftID     string `json:"shift_id" db:"shift_id"`
	Name        string `json:"name" db:"name"`
	StartMinute int    `json:"start_minute" db:"start_minute"` // 当天零点起的分钟数
	EndMinute   int    `json:"end_minute" db:"end_minute"`     // 可小于StartMinute，表示跨夜
	LengthHours float64 `json:"length_hours" db:"length_hours"`
	ShiftType   string `json:"shift_type" db:"shift_type"` // day/night
}

// IsNight 判断班次是否为夜班：开始时间落在 20:00 及以后，或 06:00 之前
func (s *Shift) IsNight() bool {
	const nightStartsAt = 20 * 60
	const nightEndsBefore = 6 * 60
	return s.StartMinute >= nightStartsAt || s.StartMinute < nightEndsBefore
}

// SpansMidnight 判断班次是否跨越午夜边界
func (s *Shift) SpansMidnight() bool {
	return s.EndMinute <= s.StartMinute
}

// Demand 某天某班次对某技能的人力需求
type Demand struct {
	BaseModel
	Date     string `json:"date" db:"date"` // YYYY-MM-DD
	ShiftID  string `json:"shift_id" db:"shift_id"`
	Skill    string `json:"skill" db:"skill"`
	Required int    `json:"required" db:"required"`
}

// Assignment 一次求解产出的原始排班分配（未经目录信息增强）
type Assignment struct {
	BaseModel
	RunID      string  `json:"run_id" db:"run_id"`
	EmployeeID string  `json:"employee_id" db:"employee_id"`
	Date       string  `json:"date" db:"date"`
	ShiftID    string  `json:"shift_id" db:"shift_id"`
	Hours      float64 `json:"hours" db:"hours"`
	Cost       float64 `json:"cost" db:"cost"`
	IsOvertime bool    `json:"is_overtime" db:"is_overtime"`
}

// EnrichedAssignment 是Assignment与目录快照连接后的展示形式
type EnrichedAssignment struct {
	Assignment
	EmployeeName string `json:"employee_name"`
	EmployeeRole string `json:"employee_role"`
	ShiftName    string `json:"shift_name"`
}
