package model

// Employee 员工（医生/护士等排班对象）
type Employee struct {
	BaseModel
	EmployeeID      string   `json:"employee_id" db:"employee_id"` // 业务主键，来自上游人事系统
	Name            string   `json:"name" db:"name"`
	Role            string   `json:"role" db:"role"` // Doctor/Nurse/...
	Skills          []string `json:"skills" db:"-"`
	skillSet        SkillSet `json:"-" db:"-"`
	HourlyCost      float64  `json:"hourly_cost" db:"hourly_cost"`
	MaxWeeklyHours  float64  `json:"max_weekly_hours" db:"max_weekly_hours"`
	MinWeeklyHours  float64  `json:"min_weekly_hours" db:"min_weekly_hours"`
	Availability    JSONMap  `json:"availability,omitempty" db:"availability"`
}

// NewEmployee 构造员工并建立技能位图缓存
func NewEmployee(employeeID, name, role string, skills []string, hourlyCost, maxWeeklyHours, minWeeklyHours float64) *Employee {
	e := &Employee{
		BaseModel:      NewBaseModel(),
		EmployeeID:     employeeID,
		Name:           name,
		Role:           role,
		Skills:         skills,
		HourlyCost:     hourlyCost,
		MaxWeeklyHours: maxWeeklyHours,
		MinWeeklyHours: minWeeklyHours,
	}
	e.skillSet = NewSkillSet(skills)
	return e
}

// HasSkill 检查员工是否具备某技能。比较发生在token层面，不做字符串比较。
func (e *Employee) HasSkill(skill string) bool {
	if e.skillSet.bits == 0 && len(e.Skills) > 0 {
		e.skillSet = NewSkillSet(e.Skills)
	}
	return e.skillSet.HasSkill(skill)
}

// SkillSet 返回员工的技能位图，供约束构建阶段直接比较使用
func (e *Employee) SkillSet() SkillSet {
	if e.skillSet.bits == 0 && len(e.Skills) > 0 {
		e.skillSet = NewSkillSet(e.Skills)
	}
	return e.skillSet
}

// IsSenior 判断员工是否携带资深技能标签（用于资深/初级配比约束）。
// 资深/初级由技能集合中的标记决定，与角色（Doctor/Nurse）无关。
func (e *Employee) IsSenior() bool {
	return e.HasSkill("Senior")
}

// IsJunior 判断员工是否携带初级技能标签
func (e *Employee) IsJunior() bool {
	return e.HasSkill("Junior")
}
