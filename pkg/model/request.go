package model

// Request 是提交一次排班求解的输入，字段与默认值取自上游求解请求约定。
type Request struct {
	HorizonStart            string  `json:"horizon_start"`                       // YYYY-MM-DD
	HorizonDays             int     `json:"horizon_days,omitempty"`              // 默认 7，取值范围 [1,28]
	SolverTimeLimit         int     `json:"solver_time_limit,omitempty"`         // 秒，默认 60，取值范围 [1,600]
	AllowUncoveredDemand    bool    `json:"allow_uncovered_demand"`              // 默认 true：允许弹性缺口
	PenaltyUncovered        float64 `json:"penalty_uncovered,omitempty"`         // 默认 1000.0
	WeightPreference        float64 `json:"weight_preference,omitempty"`         // 默认 1.0，员工避免偏好在目标函数中的权重
	MaxConsecutiveDays      int     `json:"max_consecutive_days,omitempty"`      // 默认 min(6,horizon_days)，取值范围 [1,horizon_days]
	MinRestHours            float64 `json:"min_rest_hours,omitempty"`            // 默认 11，取值范围 [0,24]
	MaxNightShifts          int     `json:"max_night_shifts,omitempty"`          // 每名员工整个周期内的最大夜班次数，0表示不限制
	MinShiftsPerEmployee    int     `json:"min_shifts_per_employee,omitempty"`   // 每名员工整个周期内的最少班次数，0表示不限制
	RequireCompleteWeekends bool    `json:"require_complete_weekends,omitempty"` // 周六上班则周日也必须上班（班次可以不同）
}

// ApplyDefaults 将零值字段填充为业务默认值，返回填充后的副本
func (r Request) ApplyDefaults() Request {
	if r.HorizonDays == 0 {
		r.HorizonDays = 7
	}
	if r.SolverTimeLimit == 0 {
		r.SolverTimeLimit = 60
	}
	if r.PenaltyUncovered == 0 {
		r.PenaltyUncovered = 1000.0
	}
	if r.WeightPreference == 0 {
		r.WeightPreference = 1.0
	}
	if r.MaxConsecutiveDays == 0 {
		r.MaxConsecutiveDays = 6
		if r.MaxConsecutiveDays > r.HorizonDays {
			r.MaxConsecutiveDays = r.HorizonDays
		}
	}
	if r.MinRestHours == 0 {
		r.MinRestHours = 11
	}
	return r
}

// Validate 检查请求的基本合法性（不涉及目录数据）。校验失败时返回*FieldError，
// 携带具体是哪个字段不合法，而不是把字段名淹没在一句拼好的错误文本里。
func (r Request) Validate() error {
	if r.HorizonStart == "" {
		return fieldError("horizon_start", "不能为空")
	}
	if r.HorizonDays < 1 || r.HorizonDays > 28 {
		return fieldError("horizon_days", "必须在 [1,28] 范围内")
	}
	if r.SolverTimeLimit < 1 || r.SolverTimeLimit > 600 {
		return fieldError("solver_time_limit", "必须在 [1,600] 范围内")
	}
	if r.AllowUncoveredDemand && r.PenaltyUncovered < 0 {
		return fieldError("penalty_uncovered", "不能为负数")
	}
	if r.MaxConsecutiveDays < 1 || r.MaxConsecutiveDays > r.HorizonDays {
		return fieldError("max_consecutive_days", "必须在 [1,horizon_days] 范围内")
	}
	if r.MinRestHours < 0 || r.MinRestHours > 24 {
		return fieldError("min_rest_hours", "必须在 [0,24] 范围内")
	}
	if r.MaxNightShifts < 0 {
		return fieldError("max_night_shifts", "不能为负数")
	}
	if r.MinShiftsPerEmployee < 0 {
		return fieldError("min_shifts_per_employee", "不能为负数")
	}
	return nil
}

// FieldError 是Validate对单个字段的校验失败结果，保留字段名供调用方
// 构造按字段归类的错误响应，而不必从拼好的错误文本里反推字段名。
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func fieldError(field, reason string) error { return &FieldError{Field: field, Reason: reason} }
