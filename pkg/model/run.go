package model

import "time"

// RunStatus 排班任务的生命周期状态
type RunStatus string

const (
	RunQueued     RunStatus = "QUEUED"
	RunRunning    RunStatus = "RUNNING"
	RunOptimal    RunStatus = "OPTIMAL"
	RunFeasible   RunStatus = "FEASIBLE"
	RunInfeasible RunStatus = "INFEASIBLE"
	RunError      RunStatus = "ERROR"
)

// IsTerminal 判断状态是否为终态
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunOptimal, RunFeasible, RunInfeasible, RunError:
		return true
	}
	return false
}

// Run 一次排班求解任务
type Run struct {
	RunID          string     `json:"run_id" db:"run_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status         RunStatus  `json:"status" db:"status"`
	HorizonStart   string     `json:"horizon_start" db:"horizon_start"`
	HorizonDays    int        `json:"horizon_days" db:"horizon_days"`
	ObjectiveValue *float64   `json:"objective_value,omitempty" db:"objective_value"`
	SolverParams   JSONMap    `json:"solver_params" db:"solver_params"`
	Logs           string     `json:"logs,omitempty" db:"logs"`
	AssignmentCount int       `json:"assignment_count" db:"-"` // 由仓储层的子查询附加，非表自身列
}

// NewRun 以QUEUED状态创建一个新任务
func NewRun(runID string, req Request) *Run {
	return &Run{
		RunID:        runID,
		CreatedAt:    time.Now(),
		Status:       RunQueued,
		HorizonStart: req.HorizonStart,
		HorizonDays:  req.HorizonDays,
		SolverParams: JSONMap{
			"solver_time_limit":         req.SolverTimeLimit,
			"allow_uncovered_demand":    req.AllowUncoveredDemand,
			"penalty_uncovered":         req.PenaltyUncovered,
			"weight_preference":         req.WeightPreference,
			"max_consecutive_days":      req.MaxConsecutiveDays,
			"min_rest_hours":            req.MinRestHours,
			"max_night_shifts":          req.MaxNightShifts,
			"min_shifts_per_employee":   req.MinShiftsPerEmployee,
			"require_complete_weekends": req.RequireCompleteWeekends,
		},
	}
}
