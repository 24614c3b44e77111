package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hospitalroster/core/internal/orchestrator"
	"github.com/hospitalroster/core/internal/repository"
	"github.com/hospitalroster/core/pkg/errors"
	"github.com/hospitalroster/core/pkg/model"
)

// RunHandler 处理排班任务的提交、查询与结果获取
type RunHandler struct {
	orch *orchestrator.Orchestrator
}

// NewRunHandler 创建任务处理器
func NewRunHandler(orch *orchestrator.Orchestrator) *RunHandler {
	return &RunHandler{orch: orch}
}

// SubmitRequest 提交任务的请求体
type SubmitRequest struct {
	HorizonStart            string  `json:"horizon_start"`
	HorizonDays             int     `json:"horizon_days,omitempty"`
	SolverTimeLimit         int     `json:"solver_time_limit,omitempty"`
	AllowUncoveredDemand    bool    `json:"allow_uncovered_demand"`
	PenaltyUncovered        float64 `json:"penalty_uncovered,omitempty"`
	WeightPreference        float64 `json:"weight_preference,omitempty"`
	MaxConsecutiveDays      int     `json:"max_consecutive_days,omitempty"`
	MinRestHours            float64 `json:"min_rest_hours,omitempty"`
	MaxNightShifts          int     `json:"max_night_shifts,omitempty"`
	MinShiftsPerEmployee    int     `json:"min_shifts_per_employee,omitempty"`
	RequireCompleteWeekends bool    `json:"require_complete_weekends,omitempty"`
}

// RunOutput 任务在API中的展示形态
type RunOutput struct {
	RunID           string                      `json:"run_id"`
	Status          string                      `json:"status"`
	HorizonStart    string                      `json:"horizon_start"`
	HorizonDays     int                         `json:"horizon_days"`
	CreatedAt       time.Time                   `json:"created_at"`
	CompletedAt     *time.Time                  `json:"completed_at,omitempty"`
	ObjectiveValue  *float64                    `json:"objective_value,omitempty"`
	Logs            string                      `json:"logs,omitempty"`
	AssignmentCount int                         `json:"assignment_count"`
	Assignments     []*model.EnrichedAssignment `json:"assignments,omitempty"`
}

// Submit 提交一次新的排班求解任务
func (h *RunHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	req := SubmitRequest{AllowUncoveredDemand: true} // 请求体省略该字段时保持默认 true
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	runID := uuid.New().String()
	run, err := h.orch.Submit(r.Context(), runID, model.Request{
		HorizonStart:            req.HorizonStart,
		HorizonDays:             req.HorizonDays,
		SolverTimeLimit:         req.SolverTimeLimit,
		AllowUncoveredDemand:    req.AllowUncoveredDemand,
		PenaltyUncovered:        req.PenaltyUncovered,
		WeightPreference:        req.WeightPreference,
		MaxConsecutiveDays:      req.MaxConsecutiveDays,
		MinRestHours:            req.MinRestHours,
		MaxNightShifts:          req.MaxNightShifts,
		MinShiftsPerEmployee:    req.MinShiftsPerEmployee,
		RequireCompleteWeekends: req.RequireCompleteWeekends,
	})
	if err != nil {
		respondAppOrInternal(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, runToOutput(run))
}

// Status 查询单个任务的当前状态。任务处于OPTIMAL/FEASIBLE终态时，
// 响应中附带经过目录信息富化的排班结果。
func (h *RunHandler) Status(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	run, err := h.orch.Status(r.Context(), runID)
	if err != nil {
		respondAppOrInternal(w, err)
		return
	}

	out := runToOutput(run)
	if run.Status == model.RunOptimal || run.Status == model.RunFeasible {
		roster, err := h.orch.Roster(r.Context(), runID)
		if err != nil {
			respondAppOrInternal(w, err)
			return
		}
		out.Assignments = roster
		out.AssignmentCount = len(roster)
	}
	respondJSON(w, http.StatusOK, out)
}

// List 返回任务列表
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	filter := repository.ListFilter{Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	runs, err := h.orch.List(r.Context(), filter)
	if err != nil {
		respondAppOrInternal(w, err)
		return
	}

	out := make([]RunOutput, len(runs))
	for i, run := range runs {
		out[i] = runToOutput(run)
	}
	respondJSON(w, http.StatusOK, out)
}

func runToOutput(run *model.Run) RunOutput {
	return RunOutput{
		RunID:           run.RunID,
		Status:          string(run.Status),
		HorizonStart:    run.HorizonStart,
		HorizonDays:     run.HorizonDays,
		CreatedAt:       run.CreatedAt,
		CompletedAt:     run.CompletedAt,
		ObjectiveValue:  run.ObjectiveValue,
		Logs:            run.Logs,
		AssignmentCount: run.AssignmentCount,
	}
}

// respondAppOrInternal 将任意错误规范化为AppError再写回响应
func respondAppOrInternal(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		respondError(w, appErr)
		return
	}
	respondError(w, errors.Wrap(err, errors.CodeInternal, "内部错误"))
}
