package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/hospitalroster/core/pkg/errors"
	"github.com/hospitalroster/core/pkg/model"
)

// ErrNoSuchRun 表示按ID查找任务未命中
var ErrNoSuchRun = errors.New("run not found")

// RunRepository 持久化排班任务及其分配结果
type RunRepository struct {
	db DB
}

// NewRunRepository 创建任务仓储
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create 以QUEUED状态插入一条新任务记录
func (r *RunRepository) Create(ctx context.Context, run *model.Run) error {
	params, err := json.Marshal(run.SolverParams)
	if err != nil {
		return fmt.Errorf("序列化求解参数失败: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, status, horizon_start, horizon_days, solver_params)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.RunID, run.CreatedAt, run.Status, run.HorizonStart, run.HorizonDays, params)
	if err != nil {
		return fmt.Errorf("插入任务 %s 失败: %w", run.RunID, err)
	}
	return nil
}

// MarkRunning 将一个QUEUED任务转为RUNNING，返回是否发生了转换
func (r *RunRepository) MarkRunning(ctx context.Context, runID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = $1 WHERE run_id = $2 AND status = $3
	`, model.RunRunning, runID, model.RunQueued)
	if err != nil {
		return false, fmt.Errorf("更新任务 %s 为RUNNING失败: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Finalize 原子地将任务从一个非终态转为终态，写入目标值和日志。
// 若任务在调用时已处于任意终态，返回 CodeTerminalConflict 错误而不覆盖已有结果。
func (r *RunRepository) Finalize(ctx context.Context, runID string, status model.RunStatus, objective *float64, logs string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finalize目标状态 %s 不是终态", status)
	}
	now := time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE runs
		SET status = $1, completed_at = $2, objective_value = $3, logs = $4
		WHERE run_id = $5 AND status IN ($6, $7)
	`, status, now, objective, logs, runID, model.RunQueued, model.RunRunning)
	if err != nil {
		return fmt.Errorf("终结任务 %s 失败: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		current, getErr := r.GetByID(ctx, runID)
		if getErr != nil {
			return getErr
		}
		return apperrors.TerminalConflict(runID, current.Status)
	}
	return nil
}

// GetByID 按业务ID查找任务
func (r *RunRepository) GetByID(ctx context.Context, runID string) (*model.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT run_id, created_at, completed_at, status, horizon_start, horizon_days, objective_value, solver_params, logs
		FROM runs WHERE run_id = $1
	`, runID)
	return scanRun(row)
}

// List 返回按创建时间倒序的任务列表，每条记录附带其分配结果条数
func (r *RunRepository) List(ctx context.Context, filter ListFilter) ([]*model.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.run_id, r.created_at, r.completed_at, r.status, r.horizon_start, r.horizon_days,
		       r.objective_value, r.solver_params, r.logs,
		       COALESCE((SELECT COUNT(*) FROM assignments a WHERE a.run_id = r.run_id), 0)
		FROM runs r ORDER BY r.created_at DESC OFFSET $1 LIMIT $2
	`, filter.Offset, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}
	defer rows.Close()

	var result []*model.Run
	for rows.Next() {
		run, err := scanRunRowsWithCount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

// InsertAssignments 批量写入一次求解的原始分配结果
func (r *RunRepository) InsertAssignments(ctx context.Context, assignments []*model.Assignment) error {
	for _, a := range assignments {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO assignments (run_id, employee_id, date, shift_id, hours, cost, is_overtime)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.RunID, a.EmployeeID, a.Date, a.ShiftID, a.Hours, a.Cost, a.IsOvertime)
		if err != nil {
			return fmt.Errorf("写入分配失败 (run=%s, employee=%s, date=%s): %w", a.RunID, a.EmployeeID, a.Date, err)
		}
	}
	return nil
}

// AssignmentsByRun 返回某次任务的原始分配结果
func (r *RunRepository) AssignmentsByRun(ctx context.Context, runID string) ([]*model.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, employee_id, date, shift_id, hours, cost, is_overtime
		FROM assignments WHERE run_id = $1 ORDER BY date, shift_id, employee_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("查询任务 %s 的分配失败: %w", runID, err)
	}
	defer rows.Close()

	var result []*model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.RunID, &a.EmployeeID, &a.Date, &a.ShiftID, &a.Hours, &a.Cost, &a.IsOvertime); err != nil {
			return nil, fmt.Errorf("扫描分配行失败: %w", err)
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row *sql.Row) (*model.Run, error) {
	return scanRunGeneric(row)
}

func scanRunGeneric(s rowScanner) (*model.Run, error) {
	var run model.Run
	var paramsRaw []byte
	var completedAt sql.NullTime
	var objective sql.NullFloat64
	var logs sql.NullString

	err := s.Scan(&run.RunID, &run.CreatedAt, &completedAt, &run.Status, &run.HorizonStart, &run.HorizonDays, &objective, &paramsRaw, &logs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSuchRun
		}
		return nil, fmt.Errorf("扫描任务行失败: %w", err)
	}
	return finishScanRun(&run, completedAt, objective, logs, paramsRaw)
}

// scanRunRowsWithCount 扫描List查询多出的assignment_count列
func scanRunRowsWithCount(rows *sql.Rows) (*model.Run, error) {
	var run model.Run
	var paramsRaw []byte
	var completedAt sql.NullTime
	var objective sql.NullFloat64
	var logs sql.NullString
	var count int

	err := rows.Scan(&run.RunID, &run.CreatedAt, &completedAt, &run.Status, &run.HorizonStart, &run.HorizonDays, &objective, &paramsRaw, &logs, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSuchRun
		}
		return nil, fmt.Errorf("扫描任务行失败: %w", err)
	}
	out, err := finishScanRun(&run, completedAt, objective, logs, paramsRaw)
	if err != nil {
		return nil, err
	}
	out.AssignmentCount = count
	return out, nil
}

func finishScanRun(run *model.Run, completedAt sql.NullTime, objective sql.NullFloat64, logs sql.NullString, paramsRaw []byte) (*model.Run, error) {
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if objective.Valid {
		v := objective.Float64
		run.ObjectiveValue = &v
	}
	if logs.Valid {
		run.Logs = logs.String
	}
	if len(paramsRaw) > 0 {
		params := make(model.JSONMap)
		if err := json.Unmarshal(paramsRaw, &params); err != nil {
			return nil, fmt.Errorf("解析求解参数失败: %w", err)
		}
		run.SolverParams = params
	}

	return run, nil
}
