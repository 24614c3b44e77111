// Package orchestrator 管理排班求解任务从入队到终结的整个生命周期：
// 有界worker池执行求解、driver负责重试、结果经verify复核后落库并派生展示视图。
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hospitalroster/core/internal/config"
	"github.com/hospitalroster/core/internal/enrich"
	"github.com/hospitalroster/core/internal/metrics"
	"github.com/hospitalroster/core/internal/milp"
	"github.com/hospitalroster/core/internal/repository"
	"github.com/hospitalroster/core/internal/solverbackend"
	apperrors "github.com/hospitalroster/core/pkg/errors"
	"github.com/hospitalroster/core/pkg/logger"
	"github.com/hospitalroster/core/pkg/model"
	"github.com/hospitalroster/core/pkg/stats"
)

// Orchestrator 是求解任务的编排入口：Submit把任务放入队列，worker池
// 异步消费并驱动求解、校验、落库这一整条链路。
type Orchestrator struct {
	jobs       chan *job
	wg         sync.WaitGroup
	baseCtx    context.Context
	cancel     context.CancelFunc
	shutdownTO time.Duration

	driver     *solverbackend.Driver
	runs       *repository.RunRepository
	catalog    *repository.CatalogRepository
	milpParams milp.Params
	prefs      *milp.PreferenceStore

	log        *logger.RunLogger
	activeJobs int32

	shutdownOnce sync.Once
	drained      chan struct{}
}

// New 创建编排器并启动固定数量的worker
func New(cfg config.OrchestratorConfig, driver *solverbackend.Driver, runs *repository.RunRepository, catalog *repository.CatalogRepository, milpParams milp.Params, prefs *milp.PreferenceStore) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		jobs:       make(chan *job, cfg.QueueDepth),
		baseCtx:    ctx,
		cancel:     cancel,
		shutdownTO: cfg.ShutdownTimeout,
		driver:     driver,
		runs:       runs,
		catalog:    catalog,
		milpParams: milpParams,
		prefs:      prefs,
		log:        logger.NewRunLogger(),
		drained:    make(chan struct{}),
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	for i := 0; i < workerCount; i++ {
		o.wg.Add(1)
		go o.worker(ctx, i, &o.wg)
	}
	return o
}

// Submit 拍摄当前目录快照，构建求解模型，将任务以QUEUED状态入队。
// 队列已满时返回 CodeQueueFull 错误而不阻塞调用方。
func (o *Orchestrator) Submit(ctx context.Context, runID string, req model.Request) (*model.Run, error) {
	req = req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		if fe, ok := err.(*model.FieldError); ok {
			return nil, apperrors.InvalidInput(fe.Field, fe.Reason)
		}
		return nil, apperrors.InvalidInput("request", err.Error())
	}

	snapshot, err := o.catalog.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "拍摄目录快照失败")
	}

	m, err := milp.Build(snapshot, req, o.milpParams, o.prefs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "构建求解模型失败")
	}

	run := model.NewRun(runID, req)
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建任务记录失败")
	}

	j := &job{runID: runID, model: m, snapshot: snapshot, request: req}
	select {
	case o.jobs <- j:
		o.log.RunQueued(runID, req.HorizonDays)
		metrics.RecordRunSubmitted()
		metrics.SetWorkerPoolStats(o.QueueDepth(), int(o.ActiveJobs()))
		return run, nil
	default:
		_ = o.runs.Finalize(ctx, runID, model.RunError, nil, "任务队列已满，未能入队")
		return nil, apperrors.New(apperrors.CodeQueueFull, "任务队列已满")
	}
}

// Status 返回任务当前状态
func (o *Orchestrator) Status(ctx context.Context, runID string) (*model.Run, error) {
	run, err := o.runs.GetByID(ctx, runID)
	if err != nil {
		if err == repository.ErrNoSuchRun {
			return nil, apperrors.NotFound("run", runID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询任务失败")
	}
	return run, nil
}

// List 返回任务列表
func (o *Orchestrator) List(ctx context.Context, filter repository.ListFilter) ([]*model.Run, error) {
	runs, err := o.runs.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询任务列表失败")
	}
	return runs, nil
}

// Roster 返回一次任务的富化排班结果
func (o *Orchestrator) Roster(ctx context.Context, runID string) ([]*model.EnrichedAssignment, error) {
	run, err := o.Status(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != model.RunOptimal && run.Status != model.RunFeasible {
		return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("任务 %s 处于 %s 状态，没有可用的排班结果", runID, run.Status))
	}
	assignments, err := o.runs.AssignmentsByRun(ctx, runID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询分配结果失败")
	}
	snapshot, err := o.catalog.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "拍摄目录快照失败")
	}
	return enrich.EnrichRoster(snapshot, assignments), nil
}

// runJob 执行一次求解任务的完整生命周期：RUNNING -> 求解 -> 校验 -> 落库 -> 终态。
// ctx取消时求解调用会尽快返回，任务被终结为 ERROR("cancelled")。
func (o *Orchestrator) runJob(ctx context.Context, j *job) {
	start := time.Now()
	runID := j.runID

	ok, err := o.runs.MarkRunning(ctx, runID)
	if err != nil {
		o.finalizeError(context.Background(), j, start, fmt.Sprintf("标记RUNNING失败: %v", err))
		return
	}
	if !ok {
		// 任务已不处于QUEUED（例如关闭流程已将其终结），跳过执行
		return
	}

	o.log.RunStarted(runID, len(j.snapshot.Employees), len(j.snapshot.Demands))

	// 求解调用被硬性时限包裹：solver_time_limit加30秒缓冲，超出后强制终结为ERROR，
	// 而不是无限期等待一个既不报错也不遵守自身时限的后端。
	hardLimit := time.Duration(j.request.SolverTimeLimit+30) * time.Second
	solveCtx, cancel := context.WithTimeout(ctx, hardLimit)
	defer cancel()

	sol, err := o.driver.SolveWithRetry(solveCtx, runID, j.model)
	if err != nil {
		if solveCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			o.finalizeError(context.Background(), j, start,
				apperrors.Cancelled(fmt.Sprintf("求解超过硬性时限(%s)，任务被强制终结", hardLimit)).Error())
			return
		}
		if ctx.Err() != nil {
			o.finalizeError(context.Background(), j, start,
				apperrors.Cancelled("任务在求解过程中被取消").Error())
			return
		}
		o.finalizeError(context.Background(), j, start,
			apperrors.BackendError(fmt.Sprintf("求解后端调用失败: %v", err)).Error())
		return
	}

	o.handleSolution(context.Background(), j, start, sol)
}

// withWarnings 将建模阶段记录的警告（如min_shifts下调）附加到终结日志中
func withWarnings(j *job, logs string) string {
	if len(j.model.Warnings) == 0 {
		return logs
	}
	return logs + " | warnings: " + strings.Join(j.model.Warnings, "; ")
}

func (o *Orchestrator) handleSolution(ctx context.Context, j *job, start time.Time, sol *solverbackend.Solution) {
	runID := j.runID

	switch sol.Status {
	case solverbackend.StatusInfeasible:
		conflicts := solverbackend.ClassifyConflicts(j.model, sol.ConflictTags)
		logs := apperrors.Infeasible(fmt.Sprintf("无可行解，冲突约束: %v", conflicts)).Error()
		o.finalize(ctx, j, start, model.RunInfeasible, nil, withWarnings(j, logs))
		return
	case solverbackend.StatusError:
		o.finalizeError(ctx, j, start, apperrors.BackendError(fmt.Sprintf("求解后端报告错误: %s", sol.Message)).Error())
		return
	case solverbackend.StatusOptimal, solverbackend.StatusFeasible:
		// 继续往下走校验与落库
	default:
		o.finalizeError(ctx, j, start, fmt.Sprintf("求解后端返回未知状态: %s", sol.Status))
		return
	}

	rounded := milp.RoundBinaries(j.model, sol.Values)
	if violations := solverbackend.Verify(j.model, rounded); len(violations) > 0 {
		o.finalizeError(ctx, j, start, solverbackend.Summarize(violations))
		return
	}

	assignments := extractAssignments(runID, j.model, j.snapshot, rounded)
	enrich.DeriveOvertime(assignments, j.snapshot)

	if err := o.runs.InsertAssignments(ctx, assignments); err != nil {
		o.finalizeError(ctx, j, start, fmt.Sprintf("写入分配结果失败: %v", err))
		return
	}

	o.recordQualityMetrics(runID, j, assignments)

	status := model.RunOptimal
	if sol.Status == solverbackend.StatusFeasible {
		status = model.RunFeasible
	}
	o.finalize(ctx, j, start, status, sol.ObjectiveValue, withWarnings(j, sol.Message))
}

// recordQualityMetrics 计算本次求解结果的覆盖率与工时公平性，写入监控指标。
// 失败或数据不全时静默跳过，不影响任务本身的终结。
func (o *Orchestrator) recordQualityMetrics(runID string, j *job, assignments []*model.Assignment) {
	days, err := (model.DateRange{
		StartDate: j.request.HorizonStart,
		EndDate:   addDays(j.request.HorizonStart, j.request.HorizonDays-1),
	}).Days()
	if err != nil {
		return
	}
	demands := j.snapshot.DemandsInHorizon(days)

	coverage := stats.NewCoverageAnalyzer().Analyze(demands, assignments, j.snapshot)
	metrics.SetCoverageRate(runID, coverage.OverallCoverage)

	fairness := stats.NewFairnessAnalyzer().Analyze(assignments, j.snapshot)
	metrics.SetFairnessGini(runID, fairness.WorkloadGini)
}

func (o *Orchestrator) finalizeError(ctx context.Context, j *job, start time.Time, logs string) {
	o.finalize(ctx, j, start, model.RunError, nil, logs)
}

func (o *Orchestrator) finalize(ctx context.Context, j *job, start time.Time, status model.RunStatus, objective *float64, logs string) {
	if err := o.runs.Finalize(ctx, j.runID, status, objective, logs); err != nil {
		if apperrors.Is(err, apperrors.CodeTerminalConflict) {
			return
		}
		logger.WithError(err).Str("run_id", j.runID).Msg("终结任务失败")
		return
	}
	duration := time.Since(start)
	o.log.RunFinalized(j.runID, string(status), duration, objective)
	metrics.RecordRunFinalized(string(status), duration)
	metrics.SetWorkerPoolStats(o.QueueDepth(), int(o.ActiveJobs()))
}

// Shutdown 优雅关闭：先取消在制worker，等待其收尾（超时后放弃等待），
// 再排空队列中尚未被任何worker取走的任务，将它们终结为 ERROR("not started")。
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	var shutdownErr error
	o.shutdownOnce.Do(func() {
		o.cancel()

		waitCtx, cancel := context.WithTimeout(ctx, o.shutdownTO)
		defer cancel()
		done := make(chan struct{})
		go func() {
			o.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-waitCtx.Done():
			shutdownErr = fmt.Errorf("等待worker收尾超时")
		}

		close(o.jobs)
		for j := range o.jobs {
			_ = o.runs.Finalize(context.Background(), j.runID, model.RunError, nil,
				apperrors.Cancelled("服务关闭前任务尚未开始求解").Error())
		}
		close(o.drained)
	})
	return shutdownErr
}

// addDays 按天数偏移一个YYYY-MM-DD日期字符串，解析失败时原样返回
func addDays(date string, n int) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format("2006-01-02")
}

// ActiveJobs 返回当前正在执行求解的任务数（用于监控指标）
func (o *Orchestrator) ActiveJobs() int32 {
	return atomic.LoadInt32(&o.activeJobs)
}

// QueueDepth 返回队列中尚未被取走的任务数
func (o *Orchestrator) QueueDepth() int {
	return len(o.jobs)
}
