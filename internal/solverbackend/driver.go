package solverbackend

import (
	"context"
	"time"

	"github.com/hospitalroster/core/internal/milp"
	"github.com/hospitalroster/core/pkg/logger"
)

// Driver 在SolverBackend之上叠加失败重试。求解服务本身返回的
// OPTIMAL/FEASIBLE/INFEASIBLE/ERROR结果不会触发重试——那些是合法的求解结论。
// backend.Solve返回的任何错误都会重试：除传输层错误（网络中断、超时、5xx）外，
// 4xx拒绝和响应解析失败同样重试，不做区分。
type Driver struct {
	backend    SolverBackend
	maxRetries int
	backoff    time.Duration
	log        *logger.RunLogger
}

// NewDriver 创建带重试策略的求解驱动
func NewDriver(backend SolverBackend, maxRetries int, backoff time.Duration) *Driver {
	return &Driver{
		backend:    backend,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        logger.NewRunLogger(),
	}
}

// SolveWithRetry 调用求解后端，在其返回错误时按指数退避重试
func (d *Driver) SolveWithRetry(ctx context.Context, runID string, m *milp.Model) (*Solution, error) {
	var lastErr error
	backoff := d.backoff

	for attempt := 1; attempt <= d.maxRetries+1; attempt++ {
		sol, err := d.backend.Solve(ctx, m)
		if err == nil {
			return sol, nil
		}
		lastErr = err

		if attempt > d.maxRetries {
			break
		}
		d.log.SolveRetry(runID, attempt, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}
