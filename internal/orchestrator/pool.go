package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hospitalroster/core/internal/milp"
	"github.com/hospitalroster/core/pkg/model"
)

// job 是提交给worker池的一次求解任务。工作池只负责调度，具体的求解、
// 校验、持久化都发生在runJob里。
type job struct {
	runID    string
	model    *milp.Model
	snapshot *model.CatalogSnapshot
	request  model.Request
}

// worker 从jobs通道取任务执行，直到通道关闭或ctx被取消。
// Orchestrator.Shutdown先取消ctx让worker退出，等待之后再由Shutdown自身关闭并
// 排空通道，把仍在排队的任务终结为ERROR；worker不参与排空队列。
func (o *Orchestrator) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case j, ok := <-o.jobs:
			if !ok {
				return
			}
			atomic.AddInt32(&o.activeJobs, 1)
			o.runJob(ctx, j)
			atomic.AddInt32(&o.activeJobs, -1)
		case <-ctx.Done():
			return
		}
	}
}
