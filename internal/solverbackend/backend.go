// Package solverbackend 封装与外部MILP求解服务之间的通信、重试与结果校验。
// 本包本身不求解任何模型——所有求解都发生在进程外。
package solverbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hospitalroster/core/internal/milp"
)

// Status 后端返回的求解结果状态，与任务生命周期终态一一对应
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusError      Status = "ERROR"
)

// Solution 是求解后端返回的原始结果
type Solution struct {
	Status         Status             `json:"status"`
	ObjectiveValue *float64           `json:"objective_value,omitempty"`
	Values         map[string]float64 `json:"values,omitempty"`
	ConflictTags   []string           `json:"conflict_tags,omitempty"` // INFEASIBLE时的IIS约束标签集合
	Message        string             `json:"message,omitempty"`
}

// SolverBackend 是求解一个MILP模型的抽象接口
type SolverBackend interface {
	Solve(ctx context.Context, m *milp.Model) (*Solution, error)
}

// HTTPBackend 通过HTTP/JSON调用外部求解服务。这是本仓库中唯一有意采用标准库
// 而非第三方客户端的组件：检索到的示例仓库均未携带MILP/LP求解库。
type HTTPBackend struct {
	url    string
	client *http.Client
}

// NewHTTPBackend 创建HTTP求解后端客户端
func NewHTTPBackend(url string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Solve 将模型序列化为JSON发送给求解服务，并解析其响应
func (b *HTTPBackend) Solve(ctx context.Context, m *milp.Model) (*Solution, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("序列化求解模型失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造求解请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用求解后端失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取求解后端响应失败: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("求解后端返回服务端错误 (status=%d): %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("求解后端拒绝请求 (status=%d): %s", resp.StatusCode, string(respBody))
	}

	var sol Solution
	if err := json.Unmarshal(respBody, &sol); err != nil {
		return nil, fmt.Errorf("解析求解后端响应失败: %w", err)
	}
	return &sol, nil
}
