// HospitalRoster 排班求解核心服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/hospitalroster/core/internal/config"
	"github.com/hospitalroster/core/internal/database"
	"github.com/hospitalroster/core/internal/handler"
	"github.com/hospitalroster/core/internal/metrics"
	"github.com/hospitalroster/core/internal/milp"
	"github.com/hospitalroster/core/internal/orchestrator"
	"github.com/hospitalroster/core/internal/repository"
	"github.com/hospitalroster/core/internal/solverbackend"
	apperrors "github.com/hospitalroster/core/pkg/errors"
	"github.com/hospitalroster/core/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("HospitalRoster 排班求解核心 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("数据库连接失败")
	}
	defer db.Close()

	catalogRepo := repository.NewCatalogRepository(db)
	runRepo := repository.NewRunRepository(db)

	backend := solverbackend.NewHTTPBackend(cfg.Solver.BackendURL, cfg.Solver.RequestTimeout)
	driver := solverbackend.NewDriver(backend, cfg.Solver.MaxRetries, cfg.Solver.RetryBackoff)

	milpParams := milp.Params{
		CriticalShiftIDs: cfg.Solver.CriticalShiftIDs,
	}
	prefs := milp.NewPreferenceStore()

	orch := orchestrator.New(cfg.Orchestrator, driver, runRepo, catalogRepo, milpParams, prefs)

	runHandler := handler.NewRunHandler(orch)
	catalogHandler := handler.NewCatalogHandler(catalogRepo)

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"hospitalroster"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "HospitalRoster 排班求解核心 API v1",
			"endpoints": {
				"catalog": {
					"seed": "POST /api/v1/catalog/seed"
				},
				"runs": {
					"submit": "POST /api/v1/runs",
					"list": "GET /api/v1/runs",
					"status": "GET /api/v1/runs/{run_id}"
				}
			}
		}`))
	})

	mux.HandleFunc("/api/v1/catalog/seed", catalogHandler.Seed)

	mux.HandleFunc("/api/v1/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			runHandler.Submit(w, r)
			return
		}
		runHandler.List(w, r)
	})

	mux.HandleFunc("/api/v1/runs/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
		rest = strings.Trim(rest, "/")
		if rest == "" {
			http.NotFound(w, r)
			return
		}
		parts := strings.Split(rest, "/")
		runID := parts[0]
		if len(parts) == 1 {
			runHandler.Status(w, r, runID)
			return
		}
		http.NotFound(w, r)
	})

	// ========================================
	// 监控端点
	// ========================================

	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> recovery -> rateLimit -> cors -> logging -> handler
	rootHandler := requestIDMiddleware(recoveryMiddleware(rateLimitMiddleware(cfg.API.RateLimit)(corsMiddleware(loggingMiddleware(mux)))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rootHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}

	if err := orch.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("编排器关闭失败")
	}

	logger.Info().Msg("服务器已关闭")
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware 捕获处理器中的panic，避免单次请求的异常拖垮整个进程
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID, _ := r.Context().Value("request_id").(string)
				logger.Error().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Msg("处理请求时发生panic")
				appErr := apperrors.New(apperrors.CodeInternal, "服务器内部错误")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(appErr.HTTPStatus)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"code":    appErr.Code,
					"message": appErr.Message,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID, _ := r.Context().Value("request_id").(string)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitMiddleware 限流中间件，按配置的QPS构造限流器
func rateLimitMiddleware(requestsPerSecond int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(float64(requestsPerSecond))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"code":    "RATE_LIMITED",
					"message": "请求过于频繁，请稍后重试",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
