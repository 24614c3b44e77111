// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	API          APIConfig
	Solver       SolverConfig
	Orchestrator OrchestratorConfig
	Metrics      MetricsConfig
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string
	Env      string
	Port     int
	LogLevel string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int
	Timeout   time.Duration
	CORS      CORSConfig
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool
	Origins []string
}

// SolverConfig 外部MILP求解后端配置
type SolverConfig struct {
	BackendURL       string        // 求解服务的HTTP端点
	DefaultTimeLimit int           // 秒；其他代码不读取此字段，请求未指定时限时由model.Request.ApplyDefaults取60
	RequestTimeout   time.Duration // HTTP客户端超时，应略大于DefaultTimeLimit
	MaxRetries       int           // 后端连接失败时的最大重试次数
	RetryBackoff     time.Duration // 重试初始退避时间
	CriticalShiftIDs []string      // 资深/初级配比约束生效的班次ID集合，运维方配置，不随请求变化
}

// OrchestratorConfig 排班任务编排器配置
type OrchestratorConfig struct {
	WorkerCount     int           // 并发求解worker数
	QueueDepth      int           // 待求解任务队列容量
	ShutdownTimeout time.Duration // 优雅关闭时等待在制任务收尾的最长时间
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "hospitalroster"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "hospitalroster"),
			User:            getEnv("DB_USER", "hospitalroster"),
			Password:        getEnv("DB_PASSWORD", "hospitalroster"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Solver: SolverConfig{
			BackendURL:       getEnv("SOLVER_BACKEND_URL", "http://localhost:9100/solve"),
			DefaultTimeLimit: getEnvInt("SOLVER_DEFAULT_TIME_LIMIT", 60),
			RequestTimeout:   getEnvDuration("SOLVER_REQUEST_TIMEOUT", 90*time.Second),
			MaxRetries:       getEnvInt("SOLVER_MAX_RETRIES", 3),
			RetryBackoff:     getEnvDuration("SOLVER_RETRY_BACKOFF", 500*time.Millisecond),
			CriticalShiftIDs: getEnvStringSlice("SOLVER_CRITICAL_SHIFT_IDS", []string{"S3"}),
		},
		Orchestrator: OrchestratorConfig{
			WorkerCount:     getEnvInt("ORCHESTRATOR_WORKERS", 1),
			QueueDepth:      getEnvInt("ORCHESTRATOR_QUEUE_DEPTH", 100),
			ShutdownTimeout: getEnvDuration("ORCHESTRATOR_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
