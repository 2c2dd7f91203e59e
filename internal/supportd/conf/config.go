package conf

import (
	"path/filepath"
	"time"

	"github.com/birmarket/supportd/pkg/util"
)

const (
	DefaultChatAddr      = "127.0.0.1:8000"
	DefaultDashboardAddr = "127.0.0.1:8001"
	DefaultRedisAddr     = "127.0.0.1:6379"
	DefaultRedisProcess  = "redis-server"
)

// Config holds all supportd settings. The launcher and both services read
// from the same file; each mode uses the subset it needs.
type Config struct {
	ConfigDir string `mapstructure:"-"`

	ChatAddr      string `mapstructure:"chat_addr"`
	DashboardAddr string `mapstructure:"dashboard_addr"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisProcess  string `mapstructure:"redis_process"`

	StopTimeout time.Duration `mapstructure:"stop_timeout"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	AgentTTL    time.Duration `mapstructure:"agent_ttl"`

	CacheThreshold float64 `mapstructure:"cache_threshold"`
	HistoryPath    string  `mapstructure:"history_path"`

	Debug bool `mapstructure:"debug"`
}

var Defaults = map[string]any{
	"chat_addr":       DefaultChatAddr,
	"dashboard_addr":  DefaultDashboardAddr,
	"redis_addr":      DefaultRedisAddr,
	"redis_password":  "",
	"redis_db":        0,
	"redis_process":   DefaultRedisProcess,
	"stop_timeout":    "10s",
	"session_ttl":     "3h",
	"agent_ttl":       "5m",
	"cache_threshold": 0.7,
	"history_path":    filepath.Join(util.DefaultWorkDir(), "history.db"),
	"debug":           false,
}

func (c *Config) GetChatAddr() string {
	if c.ChatAddr == "" {
		c.ChatAddr = DefaultChatAddr
	}
	return c.ChatAddr
}

func (c *Config) GetDashboardAddr() string {
	if c.DashboardAddr == "" {
		c.DashboardAddr = DefaultDashboardAddr
	}
	return c.DashboardAddr
}

func (c *Config) GetRedisAddr() string {
	if c.RedisAddr == "" {
		c.RedisAddr = DefaultRedisAddr
	}
	return c.RedisAddr
}

func (c *Config) GetRedisProcess() string {
	if c.RedisProcess == "" {
		c.RedisProcess = DefaultRedisProcess
	}
	return c.RedisProcess
}

func (c *Config) GetStopTimeout() time.Duration {
	if c.StopTimeout <= 0 {
		c.StopTimeout = 10 * time.Second
	}
	return c.StopTimeout
}

func (c *Config) GetSessionTTL() time.Duration {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 3 * time.Hour
	}
	return c.SessionTTL
}

func (c *Config) GetAgentTTL() time.Duration {
	if c.AgentTTL <= 0 {
		c.AgentTTL = 5 * time.Minute
	}
	return c.AgentTTL
}

func (c *Config) GetCacheThreshold() float64 {
	if c.CacheThreshold <= 0 {
		c.CacheThreshold = 0.7
	}
	return c.CacheThreshold
}

func (c *Config) GetHistoryPath() string {
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(util.DefaultWorkDir(), "history.db")
	}
	return c.HistoryPath
}
