package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Backend       BackendConfig       `mapstructure:"backend"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Booking       BookingConfig       `mapstructure:"booking"`
	Board         BoardConfig         `mapstructure:"board"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Environment    string          `mapstructure:"environment"`
	RenderBudgetMs int             `mapstructure:"render_budget_ms"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RenderBudget is how long a page waits for its queries before rendering
// the loading state instead.
func (s ServerConfig) RenderBudget() time.Duration {
	return time.Duration(s.RenderBudgetMs) * time.Millisecond
}

type CORSConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type RateLimitConfig struct {
	BookingPerMinute int `mapstructure:"booking_per_minute"`
}

// BackendConfig points at the salon API the storefront renders.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type RedisConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type BookingConfig struct {
	PhoneRegion       string `mapstructure:"phone_region"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes"`
	MaxNotesLength    int    `mapstructure:"max_notes_length"`
}

func (b BookingConfig) SessionTTL() time.Duration {
	if b.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(b.SessionTTLMinutes) * time.Minute
}

type BoardConfig struct {
	SkeletonRows int `mapstructure:"skeleton_rows"`
}

// CacheConfig tunes the read caches. Public pages share one cache; every
// operator session gets its own.
type CacheConfig struct {
	PublicStaleSeconds    int `mapstructure:"public_stale_seconds"`
	DashboardStaleSeconds int `mapstructure:"dashboard_stale_seconds"`
	EvictAfterMinutes     int `mapstructure:"evict_after_minutes"`
	SweepIntervalSeconds  int `mapstructure:"sweep_interval_seconds"`
}

func (c CacheConfig) PublicStale() time.Duration {
	return time.Duration(c.PublicStaleSeconds) * time.Second
}

func (c CacheConfig) DashboardStale() time.Duration {
	return time.Duration(c.DashboardStaleSeconds) * time.Second
}

func (c CacheConfig) EvictAfter() time.Duration {
	return time.Duration(c.EvictAfterMinutes) * time.Minute
}

func (c CacheConfig) SweepInterval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/storefront.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port (got %d)", c.Server.Port)
	}
	if c.Server.RenderBudgetMs <= 0 {
		return errors.New("server.render_budget_ms must be positive")
	}
	if c.Board.SkeletonRows <= 0 {
		return errors.New("board.skeleton_rows must be positive")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	return nil
}
