package redis

import (
	"time"

	"github.com/Alijeyrad/salon_storefront/config"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromCentralConfig converts config.RedisConfig, falling back to
// DefaultConfig for anything left at zero.
func FromCentralConfig(c config.RedisConfig) Config {
	d := DefaultConfig()
	cfg := Config{
		Addr:         c.Addr,
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     orInt(c.PoolSize, d.PoolSize),
		MinIdleConns: orInt(c.MinIdleConns, d.MinIdleConns),
		DialTimeout:  orSeconds(c.DialTimeoutSeconds, d.DialTimeout),
		ReadTimeout:  orSeconds(c.ReadTimeoutSeconds, d.ReadTimeout),
		WriteTimeout: orSeconds(c.WriteTimeoutSeconds, d.WriteTimeout),
	}
	if cfg.Addr == "" {
		cfg.Addr = d.Addr
	}
	return cfg
}

func orInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orSeconds(v int, fallback time.Duration) time.Duration {
	if v > 0 {
		return time.Duration(v) * time.Second
	}
	return fallback
}
