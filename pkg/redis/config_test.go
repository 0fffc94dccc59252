package redis

import (
	"testing"
	"time"

	"github.com/Alijeyrad/salon_storefront/config"
)

func TestFromCentralConfig_Defaults(t *testing.T) {
	cfg := FromCentralConfig(config.RedisConfig{})
	d := DefaultConfig()

	if cfg.Addr != d.Addr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, d.Addr)
	}
	if cfg.PoolSize != d.PoolSize || cfg.MinIdleConns != d.MinIdleConns {
		t.Errorf("pool = %d/%d, want defaults", cfg.PoolSize, cfg.MinIdleConns)
	}
	if cfg.DialTimeout != d.DialTimeout {
		t.Errorf("DialTimeout = %v", cfg.DialTimeout)
	}
}

func TestFromCentralConfig_Overrides(t *testing.T) {
	cfg := FromCentralConfig(config.RedisConfig{
		Addr:               "cache:6380",
		DB:                 2,
		PoolSize:           40,
		ReadTimeoutSeconds: 7,
	})
	if cfg.Addr != "cache:6380" || cfg.DB != 2 || cfg.PoolSize != 40 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.ReadTimeout != 7*time.Second {
		t.Errorf("ReadTimeout = %v, want 7s", cfg.ReadTimeout)
	}
}

func TestNewRedisFromCentral_Disabled(t *testing.T) {
	rdb, err := NewRedisFromCentral(config.RedisConfig{Enabled: false, Addr: "ignored:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rdb != nil {
		t.Error("expected nil client when redis is disabled")
	}
}
