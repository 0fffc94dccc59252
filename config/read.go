package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "STOREFRONT"
)

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType(ConfigFormat)
	v.AddConfigPath(configPath)

	// Allow env vars to override config values.
	// e.g. STOREFRONT_BACKEND_BASE_URL overrides backend.base_url
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Containers run without a file as long as the backend is configured.
		if os.Getenv(EnvPrefix+"_BACKEND_BASE_URL") == "" {
			return nil, fmt.Errorf("config file not found in %q and %s_BACKEND_BASE_URL is unset", configPath, EnvPrefix)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.timeout_seconds", 15)
	v.SetDefault("server.render_budget_ms", 1500)
	v.SetDefault("server.rate_limit.booking_per_minute", 10)

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("backend.user_agent", "salon-storefront")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("booking.phone_region", "MA")
	v.SetDefault("booking.session_ttl_minutes", 30)
	v.SetDefault("booking.max_notes_length", 500)

	v.SetDefault("board.skeleton_rows", 5)

	v.SetDefault("cache.public_stale_seconds", 60)
	v.SetDefault("cache.dashboard_stale_seconds", 0)
	v.SetDefault("cache.evict_after_minutes", 10)
	v.SetDefault("cache.sweep_interval_seconds", 60)

	v.SetDefault("observability.service_name", "salon-storefront")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)
}
