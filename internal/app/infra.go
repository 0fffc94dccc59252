package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/pkg/observability"
	redispkg "github.com/Alijeyrad/salon_storefront/pkg/redis"
	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideTransport),
	fx.Provide(ProvideResourceClient),
)

// ProvideRedis returns nil when redis is disabled; consumers fall back to
// in-process state.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		slog.Info("redis disabled, using in-memory rate limiting")
		return nil, nil
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

func ProvideTransport(cfg *config.Config) (*transport.Client, error) {
	return transport.New(cfg.Backend, slog.Default().With("component", "transport"))
}

func ProvideResourceClient(t *transport.Client) *resource.Client {
	return resource.New(t)
}
