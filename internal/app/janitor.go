package app

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/service/booking"
)

type JanitorParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Public   *query.Client
	Caches   *query.Registry
	Bookings booking.Service
}

// RegisterJanitor runs the periodic sweep of caches and booking sessions
// for the lifetime of the app.
func RegisterJanitor(p JanitorParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				query.Janitor(ctx, p.Cfg.Cache.SweepInterval(), func(now time.Time) {
					evicted := p.Public.Sweep(now)
					p.Caches.Sweep(now)
					expired := p.Bookings.Sweep(now)
					slog.Debug("janitor sweep",
						"public_evicted", evicted,
						"operator_sessions", p.Caches.Len(),
						"booking_sessions_expired", expired,
					)
				})
			}()
			slog.Debug("janitor started", "interval", p.Cfg.Cache.SweepInterval())
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
