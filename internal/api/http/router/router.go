package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/internal/api/http/handler"
	"github.com/Alijeyrad/salon_storefront/internal/api/http/middleware"
	"github.com/Alijeyrad/salon_storefront/internal/service/board"
	"github.com/Alijeyrad/salon_storefront/internal/service/booking"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Redis      *redis.Client `optional:"true"`
	CatalogSvc catalog.Service
	BookingSvc booking.Service
	BoardSvc   board.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	budget := r.p.Cfg.Server.RenderBudget()
	bookingLimiter := middleware.BookingLimiter(r.p.Cfg.Server.RateLimit.BookingPerMinute, r.p.Redis)
	operatorRequired := middleware.OperatorRequired()
	dashboardCSRF := middleware.DashboardCSRF(r.p.Redis, r.p.Cfg.Server.Environment == "production")

	// 3. Initialize Handlers
	storefrontH := handler.NewStorefrontHandler(r.p.CatalogSvc, budget)
	bookingH := handler.NewBookingHandler(r.p.CatalogSvc, r.p.BookingSvc, budget, r.p.Cfg.Booking.MaxNotesLength)
	dashboardH := handler.NewDashboardHandler(r.p.BoardSvc, budget)

	// 4. Delegate to sub-files
	r.registerStorefrontRoutes(app, storefrontH, bookingH, bookingLimiter)
	r.registerDashboardRoutes(app, dashboardH, operatorRequired, dashboardCSRF)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.redisHealthy(c.Context()) },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// redisHealthy is true when redis is disabled or answers a ping.
func (r *Router) redisHealthy(ctx context.Context) bool {
	if r.p.Redis == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return r.p.Redis.Ping(ctx).Err() == nil
}
