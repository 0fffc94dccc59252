package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/internal/api/http/handler"
	"github.com/Alijeyrad/salon_storefront/internal/api/http/middleware"
	"github.com/Alijeyrad/salon_storefront/internal/api/http/router"
	"github.com/Alijeyrad/salon_storefront/internal/api/http/view"
	"github.com/Alijeyrad/salon_storefront/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) (*fiber.App, error) {
	app, err := NewApp(p.Cfg, p.OTel != nil)
	if err != nil {
		return nil, err
	}

	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app, nil
}

// NewApp builds the fiber app with views and global middleware but no
// routes. Tests use it to mount handlers directly.
func NewApp(cfg *config.Config, traced bool) (*fiber.App, error) {
	views, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}
	if err := views.Load(); err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	app := fiber.New(fiber.Config{
		AppName:      cfg.Observability.ServiceName,
		Views:        views,
		ViewsLayout:  view.Layout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		ErrorHandler: errorHandler,
	})

	if traced && cfg.Observability.Tracing.Enabled {
		app.Use(observability.FiberMiddleware())
	}

	configureGlobalMiddleware(app, cfg)
	return app, nil
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.Environment == "production" {
		app.Use(helmet.New())
		if cfg.Server.CORS.Enabled {
			app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORS.AllowOrigins}))
		}
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${url} ${status}\n",
	}))
}

var statusMessages = map[int]string{
	fiber.StatusUnauthorized: "Connexion requise.",
	fiber.StatusForbidden:    "Accès refusé.",
	fiber.StatusNotFound:     "Page introuvable.",
}

// errorHandler renders errors that escaped a handler as an HTML page.
// Backend error details never reach the visitor.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	msg, ok := statusMessages[code]
	if !ok {
		msg = "Une erreur est survenue. Veuillez réessayer."
	}
	if code >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.Context(), "request failed", "path", c.Path(), "error", err)
	}

	return handler.RenderError(c, code, msg)
}
