package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/extractors"
	"github.com/gofiber/fiber/v3/middleware/csrf"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"
)

const (
	// CSRFField is the hidden form field dashboard forms carry the token in.
	CSRFField = "_csrf"
	// CSRFCookie holds the double-submit half of the token.
	CSRFCookie = "dashboard_csrf"
)

// DashboardCSRF rejects state-changing dashboard requests that come from
// another site or lack the form token. GET requests issue the token, which
// pages read with csrf.TokenFromContext.
func DashboardCSRF(rdb *redis.Client, secure bool) fiber.Handler {
	cfg := csrf.Config{
		CookieName:     CSRFCookie,
		CookiePath:     "/dashboard",
		CookieSameSite: fiber.CookieSameSiteStrictMode,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		Extractor:      extractors.FromForm(CSRFField),
		ErrorHandler: func(c fiber.Ctx, err error) error {
			slog.WarnContext(c.Context(), "dashboard request refused",
				"path", c.Path(),
				"origin", c.Get(fiber.HeaderOrigin),
				"error", err,
			)
			return fiber.ErrForbidden
		},
	}
	if rdb != nil {
		cfg.Storage = fiberredis.NewFromConnection(rdb)
	}
	return csrf.New(cfg)
}

// CSRFToken is the token issued for the current request, empty when the
// route is not protected.
func CSRFToken(c fiber.Ctx) string {
	return csrf.TokenFromContext(c)
}
