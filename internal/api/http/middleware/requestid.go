package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

// RequestID generates or preserves request IDs and puts the request
// metadata on the request context, where the transport picks it up for
// outgoing backend calls.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		// prefer incoming, else generate
		rid := c.Get(transport.HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(transport.HeaderRequestID, rid)

		meta := &reqctx.RequestMeta{
			RequestID:   rid,
			ClientIP:    c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			RequestedAt: time.Now(),
		}
		c.SetContext(reqctx.WithRequestMeta(c.Context(), meta))

		return c.Next()
	}
}
