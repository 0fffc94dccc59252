package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"
)

const msgTooManyBookings = "Trop de demandes. Veuillez réessayer dans une minute."

// BookingLimiter caps booking submissions per client IP. With a redis
// client the window is shared across instances; without one each process
// counts on its own.
func BookingLimiter(perMinute int, rdb *redis.Client) fiber.Handler {
	if perMinute <= 0 {
		perMinute = 10
	}

	cfg := limiter.Config{
		// sliding window
		Max:               perMinute,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c fiber.Ctx) string {
			return "booking:" + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).SendString(msgTooManyBookings)
		},
	}
	if rdb != nil {
		cfg.Storage = fiberredis.NewFromConnection(rdb)
	}
	return limiter.New(cfg)
}
