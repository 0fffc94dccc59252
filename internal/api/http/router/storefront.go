package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salon_storefront/internal/api/http/handler"
)

func (r *Router) registerStorefrontRoutes(
	app fiber.Router,
	sh *handler.StorefrontHandler,
	bh *handler.BookingHandler,
	bookingLimiter fiber.Handler,
) {
	app.Get("/", sh.Salons)

	salon := app.Group("/salons/:slug")
	salon.Get("/", sh.Salon)
	salon.Get("/book", bh.Form)
	salon.Post("/book", bookingLimiter, bh.Submit)
}
