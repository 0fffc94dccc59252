package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salon_storefront/internal/api/http/handler"
)

func (r *Router) registerDashboardRoutes(
	app fiber.Router,
	dh *handler.DashboardHandler,
	operatorRequired fiber.Handler,
	csrf fiber.Handler,
) {
	appts := app.Group("/dashboard/appointments", operatorRequired, csrf)

	appts.Get("/", dh.List)

	a := appts.Group("/:id")
	a.Post("/status", dh.SetStatus)
	a.Post("/employee", dh.Reassign)
	a.Get("/delete", dh.ConfirmDelete)
	a.Post("/delete", dh.Delete)
}
