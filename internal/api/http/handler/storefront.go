package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
)

const msgSalonNotFound = "Salon introuvable."

type StorefrontHandler struct {
	catalog catalog.Service
	budget  time.Duration
}

func NewStorefrontHandler(svc catalog.Service, budget time.Duration) *StorefrontHandler {
	return &StorefrontHandler{catalog: svc, budget: budget}
}

type salonsPage struct {
	Page     Page
	Status   string
	Salons   []resource.Salon
	Cities   []string
	City     string
	Skeleton []int
}

// GET /
func (h *StorefrontHandler) Salons(c fiber.Ctx) error {
	ctx, cancel := budgeted(c, h.budget)
	defer cancel()

	l := h.catalog.Listing(ctx, c.Query("city"))

	data := salonsPage{
		Page:   Page{Title: "Salons"},
		Status: l.Status.String(),
		Salons: l.Salons,
		Cities: l.Cities,
		City:   l.City,
	}
	if l.Status == query.StatusPending {
		data.Skeleton = make([]int, 6)
		data.Page.Refresh, data.Page.RefreshSeconds = selfURL(c), refreshSeconds
	}
	return render(c, fiber.StatusOK, "salons", data)
}

type salonPage struct {
	Page            Page
	Booked          bool
	Salon           resource.Salon
	SalonStatus     string
	Services        []resource.Service
	ServicesStatus  string
	Employees       []resource.Employee
	EmployeesStatus string
}

// GET /salons/:slug
func (h *StorefrontHandler) Salon(c fiber.Ctx) error {
	ctx, cancel := budgeted(c, h.budget)
	defer cancel()

	v := h.catalog.Salon(c.Params("slug")).Resolve(ctx)

	data := salonPage{
		Page:            Page{Title: v.Salon.Value.Name},
		Booked:          c.Query("booked") == "1",
		Salon:           v.Salon.Value,
		SalonStatus:     v.Salon.Status.String(),
		Services:        v.Services.Value,
		ServicesStatus:  v.Services.Status.String(),
		Employees:       v.Employees.Value,
		EmployeesStatus: v.Employees.Status.String(),
	}
	if !v.Settled() {
		data.Page.Refresh, data.Page.RefreshSeconds = selfURL(c), refreshSeconds
	}

	status := fiber.StatusOK
	if v.Salon.Status == query.StatusError {
		data.Page.Title = msgSalonNotFound
		status = salonErrorStatus(v.Salon.Err)
	}
	return render(c, status, "salon", data)
}

func salonErrorStatus(err error) int {
	if errors.Is(err, resource.ErrNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusBadGateway
}

func pageTitle(parts ...string) string {
	return strings.Join(parts, " · ")
}
