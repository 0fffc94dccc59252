package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/booking"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
)

type BookingHandler struct {
	catalog  catalog.Service
	booking  booking.Service
	budget   time.Duration
	maxNotes int
	now      func() time.Time
}

func NewBookingHandler(cat catalog.Service, svc booking.Service, budget time.Duration, maxNotes int) *BookingHandler {
	return &BookingHandler{catalog: cat, booking: svc, budget: budget, maxNotes: maxNotes, now: time.Now}
}

type bookPage struct {
	Page              Page
	Salon             resource.Salon
	Flow              booking.View
	Services          []resource.Service
	Employees         []resource.Employee
	ServicesDisabled  bool
	EmployeesDisabled bool
	MinDate           string
	MaxNotes          int
}

type bookForm struct {
	Token       string `form:"token"`
	ClientName  string `form:"clientName"`
	ClientPhone string `form:"clientPhone"`
	ClientEmail string `form:"clientEmail"`
	Service     string `form:"service"`
	Employee    string `form:"employee"`
	Date        string `form:"date"`
	Time        string `form:"time"`
	Notes       string `form:"notes"`
}

func (f bookForm) toForm() booking.Form {
	return booking.Form{
		ClientName:  f.ClientName,
		ClientPhone: f.ClientPhone,
		ClientEmail: f.ClientEmail,
		Service:     f.Service,
		Employee:    f.Employee,
		Date:        f.Date,
		Time:        f.Time,
		Notes:       f.Notes,
	}
}

func bookedURL(slug string) string {
	return "/salons/" + slug + "?booked=1"
}

// flowFor returns the flow a token names when it belongs to this salon, or
// a fresh one. Expired tokens quietly start over.
func (h *BookingHandler) flowFor(slug, token string) *booking.Flow {
	if token != "" {
		if f, err := h.booking.Lookup(token); err == nil && f.Slug == slug {
			return f
		}
	}
	return h.booking.Start(slug)
}

// GET /salons/:slug/book
func (h *BookingHandler) Form(c fiber.Ctx) error {
	slug := c.Params("slug")
	flow := h.flowFor(slug, c.Query("token"))

	v := flow.View()
	if v.State == booking.StateSucceeded {
		return seeOther(c, bookedURL(slug))
	}

	ctx, cancel := budgeted(c, h.budget)
	defer cancel()
	salon := h.catalog.Salon(slug).Resolve(ctx)

	if salon.Salon.Status == query.StatusError {
		return renderError(c, salonErrorStatus(salon.Salon.Err), msgSalonNotFound)
	}

	data := h.page(salon, v)
	if !salon.Settled() || v.State == booking.StateSubmitting {
		data.Page.Refresh = "/salons/" + slug + "/book?token=" + v.Token
		data.Page.RefreshSeconds = refreshSeconds
	}
	return render(c, fiber.StatusOK, "book", data)
}

// POST /salons/:slug/book
func (h *BookingHandler) Submit(c fiber.Ctx) error {
	slug := c.Params("slug")

	var in bookForm
	if err := c.Bind().Form(&in); err != nil {
		return renderError(c, fiber.StatusBadRequest, booking.MsgGenericFailure)
	}
	flow := h.flowFor(slug, in.Token)

	ctx, cancel := budgeted(c, h.budget)
	salon := h.catalog.Salon(slug).Resolve(ctx)
	cancel()

	if salon.Salon.Status == query.StatusError {
		return renderError(c, salonErrorStatus(salon.Salon.Err), msgSalonNotFound)
	}

	// Choices cannot be checked against lists that are still loading.
	if !salon.Settled() {
		h.booking.Hold(flow, in.toForm())
		data := h.page(salon, flow.View())
		data.Page.Refresh = "/salons/" + slug + "/book?token=" + flow.Token
		data.Page.RefreshSeconds = refreshSeconds
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(refreshSeconds))
		return render(c, fiber.StatusServiceUnavailable, "book", data)
	}

	_, err := h.booking.Submit(c.Context(), flow, in.toForm(), salon)
	if err == nil {
		return seeOther(c, bookedURL(slug))
	}
	return h.mapBookingError(c, err, salon, flow)
}

func (h *BookingHandler) mapBookingError(c fiber.Ctx, err error, salon catalog.SalonView, flow *booking.Flow) error {
	v := flow.View()
	data := h.page(salon, v)

	switch {
	case errors.Is(err, booking.ErrAlreadySubmitted):
		return seeOther(c, bookedURL(flow.Slug))
	case errors.Is(err, booking.ErrSubmitInFlight):
		data.Page.Refresh = "/salons/" + flow.Slug + "/book?token=" + v.Token
		data.Page.RefreshSeconds = refreshSeconds
		return render(c, fiber.StatusConflict, "book", data)
	case errors.Is(err, booking.ErrInvalidForm), errors.Is(err, resource.ErrValidation):
		return render(c, fiber.StatusUnprocessableEntity, "book", data)
	default:
		return render(c, fiber.StatusBadGateway, "book", data)
	}
}

func (h *BookingHandler) page(salon catalog.SalonView, v booking.View) bookPage {
	return bookPage{
		Page:              Page{Title: pageTitle("Réserver", salon.Salon.Value.Name)},
		Salon:             salon.Salon.Value,
		Flow:              v,
		Services:          salon.Services.Value,
		Employees:         salon.Employees.Value,
		ServicesDisabled:  len(salon.Services.Value) == 0,
		EmployeesDisabled: len(salon.Employees.Value) == 0,
		MinDate:           h.now().Format("2006-01-02"),
		MaxNotes:          h.maxNotes,
	}
}
