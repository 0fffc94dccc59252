package handler

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salon_storefront/internal/api/http/middleware"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/board"
	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
)

const (
	boardPath     = "/dashboard/appointments"
	noticeParam   = "notice"
	noticeFailed  = "failed"
	noticeInvalid = "invalid"
)

var boardColumns = []string{"Client", "Service", "Employé", "Date", "Statut", "Source", "Actions"}

type DashboardHandler struct {
	boards board.Service
	budget time.Duration
}

func NewDashboardHandler(svc board.Service, budget time.Duration) *DashboardHandler {
	return &DashboardHandler{boards: svc, budget: budget}
}

func (h *DashboardHandler) boardFor(c fiber.Ctx) (board.Board, bool) {
	op, ok := reqctx.OperatorFromContext(c.Context())
	if !ok {
		return nil, false
	}
	return h.boards.For(op), true
}

func mapBoardError(c fiber.Ctx, err error, returnTo string) error {
	switch {
	case errors.Is(err, board.ErrNotConfirmed):
		return seeOther(c, returnTo)
	case errors.Is(err, resource.ErrUnauthorized):
		return fiber.ErrUnauthorized
	case errors.Is(err, board.ErrInvalidID):
		return renderError(c, fiber.StatusNotFound, board.MsgActionFailed)
	case errors.Is(err, board.ErrInvalidStatus), errors.Is(err, board.ErrUnknownEmployee):
		return seeOther(c, withNotice(returnTo, noticeInvalid))
	default:
		return seeOther(c, withNotice(returnTo, noticeFailed))
	}
}

func withNotice(to, notice string) string {
	u, err := url.Parse(to)
	if err != nil {
		return boardPath
	}
	q := u.Query()
	q.Set(noticeParam, notice)
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

type employeeOption struct {
	ID       int
	Name     string
	Selected bool
}

type boardRow struct {
	Row       board.Row
	Statuses  []board.StatusOption
	Employees []employeeOption
}

type boardPage struct {
	Page          Page
	Listing       board.Listing
	Display       string
	Rows          []boardRow
	Columns       []string
	StatusFilter  []board.StatusOption
	Notice        string
	ReturnTo      string
	EmptyMessage  string
	FailedMessage string
}

func filtersFrom(c fiber.Ctx) resource.AppointmentFilters {
	return resource.AppointmentFilters{
		Status:      c.Query(resource.ParamStatus),
		StartAfter:  c.Query(resource.ParamStartAfter),
		StartBefore: c.Query(resource.ParamStartBefore),
	}.Normalize()
}

// returnURL is the board URL for the current filters, without notices.
func returnURL(f resource.AppointmentFilters) string {
	q := f.Query()
	if len(q) == 0 {
		return boardPath
	}
	return boardPath + "?" + q.Encode()
}

// GET /dashboard/appointments
func (h *DashboardHandler) List(c fiber.Ctx) error {
	b, ok := h.boardFor(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ctx, cancel := budgeted(c, h.budget)
	defer cancel()

	f := filtersFrom(c)
	l := b.List(ctx, f)
	if errors.Is(l.Err, resource.ErrUnauthorized) {
		return fiber.ErrUnauthorized
	}

	data := boardPage{
		Page:          Page{Title: "Rendez-vous", Dashboard: true, CSRF: middleware.CSRFToken(c)},
		Listing:       l,
		Display:       l.Display.String(),
		Columns:       boardColumns,
		StatusFilter:  board.StatusOptions(resource.Status(f.Status)),
		ReturnTo:      returnURL(f),
		EmptyMessage:  board.MsgEmpty,
		FailedMessage: board.MsgFailed,
	}

	if c.Query(noticeParam) != "" {
		data.Notice = board.MsgActionFailed
	}

	for _, r := range l.Rows {
		row := boardRow{Row: r, Statuses: board.StatusOptions(r.Status)}
		for _, e := range l.Employees {
			row.Employees = append(row.Employees, employeeOption{ID: e.ID, Name: e.Name, Selected: e.ID == r.EmployeeID})
		}
		data.Rows = append(data.Rows, row)
	}

	if l.Display == board.DisplayLoading || l.Refreshing {
		data.Page.Refresh, data.Page.RefreshSeconds = returnURL(f), refreshSeconds
	}
	return render(c, fiber.StatusOK, "appointments", data)
}

func appointmentID(c fiber.Ctx) int {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0
	}
	return id
}

// POST /dashboard/appointments/:id/status
func (h *DashboardHandler) SetStatus(c fiber.Ctx) error {
	b, ok := h.boardFor(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	returnTo := localReturn(c.FormValue("return_to"), boardPath)

	if err := b.SetStatus(c.Context(), appointmentID(c), c.FormValue("status")); err != nil {
		return mapBoardError(c, err, returnTo)
	}
	return seeOther(c, returnTo)
}

// POST /dashboard/appointments/:id/employee
func (h *DashboardHandler) Reassign(c fiber.Ctx) error {
	b, ok := h.boardFor(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	returnTo := localReturn(c.FormValue("return_to"), boardPath)

	if err := b.Reassign(c.Context(), appointmentID(c), c.FormValue("employee")); err != nil {
		return mapBoardError(c, err, returnTo)
	}
	return seeOther(c, returnTo)
}

type confirmPage struct {
	Page     Page
	ID       int
	Message  string
	ReturnTo string
}

// GET /dashboard/appointments/:id/delete
func (h *DashboardHandler) ConfirmDelete(c fiber.Ctx) error {
	id := appointmentID(c)
	if id <= 0 {
		return renderError(c, fiber.StatusNotFound, board.MsgActionFailed)
	}
	return render(c, fiber.StatusOK, "confirm_delete", confirmPage{
		Page:     Page{Title: board.MsgConfirmDelete, Dashboard: true, CSRF: middleware.CSRFToken(c)},
		ID:       id,
		Message:  board.MsgConfirmDelete,
		ReturnTo: localReturn(c.Query("return_to"), boardPath),
	})
}

// POST /dashboard/appointments/:id/delete
func (h *DashboardHandler) Delete(c fiber.Ctx) error {
	b, ok := h.boardFor(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	returnTo := localReturn(c.FormValue("return_to"), boardPath)
	confirmed := c.FormValue("confirm") == "yes"

	if err := b.Delete(c.Context(), appointmentID(c), confirmed); err != nil {
		return mapBoardError(c, err, returnTo)
	}
	return seeOther(c, returnTo)
}
