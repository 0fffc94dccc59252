package board

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
)

// Query key roots. Every list key starts with KeyAppointments, so one
// prefix invalidation reaches all filter combinations.
const (
	KeyAppointments = "dashboard-appointments"
	KeyEmployees    = "dashboard-employees"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// API is the slice of the resource client the dashboard uses.
type API interface {
	ListAppointments(ctx context.Context, f resource.AppointmentFilters) ([]resource.Appointment, error)
	PatchAppointment(ctx context.Context, id int, p resource.AppointmentPatch) (resource.Appointment, error)
	DeleteAppointment(ctx context.Context, id int) error
	ListDashboardEmployees(ctx context.Context) ([]resource.Employee, error)
}

type Options struct {
	SkeletonRows int
	PhoneRegion  string
}

// Listing is everything the board page renders for one filter set.
type Listing struct {
	Filters    resource.AppointmentFilters
	Display    Display
	Rows       []Row
	Skeleton   []int
	Employees  []resource.Employee
	Refreshing bool
	Err        error
}

// FilterKey is the cache identity of a filter set. Absent filters are part
// of the key as empty values, so {status=pending} and {} never collide.
func FilterKey(f resource.AppointmentFilters) query.Key {
	f = f.Normalize()
	return query.Key{
		KeyAppointments,
		"status=" + f.Status,
		"after=" + f.StartAfter,
		"before=" + f.StartBefore,
	}
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Board is one operator's view of their appointments.
type Board interface {
	List(ctx context.Context, f resource.AppointmentFilters) Listing
	SetStatus(ctx context.Context, id int, status string) error
	Reassign(ctx context.Context, id int, employee string) error
	// Delete removes an appointment. Nothing is sent unless confirmed.
	Delete(ctx context.Context, id int, confirmed bool) error
}

// Service hands out boards bound to the operator's own cache.
type Service interface {
	For(op reqctx.Operator) Board
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type boardService struct {
	api      API
	registry *query.Registry
	opts     Options
	logger   *slog.Logger
}

func New(api API, registry *query.Registry, opts Options, logger *slog.Logger) Service {
	if opts.SkeletonRows <= 0 {
		opts.SkeletonRows = 5
	}
	return &boardService{api: api, registry: registry, opts: opts, logger: logger}
}

func (s *boardService) For(op reqctx.Operator) Board {
	return NewBoard(s.api, s.registry.For(op.SessionKey()), s.opts, s.logger)
}

type board struct {
	api    API
	cache  *query.Client
	opts   Options
	logger *slog.Logger
}

// NewBoard binds a board to one cache.
func NewBoard(api API, cache *query.Client, opts Options, logger *slog.Logger) Board {
	if opts.SkeletonRows <= 0 {
		opts.SkeletonRows = 5
	}
	return &board{api: api, cache: cache, opts: opts, logger: logger}
}

func (b *board) List(ctx context.Context, f resource.AppointmentFilters) Listing {
	f = f.Normalize()
	l := Listing{Filters: f}

	// Employees feed the reassignment selects; a failure there only hides
	// the selects.
	emps := query.Await(ctx, b.cache, query.Key{KeyEmployees}, b.api.ListDashboardEmployees)
	if emps.Status == query.StatusSuccess {
		l.Employees = emps.Value
	}

	snap := query.Await(ctx, b.cache, FilterKey(f), func(ctx context.Context) ([]resource.Appointment, error) {
		return b.api.ListAppointments(ctx, f)
	})
	l.Refreshing = snap.Fetching

	switch snap.Status {
	case query.StatusSuccess:
		if len(snap.Value) == 0 {
			l.Display = DisplayEmpty
			break
		}
		l.Display = DisplayRows
		l.Rows = make([]Row, 0, len(snap.Value))
		for _, a := range snap.Value {
			l.Rows = append(l.Rows, toRow(a, b.opts.PhoneRegion))
		}
	case query.StatusError:
		l.Display = DisplayFailed
		l.Err = snap.Err
		b.logger.WarnContext(ctx, "appointment list failed",
			"key", FilterKey(f).String(),
			"request_id", reqctx.RequestIDFromContext(ctx),
			"err", snap.Err,
		)
	default:
		l.Display = DisplayLoading
		l.Skeleton = make([]int, b.opts.SkeletonRows)
	}
	return l
}

func (b *board) SetStatus(ctx context.Context, id int, status string) error {
	if id <= 0 {
		return ErrInvalidID
	}
	st, ok := resource.ParseStatus(status)
	if !ok {
		return ErrInvalidStatus
	}

	if _, err := b.api.PatchAppointment(ctx, id, resource.AppointmentPatch{Status: &st}); err != nil {
		return fmt.Errorf("set appointment %d status: %w", id, err)
	}
	b.invalidate(ctx, "status", id)
	return nil
}

// Reassign sets the employee, or clears it when employee is empty.
func (b *board) Reassign(ctx context.Context, id int, employee string) error {
	if id <= 0 {
		return ErrInvalidID
	}

	patch := resource.AppointmentPatch{ClearEmployee: true}
	if employee != "" {
		empID, err := strconv.Atoi(employee)
		if err != nil || empID <= 0 {
			return ErrUnknownEmployee
		}
		patch = resource.AppointmentPatch{EmployeeID: &empID}
	}

	if _, err := b.api.PatchAppointment(ctx, id, patch); err != nil {
		return fmt.Errorf("reassign appointment %d: %w", id, err)
	}
	b.invalidate(ctx, "reassign", id)
	return nil
}

func (b *board) Delete(ctx context.Context, id int, confirmed bool) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := b.api.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	b.invalidate(ctx, "delete", id)
	return nil
}

func (b *board) invalidate(ctx context.Context, action string, id int) {
	n := b.cache.Invalidate(ctx, query.Key{KeyAppointments})
	b.logger.InfoContext(ctx, "appointment updated",
		"action", action,
		"appointment_id", id,
		"invalidated", n,
		"request_id", reqctx.RequestIDFromContext(ctx),
	)
}
