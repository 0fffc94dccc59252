package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
	"github.com/Alijeyrad/salon_storefront/internal/violation"
	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Creator is the one backend write the booking page makes.
type Creator interface {
	CreateAppointment(ctx context.Context, p resource.AppointmentPayload) (resource.Appointment, error)
}

type Options struct {
	SessionTTL     time.Duration
	MaxNotesLength int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Start opens a new flow for a salon page.
	Start(slug string) *Flow
	// Lookup returns the flow for a token issued by Start.
	Lookup(token string) (*Flow, error)
	// Submit runs one attempt: client validation, then the backend write.
	// view must be the salon's resolved page state.
	Submit(ctx context.Context, f *Flow, form Form, view catalog.SalonView) (resource.Appointment, error)
	// Hold stores input on the flow without validating or sending it, for
	// a post that arrived before the salon's page data was loaded.
	Hold(f *Flow, form Form)
	// Sweep drops flows idle for longer than the session TTL.
	Sweep(now time.Time) int
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type bookingService struct {
	api    Creator
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	flows map[string]*Flow
}

func New(api Creator, opts Options, logger *slog.Logger) Service {
	return &bookingService{
		api:    api,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		flows:  map[string]*Flow{},
	}
}

func (s *bookingService) Start(slug string) *Flow {
	f := &Flow{Token: uuid.NewString(), Slug: slug, touched: s.now()}

	s.mu.Lock()
	s.flows[f.Token] = f
	s.mu.Unlock()
	return f
}

func (s *bookingService) Lookup(token string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flows[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return f, nil
}

func (s *bookingService) Submit(ctx context.Context, f *Flow, form Form, view catalog.SalonView) (resource.Appointment, error) {
	now := s.now()
	form = form.trimmed()

	y, m, d := now.Date()
	r := rules{today: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), maxNotes: s.opts.MaxNotesLength}
	validate := func(form Form) map[string]string { return r.validate(form, view) }

	if err := f.begin(form, now, validate); err != nil {
		return resource.Appointment{}, err
	}

	// A visitor who disconnects mid-submit must not leave the flow stuck in
	// submitting; the transport timeout still bounds the call.
	appt, err := s.api.CreateAppointment(context.WithoutCancel(ctx), payload(f.Slug, form))
	if err != nil {
		fields, general := s.placeViolations(err)
		f.fail(fields, general, s.now())

		s.logger.WarnContext(ctx, "booking rejected",
			"salon", f.Slug,
			"fields", len(fields),
			"request_id", reqctx.RequestIDFromContext(ctx),
			"err", err,
		)
		return resource.Appointment{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	f.succeed(appt, s.now())
	s.logger.InfoContext(ctx, "booking created",
		"salon", f.Slug,
		"appointment_id", appt.ID,
		"request_id", reqctx.RequestIDFromContext(ctx),
	)
	return appt, nil
}

// placeViolations maps backend violations onto form fields. If none of them
// lands on a field the visitor can see, the generic message is used.
func (s *bookingService) Hold(f *Flow, form Form) {
	f.hold(form.trimmed(), s.now())
}

func (s *bookingService) placeViolations(err error) (map[string]string, string) {
	fields := map[string]string{}
	for path, msg := range violation.Extract(err) {
		if field, ok := formField(path); ok {
			fields[field] = msg
		}
	}
	if len(fields) == 0 {
		return nil, MsgGenericFailure
	}
	return fields, ""
}

func (s *bookingService) Sweep(now time.Time) int {
	ttl := s.opts.SessionTTL
	if ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, f := range s.flows {
		if f.idleSince(now) > ttl {
			delete(s.flows, token)
			n++
		}
	}
	return n
}
