package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
	"github.com/Alijeyrad/salon_storefront/internal/violation"
)

type fakeCreator struct {
	mu       sync.Mutex
	payloads []resource.AppointmentPayload
	err      error
	gate     chan struct{}
	entered  chan struct{}
}

func (f *fakeCreator) CreateAppointment(ctx context.Context, p resource.AppointmentPayload) (resource.Appointment, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	err := f.err
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if err != nil {
		return resource.Appointment{}, err
	}
	return resource.Appointment{ID: 101, Status: resource.StatusPending, StartAt: p.StartAt}, nil
}

func (f *fakeCreator) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func newTestService(api Creator) *bookingService {
	svc := New(api, Options{SessionTTL: time.Minute, MaxNotesLength: 20}, slog.New(slog.NewTextHandler(io.Discard, nil))).(*bookingService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

// prestige is the "salon-prestige" page: one service, no employees.
func prestige() catalog.SalonView {
	return catalog.SalonView{
		Salon: query.Snapshot[resource.Salon]{
			Status: query.StatusSuccess,
			Value:  resource.Salon{ID: 1, Slug: "salon-prestige", Name: "Salon Prestige"},
		},
		Services: query.Snapshot[[]resource.Service]{
			Status: query.StatusSuccess,
			Value:  []resource.Service{{ID: 4, Name: "Coupe", Duration: 30, Price: decimal.NewFromInt(80)}},
		},
		Employees: query.Snapshot[[]resource.Employee]{
			Status: query.StatusSuccess,
			Value:  []resource.Employee{},
		},
	}
}

func validForm() Form {
	return Form{
		ClientName:  "Nadia",
		ClientPhone: "+212 600 000",
		Service:     "4",
		Date:        "2026-03-15",
		Time:        "10:00",
	}
}

func TestSubmitSuccessWithAnyEmployee(t *testing.T) {
	api := &fakeCreator{}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	appt, err := svc.Submit(context.Background(), flow, validForm(), prestige())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if appt.ID != 101 {
		t.Errorf("appointment id = %d", appt.ID)
	}

	if len(api.payloads) != 1 {
		t.Fatalf("requests = %d, want 1", len(api.payloads))
	}
	p := api.payloads[0]
	if p.Employee != "" {
		t.Errorf("employee = %q, want omitted", p.Employee)
	}
	if p.Salon != "/api/salons/salon-prestige" || p.Service != "/api/services/4" {
		t.Errorf("refs = %q %q", p.Salon, p.Service)
	}
	if p.StartAt != "2026-03-15T10:00:00" {
		t.Errorf("startAt = %q", p.StartAt)
	}
	if p.Source != resource.SourceWeb {
		t.Errorf("source = %q", p.Source)
	}

	v := flow.View()
	if v.State != StateSucceeded || !v.SubmitDisabled() {
		t.Errorf("state = %v, disabled = %v", v.State, v.SubmitDisabled())
	}

	if _, err := svc.Submit(context.Background(), flow, validForm(), prestige()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("resubmit err = %v, want ErrAlreadySubmitted", err)
	}
	if api.requests() != 1 {
		t.Error("resubmission reached the backend")
	}
}

func TestServerViolationLandsOnDateField(t *testing.T) {
	api := &fakeCreator{err: &resource.ValidationError{Violations: []violation.Violation{
		{PropertyPath: "startAt", Message: "must be in the future"},
	}}}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	_, err := svc.Submit(context.Background(), flow, validForm(), prestige())
	if !errors.Is(err, ErrRejected) || !errors.Is(err, resource.ErrValidation) {
		t.Fatalf("err = %v", err)
	}

	v := flow.View()
	if v.State != StateEditing {
		t.Errorf("state = %v, want editing", v.State)
	}
	if got := v.Errors[FieldDate]; got != "must be in the future" {
		t.Errorf("date error = %q", got)
	}
	if _, ok := v.Errors[FieldService]; ok {
		t.Error("service field shows an error")
	}
	if _, ok := v.Errors[FieldEmployee]; ok {
		t.Error("employee field shows an error")
	}
	if v.General != "" {
		t.Errorf("general = %q, want none", v.General)
	}
	if v.SubmitDisabled() {
		t.Error("submit disabled after a failure")
	}
}

func TestNetworkFailureShowsGenericMessage(t *testing.T) {
	api := &fakeCreator{err: fmt.Errorf("wrapped: %w", errors.New("connection refused"))}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	if _, err := svc.Submit(context.Background(), flow, validForm(), prestige()); err == nil {
		t.Fatal("expected an error")
	}

	v := flow.View()
	if v.General != MsgGenericFailure {
		t.Errorf("general = %q", v.General)
	}
	if len(v.Errors) != 0 {
		t.Errorf("field errors = %v, want none", v.Errors)
	}
}

func TestClientValidationBlocksSubmit(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Form)
		field string
		msg   string
	}{
		{"missing name", func(f *Form) { f.ClientName = " " }, FieldClientName, MsgRequired},
		{"missing phone", func(f *Form) { f.ClientPhone = "" }, FieldClientPhone, MsgRequired},
		{"short phone", func(f *Form) { f.ClientPhone = "12345" }, FieldClientPhone, MsgInvalidPhone},
		{"letters in phone", func(f *Form) { f.ClientPhone = "06abc12345" }, FieldClientPhone, MsgInvalidPhone},
		{"bad email", func(f *Form) { f.ClientEmail = "nadia@" }, FieldClientEmail, MsgInvalidEmail},
		{"missing service", func(f *Form) { f.Service = "" }, FieldService, MsgRequired},
		{"service not offered", func(f *Form) { f.Service = "99" }, FieldService, MsgUnknownOption},
		{"employee not listed", func(f *Form) { f.Employee = "3" }, FieldEmployee, MsgUnknownOption},
		{"missing date", func(f *Form) { f.Date = "" }, FieldDate, MsgRequired},
		{"malformed date", func(f *Form) { f.Date = "15/03/2026" }, FieldDate, MsgInvalidDate},
		{"past date", func(f *Form) { f.Date = "2026-02-01" }, FieldDate, MsgPastDate},
		{"missing time", func(f *Form) { f.Time = "" }, FieldTime, MsgRequired},
		{"malformed time", func(f *Form) { f.Time = "25:99" }, FieldTime, MsgInvalidTime},
		{"long notes", func(f *Form) { f.Notes = "abcdefghijklmnopqrstuvwxyz" }, FieldNotes, MsgNotesTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeCreator{}
			svc := newTestService(api)
			flow := svc.Start("salon-prestige")

			form := validForm()
			tt.edit(&form)

			_, err := svc.Submit(context.Background(), flow, form, prestige())
			if !errors.Is(err, ErrInvalidForm) {
				t.Fatalf("err = %v, want ErrInvalidForm", err)
			}
			if api.requests() != 0 {
				t.Error("invalid form reached the backend")
			}
			v := flow.View()
			if got := v.Errors[tt.field]; got != tt.msg {
				t.Errorf("%s error = %q, want %q", tt.field, got, tt.msg)
			}
			if v.State != StateEditing {
				t.Errorf("state = %v, want editing", v.State)
			}
		})
	}
}

func TestEmptyServiceListRejectsAnyChoice(t *testing.T) {
	api := &fakeCreator{}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	view := prestige()
	view.Services.Value = nil

	if _, err := svc.Submit(context.Background(), flow, validForm(), view); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("err = %v", err)
	}
	if api.requests() != 0 {
		t.Error("request sent with no service available")
	}
}

func TestErrorsClearedAtStartOfEachAttempt(t *testing.T) {
	api := &fakeCreator{err: &resource.ValidationError{Violations: []violation.Violation{
		{PropertyPath: "clientPhone", Message: "already used"},
	}}}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	svc.Submit(context.Background(), flow, validForm(), prestige())
	if flow.View().Errors[FieldClientPhone] != "already used" {
		t.Fatalf("errors = %v", flow.View().Errors)
	}

	// Second attempt fails client-side on another field: the server message
	// from the first attempt must be gone.
	form := validForm()
	form.ClientName = ""
	svc.Submit(context.Background(), flow, form, prestige())

	v := flow.View()
	if _, ok := v.Errors[FieldClientPhone]; ok {
		t.Error("stale server error survived a new attempt")
	}
	if v.Errors[FieldClientName] != MsgRequired {
		t.Errorf("errors = %v", v.Errors)
	}
}

func TestServerErrorOverridesClientErrorForSameField(t *testing.T) {
	f := &Flow{
		clientErrs: map[string]string{FieldClientPhone: MsgInvalidPhone, FieldClientName: MsgRequired},
		serverErrs: map[string]string{FieldClientPhone: "already used"},
	}
	v := f.View()
	if v.Errors[FieldClientPhone] != "already used" {
		t.Errorf("phone = %q, want server message", v.Errors[FieldClientPhone])
	}
	if v.Errors[FieldClientName] != MsgRequired {
		t.Errorf("name = %q, want client message", v.Errors[FieldClientName])
	}
}

func TestSecondSubmitWhileInFlightIsRefused(t *testing.T) {
	api := &fakeCreator{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), flow, validForm(), prestige())
		done <- err
	}()
	<-api.entered

	if v := flow.View(); v.State != StateSubmitting || !v.SubmitDisabled() {
		t.Errorf("state = %v, want submitting and disabled", v.State)
	}
	if _, err := svc.Submit(context.Background(), flow, validForm(), prestige()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("err = %v, want ErrSubmitInFlight", err)
	}

	close(api.gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if api.requests() != 1 {
		t.Errorf("requests = %d, want 1", api.requests())
	}
}

func TestLookupAndSweep(t *testing.T) {
	svc := newTestService(&fakeCreator{})
	flow := svc.Start("salon-prestige")

	got, err := svc.Lookup(flow.Token)
	if err != nil || got != flow {
		t.Fatalf("Lookup = %v, %v", got, err)
	}
	if _, err := svc.Lookup("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}

	if n := svc.Sweep(svc.now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, err := svc.Lookup(flow.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Error("flow survived sweep")
	}
}

func TestHoldKeepsInputWithoutSending(t *testing.T) {
	api := &fakeCreator{}
	svc := newTestService(api)
	flow := svc.Start("salon-prestige")

	form := validForm()
	form.ClientName = "  Nadia  "
	svc.Hold(flow, form)

	v := flow.View()
	if v.Form.ClientName != "Nadia" {
		t.Errorf("client name = %q", v.Form.ClientName)
	}
	if v.State != StateEditing || len(v.Errors) != 0 {
		t.Errorf("state = %v, errors = %v", v.State, v.Errors)
	}
	if api.requests() != 0 {
		t.Error("held input reached the backend")
	}

	if _, err := svc.Submit(context.Background(), flow, validForm(), prestige()); err != nil {
		t.Fatalf("submit after hold: %v", err)
	}
	svc.Hold(flow, Form{ClientName: "Other"})
	if got := flow.View().Form.ClientName; got == "Other" {
		t.Error("hold overwrote a submitted flow")
	}
}
