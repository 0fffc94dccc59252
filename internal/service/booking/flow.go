package booking

import (
	"sync"
	"time"

	"github.com/Alijeyrad/salon_storefront/internal/resource"
)

// State of one booking attempt sequence. A failed attempt goes back to
// editing and leaves its messages in the error set.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	default:
		return "editing"
	}
}

// Flow is one visitor's booking form for one salon. It is shared by every
// request that carries its token, so all state changes go through mu.
type Flow struct {
	Token string
	Slug  string

	mu         sync.Mutex
	state      State
	form       Form
	clientErrs map[string]string
	serverErrs map[string]string
	general    string
	created    resource.Appointment
	touched    time.Time
}

// View is a consistent copy of a flow for rendering.
type View struct {
	Token   string
	Slug    string
	State   State
	Form    Form
	Errors  map[string]string
	General string
	Created resource.Appointment
}

// SubmitDisabled reports whether the submit control must be inert.
func (v View) SubmitDisabled() bool {
	return v.State == StateSubmitting || v.State == StateSucceeded
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	return View{
		Token:   f.Token,
		Slug:    f.Slug,
		State:   f.state,
		Form:    f.form,
		Errors:  f.errorsLocked(),
		General: f.general,
		Created: f.created,
	}
}

// errorsLocked lays server messages over client messages field by field.
func (f *Flow) errorsLocked() map[string]string {
	out := make(map[string]string, len(f.clientErrs)+len(f.serverErrs))
	for k, v := range f.clientErrs {
		out[k] = v
	}
	for k, v := range f.serverErrs {
		out[k] = v
	}
	return out
}

// begin starts an attempt. It clears every error from the previous one,
// runs client validation and, only if that passes, moves to submitting.
// The whole check happens under one lock so two concurrent posts of the
// same form cannot both reach the backend.
func (f *Flow) begin(form Form, now time.Time, validate func(Form) map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSucceeded:
		return ErrAlreadySubmitted
	}

	f.form = form
	f.clientErrs = nil
	f.serverErrs = nil
	f.general = ""
	f.touched = now

	if errs := validate(form); len(errs) > 0 {
		f.clientErrs = errs
		f.state = StateEditing
		return ErrInvalidForm
	}
	f.state = StateSubmitting
	return nil
}

func (f *Flow) succeed(a resource.Appointment, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = a
	f.state = StateSucceeded
	f.touched = now
}

func (f *Flow) fail(fields map[string]string, general string, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serverErrs = fields
	f.general = general
	f.state = StateEditing
	f.touched = now
}

// hold keeps input that could not be checked yet. A flow that is
// submitting or done keeps what it has.
func (f *Flow) hold(form Form, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing {
		return
	}
	f.form = form
	f.touched = now
}

func (f *Flow) idleSince(now time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return 0
	}
	return now.Sub(f.touched)
}
