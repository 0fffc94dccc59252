package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
)

// fakeAPI keeps appointments in memory and filters by status like the
// backend does.
type fakeAPI struct {
	mu      sync.Mutex
	appts   []resource.Appointment
	listErr error
	gate    chan struct{}

	lists   map[string]int
	patches []resource.AppointmentPatch
	deletes []int
}

func newFakeAPI(appts ...resource.Appointment) *fakeAPI {
	return &fakeAPI{appts: appts, lists: map[string]int{}}
}

func (f *fakeAPI) ListAppointments(ctx context.Context, filters resource.AppointmentFilters) ([]resource.Appointment, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists[FilterKey(filters).String()]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []resource.Appointment{}
	for _, a := range f.appts {
		if filters.Status != "" && string(a.Status) != filters.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAPI) PatchAppointment(ctx context.Context, id int, p resource.AppointmentPatch) (resource.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.patches = append(f.patches, p)
	for i := range f.appts {
		if f.appts[i].ID != id {
			continue
		}
		if p.Status != nil {
			f.appts[i].Status = *p.Status
		}
		if p.EmployeeID != nil {
			f.appts[i].Employee = &resource.EmployeeSummary{ID: *p.EmployeeID}
		}
		if p.ClearEmployee {
			f.appts[i].Employee = nil
		}
		return f.appts[i], nil
	}
	return resource.Appointment{}, resource.ErrNotFound
}

func (f *fakeAPI) DeleteAppointment(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, id)
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts = append(f.appts[:i], f.appts[i+1:]...)
			return nil
		}
	}
	return resource.ErrNotFound
}

func (f *fakeAPI) ListDashboardEmployees(ctx context.Context) ([]resource.Employee, error) {
	return []resource.Employee{{ID: 9, Name: "Sara"}}, nil
}

func (f *fakeAPI) listCalls(filters resource.AppointmentFilters) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[FilterKey(filters).String()]
}

func newTestBoard(api API) Board {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// A long stale window: only invalidation may trigger re-fetches.
	cache := query.NewClient(query.Options{StaleAfter: time.Hour}, logger)
	return NewBoard(api, cache, Options{SkeletonRows: 5, PhoneRegion: "MA"}, logger)
}

func appt(id int, status resource.Status) resource.Appointment {
	return resource.Appointment{
		ID:          id,
		ClientName:  "Client",
		ClientPhone: "0612345678",
		Service:     resource.ServiceSummary{ID: 4, Name: "Coupe"},
		StartAt:     "2026-03-15T10:00:00",
		Status:      status,
		Source:      "web",
	}
}

var pendingOnly = resource.AppointmentFilters{Status: "pending"}

func rowIDs(l Listing) []int {
	ids := make([]int, 0, len(l.Rows))
	for _, r := range l.Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestCancelledRowLeavesPendingView(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending), appt(2, resource.StatusPending))
	b := newTestBoard(api)
	ctx := context.Background()

	if l := b.List(ctx, pendingOnly); len(l.Rows) != 2 {
		t.Fatalf("rows = %v, want 2", rowIDs(l))
	}

	if err := b.SetStatus(ctx, 1, "cancelled"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	l := b.List(ctx, pendingOnly)
	if ids := rowIDs(l); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("rows after cancel = %v, want [2]", ids)
	}
	if api.listCalls(pendingOnly) != 2 {
		t.Errorf("list fetches = %d, want 2", api.listCalls(pendingOnly))
	}
	if len(api.patches) != 1 || *api.patches[0].Status != resource.StatusCancelled {
		t.Errorf("patches = %+v", api.patches)
	}
}

func TestDeclinedDeleteSendsNothing(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	b := newTestBoard(api)
	ctx := context.Background()

	b.List(ctx, resource.AppointmentFilters{})

	if err := b.Delete(ctx, 1, false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("err = %v, want ErrNotConfirmed", err)
	}
	if len(api.deletes) != 0 {
		t.Errorf("deletes = %v, want none", api.deletes)
	}
	if l := b.List(ctx, resource.AppointmentFilters{}); len(l.Rows) != 1 {
		t.Errorf("rows = %v, want the row still present", rowIDs(l))
	}
}

func TestConfirmedDeleteInvalidatesList(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	b := newTestBoard(api)
	ctx := context.Background()

	b.List(ctx, resource.AppointmentFilters{})
	if err := b.Delete(ctx, 1, true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	l := b.List(ctx, resource.AppointmentFilters{})
	if l.Display != DisplayEmpty {
		t.Errorf("display = %v, want empty", l.Display)
	}
}

func TestEmptyListShowsNoResults(t *testing.T) {
	b := newTestBoard(newFakeAPI())

	l := b.List(context.Background(), resource.AppointmentFilters{})
	if l.Display != DisplayEmpty {
		t.Errorf("display = %v, want empty", l.Display)
	}
	if len(l.Skeleton) != 0 || l.Err != nil {
		t.Errorf("skeleton = %d, err = %v; want neither", len(l.Skeleton), l.Err)
	}
}

func TestFailedListShowsError(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("backend down")
	b := newTestBoard(api)

	l := b.List(context.Background(), resource.AppointmentFilters{})
	if l.Display != DisplayFailed || l.Err == nil {
		t.Errorf("display = %v, err = %v", l.Display, l.Err)
	}
	if len(l.Rows) != 0 || len(l.Skeleton) != 0 {
		t.Error("failed state also shows rows or skeleton")
	}
}

func TestSlowListShowsSkeleton(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	api.gate = make(chan struct{})
	t.Cleanup(func() { close(api.gate) })
	b := newTestBoard(api)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	l := b.List(ctx, resource.AppointmentFilters{})
	if l.Display != DisplayLoading {
		t.Fatalf("display = %v, want loading", l.Display)
	}
	if len(l.Skeleton) != 5 {
		t.Errorf("skeleton rows = %d, want 5", len(l.Skeleton))
	}
}

func TestFilterSetsAreCachedIndependently(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending), appt(2, resource.StatusConfirmed))
	b := newTestBoard(api)
	ctx := context.Background()
	all := resource.AppointmentFilters{}

	b.List(ctx, pendingOnly)
	b.List(ctx, all)
	b.List(ctx, pendingOnly)

	if api.listCalls(pendingOnly) != 1 || api.listCalls(all) != 1 {
		t.Errorf("fetches pending=%d all=%d, want 1/1", api.listCalls(pendingOnly), api.listCalls(all))
	}

	// A mutation invalidates every filter set.
	if err := b.SetStatus(ctx, 2, "pending"); err != nil {
		t.Fatal(err)
	}
	if l := b.List(ctx, pendingOnly); len(l.Rows) != 2 {
		t.Errorf("pending rows = %v, want 2", rowIDs(l))
	}
	if l := b.List(ctx, all); len(l.Rows) != 2 {
		t.Errorf("all rows = %v", rowIDs(l))
	}
	if api.listCalls(all) != 2 {
		t.Errorf("all fetches = %d, want 2", api.listCalls(all))
	}
}

func TestStatusRoundTrip(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	b := newTestBoard(api)
	ctx := context.Background()

	if err := b.SetStatus(ctx, 1, "confirmed"); err != nil {
		t.Fatal(err)
	}
	l := b.List(ctx, resource.AppointmentFilters{})
	if l.Rows[0].Status != resource.StatusConfirmed || l.Rows[0].StatusLabel != "Confirmé" {
		t.Errorf("row = %+v", l.Rows[0])
	}

	if err := b.SetStatus(ctx, 1, "pending"); err != nil {
		t.Fatal(err)
	}
	l = b.List(ctx, resource.AppointmentFilters{})
	if l.Rows[0].Status != resource.StatusPending || l.Rows[0].StatusClass != "bg-yellow-100 text-yellow-800" {
		t.Errorf("row = %+v", l.Rows[0])
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	b := newTestBoard(api)

	if err := b.SetStatus(context.Background(), 1, "done"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v", err)
	}
	if len(api.patches) != 0 {
		t.Error("patch sent for an invalid status")
	}
}

func TestReassign(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	b := newTestBoard(api)
	ctx := context.Background()

	if err := b.Reassign(ctx, 1, "9"); err != nil {
		t.Fatal(err)
	}
	if l := b.List(ctx, resource.AppointmentFilters{}); l.Rows[0].EmployeeID != 9 {
		t.Errorf("employee = %d, want 9", l.Rows[0].EmployeeID)
	}

	if err := b.Reassign(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}
	if !api.patches[1].ClearEmployee {
		t.Error("empty employee should clear the assignment")
	}

	if err := b.Reassign(ctx, 1, "x"); !errors.Is(err, ErrUnknownEmployee) {
		t.Errorf("err = %v", err)
	}
}

func TestListCarriesEmployees(t *testing.T) {
	l := newTestBoard(newFakeAPI()).List(context.Background(), resource.AppointmentFilters{})
	if len(l.Employees) != 1 || l.Employees[0].Name != "Sara" {
		t.Errorf("employees = %+v", l.Employees)
	}
}

func TestFilterKey(t *testing.T) {
	a := FilterKey(resource.AppointmentFilters{Status: "pending"})
	b := FilterKey(resource.AppointmentFilters{Status: " pending "})
	c := FilterKey(resource.AppointmentFilters{})

	if a.String() != b.String() {
		t.Error("whitespace changed the key")
	}
	if a.String() == c.String() {
		t.Error("different filters share a key")
	}
	if !a.HasPrefix(query.Key{KeyAppointments}) {
		t.Error("list key outside the appointments prefix")
	}
}

func TestServiceSeparatesOperators(t *testing.T) {
	api := newFakeAPI(appt(1, resource.StatusPending))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(api, query.NewRegistry(query.Options{StaleAfter: time.Hour}, 0, logger), Options{}, logger)
	ctx := context.Background()
	all := resource.AppointmentFilters{}

	svc.For(reqctx.Operator{Token: "alice"}).List(ctx, all)
	svc.For(reqctx.Operator{Token: "alice"}).List(ctx, all)
	svc.For(reqctx.Operator{Token: "bob"}).List(ctx, all)

	if api.listCalls(all) != 2 {
		t.Errorf("fetches = %d, want one per operator", api.listCalls(all))
	}
}

func TestFormatPhone(t *testing.T) {
	if got := formatPhone("not a number", "MA"); got != "not a number" {
		t.Errorf("got %q", got)
	}
	if got := formatPhone("", "MA"); got != "" {
		t.Errorf("got %q", got)
	}
	if got := formatPhone("+212612345678", "MA"); !strings.HasPrefix(got, "0") {
		t.Errorf("national format = %q, want leading 0", got)
	}
	if got := formatPhone("+33612345678", "MA"); !strings.HasPrefix(got, "+33") {
		t.Errorf("foreign number = %q, want international format", got)
	}
}

func TestRowDate(t *testing.T) {
	r := toRow(appt(1, resource.StatusPending), "")
	if r.Date != "15/03/2026 10:00" {
		t.Errorf("date = %q", r.Date)
	}
}
