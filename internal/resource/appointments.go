package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

// Listing filter query parameters.
const (
	ParamStatus      = "status"
	ParamStartAfter  = "startAt[after]"
	ParamStartBefore = "startAt[before]"
)

// AppointmentPatch is a merge-patch body. Nil fields are omitted so the
// backend leaves them untouched; ClearEmployee sends an explicit null.
type AppointmentPatch struct {
	Status        *Status
	EmployeeID    *int
	ClearEmployee bool
}

func (p AppointmentPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	switch {
	case p.ClearEmployee:
		m["employee"] = nil
	case p.EmployeeID != nil:
		m["employee"] = EmployeeRef(*p.EmployeeID)
	}
	return json.Marshal(m)
}

// Query encodes only the filters that are set; values pass through as typed.
func (f AppointmentFilters) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set(ParamStatus, f.Status)
	}
	if f.StartAfter != "" {
		q.Set(ParamStartAfter, f.StartAfter)
	}
	if f.StartBefore != "" {
		q.Set(ParamStartBefore, f.StartBefore)
	}
	return q
}

func (c *Client) CreateAppointment(ctx context.Context, p AppointmentPayload) (Appointment, error) {
	var out Appointment
	err := c.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/api/appointments",
		Body:   p,
	}, &out)
	return out, err
}

func (c *Client) ListAppointments(ctx context.Context, f AppointmentFilters) ([]Appointment, error) {
	var out []Appointment
	err := c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/api/dashboard/appointments",
		Query:  f.Query(),
	}, &out)
	return out, err
}

func (c *Client) PatchAppointment(ctx context.Context, id int, p AppointmentPatch) (Appointment, error) {
	var out Appointment
	err := c.do(ctx, mergePatch("/api/dashboard/appointments/"+strconv.Itoa(id), p), &out)
	return out, err
}

func (c *Client) DeleteAppointment(ctx context.Context, id int) error {
	return c.do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   "/api/dashboard/appointments/" + strconv.Itoa(id),
	}, nil)
}
