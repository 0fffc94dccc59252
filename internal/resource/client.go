// Package resource maps storefront intents to backend requests. It holds no
// business rules and never retries.
package resource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

type Client struct {
	t transport.Requester
}

func New(t transport.Requester) *Client {
	return &Client{t: t}
}

func (c *Client) do(ctx context.Context, req transport.Request, out any) error {
	return classify(c.t.Do(ctx, req, out))
}

func mergePatch(path string, body any) transport.Request {
	return transport.Request{
		Method:  http.MethodPatch,
		Path:    path,
		Body:    body,
		Headers: map[string]string{"Content-Type": transport.ContentTypeMergePatch},
	}
}

// ListPublishedSalons returns the public listing.
func (c *Client) ListPublishedSalons(ctx context.Context) ([]Salon, error) {
	var out []Salon
	err := c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/api/salons",
		Query:  url.Values{"isPublished": {"true"}},
	}, &out)
	return out, err
}

func (c *Client) GetSalon(ctx context.Context, slug string) (Salon, error) {
	var out Salon
	err := c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/api/salons/" + url.PathEscape(slug),
	}, &out)
	return out, err
}

func (c *Client) ListSalonServices(ctx context.Context, salonID int) ([]Service, error) {
	var out []Service
	err := c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/api/services",
		Query:  url.Values{"salon": {strconv.Itoa(salonID)}},
	}, &out)
	return out, err
}

func (c *Client) ListSalonEmployees(ctx context.Context, salonID int) ([]Employee, error) {
	var out []Employee
	err := c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/api/employees",
		Query:  url.Values{"salon": {strconv.Itoa(salonID)}},
	}, &out)
	return out, err
}

// ListDashboardEmployees lists the operator's employees, for reassignment.
func (c *Client) ListDashboardEmployees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := c.do(ctx, transport.Request{Method: http.MethodGet, Path: "/api/dashboard/employees"}, &out)
	return out, err
}
