package handler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Page is the layout data every view shares.
type Page struct {
	Title     string
	Dashboard bool
	// Refresh, when set, makes the browser reload that URL after
	// RefreshSeconds. Pages that rendered a loading state use it to pick up
	// the fetch that is still running.
	Refresh        string
	RefreshSeconds int
	// CSRF is the token dashboard forms post back.
	CSRF string
}

type errorPage struct {
	Page    Page
	Message string
}

const refreshSeconds = 2

func render(c fiber.Ctx, status int, name string, data any) error {
	return c.Status(status).Render(name, data)
}

func renderError(c fiber.Ctx, status int, msg string) error {
	return render(c, status, "error", errorPage{Page: Page{Title: "Erreur"}, Message: msg})
}

// RenderError writes the error page. The app's error handler uses it too.
func RenderError(c fiber.Ctx, status int, msg string) error {
	return renderError(c, status, msg)
}

func seeOther(c fiber.Ctx, to string) error {
	return c.Redirect().Status(fiber.StatusSeeOther).To(to)
}

// budgeted bounds how long a page waits on its queries.
func budgeted(c fiber.Ctx, budget time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), budget)
}

// selfURL is the current path and query, used as the refresh target.
func selfURL(c fiber.Ctx) string {
	u := c.Path()
	if q := string(c.Request().URI().QueryString()); q != "" {
		u += "?" + q
	}
	return u
}

// localReturn accepts only same-site paths under prefix, so a posted
// return_to cannot redirect off the storefront.
func localReturn(raw, prefix string) string {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, prefix) {
		return prefix
	}
	return u.RequestURI()
}
