// Package view renders the storefront's HTML pages from embedded templates.
package view

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v3"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Layout wraps every page; pages are inserted with {{embed}}.
const Layout = "layout"

// New returns the html engine over the embedded templates. Page names are
// file names without the extension.
func New() (*html.Engine, error) {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("price", func(d decimal.Decimal) string { return d.StringFixed(2) })
	return engine, nil
}
