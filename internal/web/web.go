// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/session"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	"alertClass": AlertClass,
}

// AlertClass maps a flash level to its Bootstrap alert class.
func AlertClass(level string) string {
	switch level {
	case session.LevelSuccess:
		return "alert-success"
	case session.LevelWarning:
		return "alert-warning"
	case session.LevelError:
		return "alert-danger"
	default:
		return "alert-info"
	}
}

// Templates parses every page and partial. Pages are addressed by their
// defined name, e.g. "cart/details.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static is the asset tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
