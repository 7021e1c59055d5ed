// Package web renders the server-side pages.  Templates are embedded in the
// binary; each page is parsed together with the shared layout.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mabarin/mabarin-web/internal/model"
	"github.com/mabarin/mabarin-web/internal/session"
)

//go:embed templates/*.html
var files embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title   string
	Path    string
	Session session.Session
	Flash   *session.Flash
	Data    any
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page with the layout.  A page named
// templates/explore.html is rendered as "explore".
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(path.Base(name)).Funcs(Funcs()).ParseFS(files, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render executes the layout of page name.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("web: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var md = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// Markdown converts an activity description to HTML.  Raw HTML in the
// source is not passed through.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"idr":      model.FormatIDR,
		"clock":    model.FormatClock,
		"markdown": Markdown,
		"day":      formatDay,
		"initial":  initial,
		"eq64":     func(a, b int64) bool { return a == b },
	}
}

var months = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// formatDay turns "2026-06-03" or a timestamp into "3 Jun 2026".  Anything
// else is shown as is.
func formatDay(s string) string {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return s
	}
	var y, m, d int
	if _, err := fmt.Sscanf(s[:10], "%4d-%2d-%2d", &y, &m, &d); err != nil || m < 1 || m > 12 {
		return s
	}
	return fmt.Sprintf("%d %s %d", d, months[m-1], y)
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}
