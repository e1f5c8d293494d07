package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"daily-report/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// Renderer turns a view and its request-scope data into a response body.
type Renderer interface {
	Render(w io.Writer, view View, data map[string]any) error
}

// TemplateRenderer renders the embedded html/template pages inside a shared layout.
type TemplateRenderer struct {
	views map[View]*template.Template
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(domain.DateLayout)
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"lines": func(s string) []string {
		return strings.Split(s, "\n")
	},
}

// NewTemplateRenderer parses every view at startup so broken templates fail fast.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tr := &TemplateRenderer{views: make(map[View]*template.Template, len(allViews))}
	for _, view := range allViews {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+string(view)+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", view, err)
		}
		tr.views[view] = tmpl
	}
	return tr, nil
}

// Render executes the view's template
func (tr *TemplateRenderer) Render(w io.Writer, view View, data map[string]any) error {
	tmpl, ok := tr.views[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
