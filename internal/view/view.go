package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/EVCatalog/internal/domain"
)

// Page names.
const (
	Main         = "main"
	QueryResults = "query_results"
	AddEV        = "add_ev"
	EVInfo       = "ev_info"
	EditEV       = "edit_ev"
	CompareEVs   = "compare_evs"
	Login        = "login"
	NotFound     = "not_found"
	Error        = "error"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer writes a named page with the given status.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data map[string]any) error
}

// TemplateRenderer renders pages from the embedded html/template set. Every
// page is parsed together with layout.html and executed through "layout".
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// New parses every page template. It fails if any template is malformed.
func New() (*TemplateRenderer, error) {
	return newFromFS(templateFS)
}

func newFromFS(fsys fs.FS) (*TemplateRenderer, error) {
	layout, err := template.New("layout.html").
		Funcs(funcs).
		Option("missingkey=zero").
		ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, path := range names {
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		if name == "layout" {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		page, err := clone.ParseFS(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = page
	}
	return &TemplateRenderer{pages: pages}, nil
}

// Render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data map[string]any) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2 Jan 2006 15:04")
	},
	"stars": func(rating int) string {
		if rating < domain.MinRating || rating > domain.MaxRating {
			return ""
		}
		return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
	},
	"verdict": func(v domain.Verdict, first, second string) string {
		switch v {
		case domain.VerdictFirst:
			return first
		case domain.VerdictSecond:
			return second
		case domain.VerdictEqual:
			return "Equal"
		default:
			return "Not enough reviews"
		}
	},
	"ratings": func() []int {
		out := make([]int, 0, domain.MaxRating)
		for i := domain.MaxRating; i >= domain.MinRating; i-- {
			out = append(out, i)
		}
		return out
	},
}
