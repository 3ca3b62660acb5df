package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"

	"github.com/sakif/bloom/internal/model"
)

// Pages rendered by the handlers. Each is parsed together with base.html
// and the shared partials.
const (
	PageHome     = "home.html"
	PageCategory = "category.html"
	PageProfile  = "profile.html"
	PagePost     = "post.html"
	PageNotFound = "notfound.html"
)

var pages = []string{PageHome, PageCategory, PageProfile, PagePost, PageNotFound}

// Layout is the data every page receives: the session user for the header
// and the category navigation.
type Layout struct {
	Title       string
	CurrentUser *model.User // nil when signed out
	Categories  []model.Category
	Active      string // slug of the highlighted nav entry
	Uploads     bool   // image upload enabled
	Content     any
}

// Renderer holds the parsed templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// Funcs are the helpers the templates call.
var Funcs = template.FuncMap{
	"formatDate": FormatDate,
	"initials":   Initials,
	"slug":       func(c model.Category) string { return c.Slug() },
	"commentCount": func(p model.Post) int {
		return len(p.Comments)
	},
}

// NewRenderer parses templates/base.html, templates/partials/*.html and one
// template per page from fsys.
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}
	for _, page := range pages {
		tmpl, err := template.New("base.html").Funcs(Funcs).ParseFS(fsys,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("view: parsing %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page wrapped in the base layout. The page is rendered into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data Layout) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}
	if data.Categories == nil {
		data.Categories = model.BrowseCategories
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		r.logger.Error("template execution failed", slog.String("page", page), slog.String("error", err.Error()))
		return fmt.Errorf("view: rendering %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
