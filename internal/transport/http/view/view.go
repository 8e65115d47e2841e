// Package view renders the server-side HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/render"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/pkg/paginate"
)

//go:embed templates
var files embed.FS

// Page is the data every template receives.
type Page struct {
	Title       string
	CurrentUser *domain.User
	Flash       flash.Message
	Errors      map[string]string
	CSRFToken   string
	Data        any
}

func (p Page) Error(field string) string { return p.Errors[field] }

// Pager is the navigation state of a paginated listing.
type Pager struct {
	Path       string
	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
}

func NewPager[T any](path string, p paginate.Page[T]) Pager {
	return Pager{
		Path:       path,
		Page:       p.Page,
		TotalPages: p.TotalPages(),
		Total:      p.Total,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		Prev:       p.PrevPage(),
		Next:       p.NextPage(),
	}
}

func (p Pager) URL(page int) string {
	return p.Path + "?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
}

var funcs = template.FuncMap{
	"pluralize": func(n int64, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	},
	"price": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"isAdmin": func(u *domain.User) bool {
		return u.IsAdmin()
	},
	"selected": func(a, b any) template.HTMLAttr {
		if fmt.Sprint(a) == fmt.Sprint(b) {
			return "selected"
		}
		return ""
	},
}

// Renderer implements gin's render.HTMLRender with one template set per
// page, each sharing the layout and partials.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func New() (*Renderer, error) {
	shared := []string{"templates/layout.html", "templates/partials.html"}
	r := &Renderer{pages: map[string]*template.Template{}}
	err := fs.WalkDir(files, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		for _, s := range shared {
			if path == s {
				return nil
			}
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files, append(shared, path)...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages["error"]
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}
