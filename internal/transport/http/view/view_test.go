package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/pkg/paginate"
)

func renderPage(t *testing.T, r *Renderer, name string, p Page) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, p).Render(w))
	return w.Body.String()
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, name := range []string{
		"home", "error", "login",
		"sellers/index", "sellers/show", "sellers/edit", "sellers/products", "sellers/categories",
		"categories/index", "categories/show", "categories/form",
		"products/index",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("layout"))
	assert.False(t, r.Has("partials"))
}

func TestRenderer_LayoutAndFlash(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	body := renderPage(t, r, "home", Page{Flash: flash.NewNotice("Signed in successfully.")})
	assert.Contains(t, body, "<h1>Sunday Market!</h1>")
	assert.Contains(t, body, `class="flash flash-notice"`)
	assert.Contains(t, body, "Signed in successfully.")
	assert.Contains(t, body, `id="nav_login"`)

	u := &domain.User{FirstName: "Jane", LastName: "Doe", Slug: "jane-doe"}
	body = renderPage(t, r, "home", Page{CurrentUser: u, CSRFToken: "tok123"})
	assert.Contains(t, body, `href="/sellers/jane-doe"`)
	assert.Contains(t, body, `<meta name="csrf-token" content="tok123">`)
	assert.Contains(t, body, `<input type="hidden" name="authenticity_token" value="tok123">`)
	assert.NotContains(t, body, "flash-")
}

func TestRenderer_UnknownPageFallsBackToError(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	body := renderPage(t, r, "nope", Page{Title: "Not Found", Data: "missing"})
	assert.Contains(t, body, "<h1>Not Found</h1>")
}

func TestFuncs(t *testing.T) {
	pluralize := funcs["pluralize"].(func(int64, string) string)
	assert.Equal(t, "0 products", pluralize(0, "product"))
	assert.Equal(t, "1 product", pluralize(1, "product"))
	assert.Equal(t, "2 products", pluralize(2, "product"))

	price := funcs["price"].(func(float64) string)
	assert.Equal(t, "$1.50", price(1.5))

	isAdmin := funcs["isAdmin"].(func(*domain.User) bool)
	assert.False(t, isAdmin(nil))
	assert.True(t, isAdmin(&domain.User{Role: domain.RoleAdmin}))
}

func TestPager(t *testing.T) {
	p := NewPager("/sellers", paginate.Page[int]{Page: 2, PerPage: 6, Total: 13})
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, "/sellers?page=3", p.URL(p.Next))
	assert.Equal(t, "/sellers?page=1", p.URL(p.Prev))
}
