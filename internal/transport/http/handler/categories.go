package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sunday-market/internal/domain"
	"sunday-market/internal/service"
	mdw "sunday-market/internal/transport/http/middleware"
	"sunday-market/internal/transport/http/view"
)

type Categories struct {
	*Web
	Svc *service.Categories
}

type categoryForm struct {
	Name  *string `form:"category[name]" json:"name"`
	Color *string `form:"category[color]" json:"color"`
}

func (f categoryForm) attrs() service.CategoryAttrs {
	return service.CategoryAttrs{Name: f.Name, Color: f.Color}
}

type categoriesIndex struct {
	Categories []domain.Category `json:"categories"`
	Pager      view.Pager        `json:"pager"`
	CanManage  bool              `json:"-"`
}

type categoryShow struct {
	Category  *domain.Category `json:"category"`
	Products  []domain.Product `json:"products"`
	Pager     view.Pager       `json:"pager"`
	CanManage bool             `json:"-"`
}

type categoryEditor struct {
	Category *domain.Category `json:"category"`
	Heading  string           `json:"-"`
	Action   string           `json:"-"`
	Submit   string           `json:"-"`
	SubmitID string           `json:"-"`
}

func newEditor(c *domain.Category) categoryEditor {
	return categoryEditor{Category: c, Heading: "New category", Action: service.CategoriesPath,
		Submit: "Create A Category", SubmitID: "btn-new-category"}
}

func editEditor(c *domain.Category) categoryEditor {
	return categoryEditor{Category: c, Heading: "Edit category", Action: service.CategoryPath(c),
		Submit: "Update The Category", SubmitID: "btn-update-category"}
}

func (h *Categories) Priority() int { return 30 }

func (h *Categories) Mount(r gin.IRouter) {
	g := r.Group("/categories")
	g.GET("", h.index)
	g.GET("/new", h.newForm)
	g.POST("", h.create)
	g.GET("/:id", h.show)
	g.GET("/:id/edit", h.edit)
	g.POST("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.POST("/:id/delete", h.destroy)
	g.DELETE("/:id", h.destroy)
}

func (h *Categories) index(c *gin.Context) {
	p, err := h.Svc.Index(c.Request.Context(), pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "categories/index", "Categories", categoriesIndex{
		Categories: p.Items,
		Pager:      view.NewPager(service.CategoriesPath, p),
		CanManage:  h.Svc.CanManage(mdw.CurrentUser(c)),
	})
}

func (h *Categories) show(c *gin.Context) {
	cat, p, err := h.Svc.Show(c.Request.Context(), c.Param("id"), pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "categories/show", cat.Name, categoryShow{
		Category:  cat,
		Products:  p.Items,
		Pager:     view.NewPager(service.CategoryPath(cat), p),
		CanManage: h.Svc.CanManage(mdw.CurrentUser(c)),
	})
}

func (h *Categories) newForm(c *gin.Context) {
	cat, err := h.Svc.New(mdw.CurrentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "categories/form", "New category", newEditor(cat))
}

func (h *Categories) create(c *gin.Context) {
	var f categoryForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, BadRequest(err))
		return
	}
	cat, out, err := h.Svc.Create(c.Request.Context(), mdw.CurrentUser(c), f.attrs())
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		h.renderInvalid(c, "categories/form", "New category", newEditor(cat), ve)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}

func (h *Categories) edit(c *gin.Context) {
	cat, err := h.Svc.Edit(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "categories/form", "Edit category", editEditor(cat))
}

func (h *Categories) update(c *gin.Context) {
	var f categoryForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, BadRequest(err))
		return
	}
	cat, out, err := h.Svc.Update(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"), f.attrs())
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		h.renderInvalid(c, "categories/form", "Edit category", editEditor(cat), ve)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}

func (h *Categories) destroy(c *gin.Context) {
	out, err := h.Svc.Destroy(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}
