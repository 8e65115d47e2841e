package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sunday-market/internal/domain"
	"sunday-market/internal/service"
	"sunday-market/internal/storage"
	mdw "sunday-market/internal/transport/http/middleware"
	"sunday-market/internal/transport/http/view"
)

type Users struct {
	*Web
	Svc *service.Users
	// Images is optional; without it the edit form has no upload field.
	Images storage.ImageStore
}

type userForm struct {
	FirstName       *string `form:"first_name" json:"first_name"`
	LastName        *string `form:"last_name" json:"last_name"`
	Email           *string `form:"email" json:"email"`
	Image           *string `form:"image" json:"image"`
	ShopName        *string `form:"shop_name" json:"shop_name"`
	Website         *string `form:"website" json:"website"`
	ShopDescription *string `form:"shop_description" json:"shop_description"`
	Ban             *bool   `form:"ban" json:"ban"`
}

func (f userForm) attrs() service.UserAttrs {
	return service.UserAttrs{
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		Email:           f.Email,
		Image:           f.Image,
		ShopName:        f.ShopName,
		Website:         f.Website,
		ShopDescription: f.ShopDescription,
		Ban:             f.Ban,
	}
}

type sellersIndex struct {
	Users       []domain.User `json:"users"`
	Pager       view.Pager    `json:"pager"`
	CanModerate bool          `json:"-"`
}

type sellerShow struct {
	User        *domain.User `json:"user"`
	CanEdit     bool         `json:"-"`
	CanModerate bool         `json:"-"`
}

type sellerEdit struct {
	User        *domain.User `json:"user"`
	CanModerate bool         `json:"-"`
	Uploads     bool         `json:"-"`
}

type sellerProducts struct {
	User     *domain.User     `json:"user"`
	Products []domain.Product `json:"products"`
	Pager    view.Pager       `json:"pager"`
}

type sellerCategories struct {
	User       *domain.User      `json:"user"`
	Categories []domain.Category `json:"categories"`
	Pager      view.Pager        `json:"pager"`
}

func (h *Users) Priority() int { return 20 }

func (h *Users) Mount(r gin.IRouter) {
	g := r.Group("/sellers")
	g.GET("", h.index)
	g.GET("/:slug", h.show)
	g.GET("/:slug/edit", h.edit)
	g.POST("/:slug", h.update)
	g.PATCH("/:slug", h.update)
	g.POST("/:slug/delete", h.destroy)
	g.DELETE("/:slug", h.destroy)
	g.GET("/:slug/products", h.products)
	g.GET("/:slug/categories", h.categories)
	g.POST("/:slug/ban_seller", h.ban)
	g.PATCH("/:slug/ban_seller", h.ban)
	g.POST("/:slug/unban_seller", h.unban)
	g.PATCH("/:slug/unban_seller", h.unban)
}

func (h *Users) index(c *gin.Context) {
	viewer := mdw.CurrentUser(c)
	p, err := h.Svc.List(c.Request.Context(), viewer, pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "sellers/index", "Shops", sellersIndex{
		Users:       p.Items,
		Pager:       view.NewPager(service.SellersPath, p),
		CanModerate: h.Svc.CanModerate(viewer),
	})
}

func (h *Users) show(c *gin.Context) {
	u, err := h.Svc.Show(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	viewer := mdw.CurrentUser(c)
	h.render(c, http.StatusOK, "sellers/show", u.DisplayName(), sellerShow{
		User:        u,
		CanEdit:     h.Svc.CanEdit(viewer, u),
		CanModerate: h.Svc.CanModerate(viewer),
	})
}

func (h *Users) edit(c *gin.Context) {
	actor := mdw.CurrentUser(c)
	u, err := h.Svc.Edit(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "sellers/edit", "Edit "+u.DisplayName(), h.editData(actor, u))
}

func (h *Users) editData(actor, u *domain.User) sellerEdit {
	return sellerEdit{User: u, CanModerate: h.Svc.CanModerate(actor), Uploads: h.Images != nil}
}

func (h *Users) update(c *gin.Context) {
	ctx := c.Request.Context()
	actor := mdw.CurrentUser(c)
	slug := c.Param("slug")

	// authorize before touching any upload
	target, err := h.Svc.Edit(ctx, actor, slug)
	if err != nil {
		h.fail(c, err)
		return
	}
	var f userForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, BadRequest(err))
		return
	}

	var uploaded string
	if fh, ferr := c.FormFile("image_file"); ferr == nil && h.Images != nil {
		file, err := fh.Open()
		if err != nil {
			h.fail(c, BadRequest(err))
			return
		}
		url, err := h.Images.PutImage(ctx, target.Slug, file)
		_ = file.Close()
		switch {
		case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrTooLarge):
			h.renderInvalid(c, "sellers/edit", "Edit "+target.DisplayName(), h.editData(actor, target),
				&service.ValidationError{Fields: map[string]string{"image": "is not a supported image"}})
			return
		case err != nil:
			h.fail(c, err)
			return
		}
		uploaded = url
		f.Image = &uploaded
	}

	u, out, err := h.Svc.Update(ctx, actor, slug, f.attrs())
	if err != nil && uploaded != "" {
		h.dropUpload(ctx, uploaded)
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		h.renderInvalid(c, "sellers/edit", "Edit "+target.DisplayName(), h.editData(actor, u), ve)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}

// dropUpload removes an avatar whose profile update did not go through.
func (h *Users) dropUpload(ctx context.Context, url string) {
	if err := h.Images.DeleteImage(ctx, url); err != nil {
		h.Log.Warn("orphaned upload", zap.String("url", url), zap.Error(err))
	}
}

func (h *Users) destroy(c *gin.Context) {
	out, err := h.Svc.Destroy(c.Request.Context(), mdw.CurrentUser(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}

func (h *Users) products(c *gin.Context) {
	u, p, err := h.Svc.Products(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "sellers/products", "Products by "+u.DisplayName(), sellerProducts{
		User:     u,
		Products: p.Items,
		Pager:    view.NewPager(service.SellerPath(u)+"/products", p),
	})
}

func (h *Users) categories(c *gin.Context) {
	u, p, err := h.Svc.Categories(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "sellers/categories", "Categories of "+u.DisplayName(), sellerCategories{
		User:       u,
		Categories: p.Items,
		Pager:      view.NewPager(service.SellerPath(u)+"/categories", p),
	})
}

func (h *Users) ban(c *gin.Context) {
	out, err := h.Svc.BanSeller(c.Request.Context(), mdw.CurrentUser(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}

func (h *Users) unban(c *gin.Context) {
	out, err := h.Svc.UnbanSeller(c.Request.Context(), mdw.CurrentUser(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, out)
}
