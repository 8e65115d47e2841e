package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sunday-market/internal/domain"
	"sunday-market/internal/service"
	"sunday-market/internal/transport/http/view"
)

type Products struct {
	*Web
	Svc *service.Products
}

type productsIndex struct {
	Products []domain.Product `json:"products"`
	Pager    view.Pager       `json:"pager"`
}

func (h *Products) Priority() int { return 40 }

func (h *Products) Mount(r gin.IRouter) {
	r.GET("/products", h.index)
}

func (h *Products) index(c *gin.Context) {
	p, err := h.Svc.List(c.Request.Context(), pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "products/index", "Products", productsIndex{
		Products: p.Items,
		Pager:    view.NewPager("/products", p),
	})
}
