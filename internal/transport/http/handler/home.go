package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Home struct {
	*Web
}

func (h *Home) Priority() int { return 0 }

func (h *Home) Mount(r gin.IRouter) {
	r.GET("/", h.index)
}

func (h *Home) index(c *gin.Context) {
	h.render(c, http.StatusOK, "home", "", gin.H{
		"name":  "Sunday Market!",
		"links": gin.H{"Shops": "/sellers", "Products": "/products", "Categories": "/categories"},
	})
}
