package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sunday-market/internal/core/auth"
	"sunday-market/internal/flash"
	"sunday-market/internal/service"
	resp "sunday-market/internal/transport/http/response"
)

type Sessions struct {
	*Web
	Svc    *service.Sessions
	JWT    *auth.JWTer
	Cookie string
	// Limit guards POST /login; nil means unlimited.
	Limit gin.HandlerFunc
}

type loginForm struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h *Sessions) Priority() int { return 10 }

func (h *Sessions) Mount(r gin.IRouter) {
	r.GET("/login", h.form)
	if h.Limit != nil {
		r.POST("/login", h.Limit, h.login)
	} else {
		r.POST("/login", h.login)
	}
	r.POST("/logout", h.logout)
}

func (h *Sessions) form(c *gin.Context) {
	h.render(c, http.StatusOK, "login", "Log in", "")
}

func (h *Sessions) login(c *gin.Context) {
	var f loginForm
	if err := c.ShouldBind(&f); err != nil {
		h.denied(c, f.Email)
		return
	}
	u, err := h.Svc.Authenticate(c.Request.Context(), f.Email, f.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.denied(c, f.Email)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	tok, err := h.JWT.Issue(u.ID, u.Role.String())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Log.Info("signed in", zap.String("slug", u.Slug))
	if resp.WantsJSON(c) {
		c.JSON(http.StatusOK, resp.OK(gin.H{"token": tok, "user": u}))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie, tok, int(h.JWT.TTL.Seconds()), "/", "", h.Secure, true)
	h.redirect(c, service.Outcome{Redirect: "/", Flash: flash.NewNotice("Signed in successfully.")})
}

func (h *Sessions) denied(c *gin.Context, email string) {
	const msg = "Invalid email or password."
	if resp.WantsJSON(c) {
		resp.Fail(c, resp.CodeUnauthorized, msg)
		return
	}
	p := h.page(c, "Log in", email)
	p.Flash = flash.NewAlert(msg)
	c.HTML(http.StatusUnauthorized, "login", p)
}

func (h *Sessions) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie, "", -1, "/", "", h.Secure, true)
	h.redirect(c, service.Outcome{Redirect: "/", Flash: flash.NewNotice("Signed out successfully.")})
}
