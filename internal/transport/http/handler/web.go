// Package handler binds HTTP requests to the market services. Every page
// renders HTML by default and the response.Resp envelope for JSON clients.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/internal/policy"
	"sunday-market/internal/service"
	mdw "sunday-market/internal/transport/http/middleware"
	resp "sunday-market/internal/transport/http/response"
	"sunday-market/internal/transport/http/view"
)

const (
	MsgNotAuthorized = "You are not authorized to perform this action."
	msgNotFound      = "The page you were looking for doesn't exist."
	msgServerError   = "We're sorry, but something went wrong."
)

// HTTPError carries a status chosen by the handler itself.
type HTTPError struct {
	Code int
	Msg  string
	Err  error
}

func (e *HTTPError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func BadRequest(err error) error {
	return &HTTPError{Code: resp.CodeBadRequest, Msg: "invalid form data", Err: err}
}

// Web holds what every page handler shares: logging and the flash slot.
type Web struct {
	Log         *zap.Logger
	Flashes     flash.Store
	FlashCookie string
	FlashTTL    time.Duration
	Secure      bool
}

func (w *Web) page(c *gin.Context, title string, data any) view.Page {
	return view.Page{
		Title:       title,
		CurrentUser: mdw.CurrentUser(c),
		Flash:       w.popFlash(c),
		CSRFToken:   mdw.CSRFToken(c),
		Data:        data,
	}
}

func (w *Web) render(c *gin.Context, status int, name, title string, data any) {
	if resp.WantsJSON(c) {
		c.JSON(status, resp.OK(data))
		return
	}
	c.HTML(status, name, w.page(c, title, data))
}

// renderInvalid shows the form again with the submitted values.
func (w *Web) renderInvalid(c *gin.Context, name, title string, data any, ve *service.ValidationError) {
	if resp.WantsJSON(c) {
		c.JSON(http.StatusUnprocessableEntity,
			resp.New(resp.CodeUnprocessable, resp.CodeMsgMap[resp.CodeUnprocessable], gin.H{"errors": ve.Fields}))
		return
	}
	p := w.page(c, title, data)
	p.Errors = ve.Fields
	c.HTML(http.StatusUnprocessableEntity, name, p)
}

// redirect follows an Outcome: the message is parked for the next page
// and the browser is sent on with 303 See Other.
func (w *Web) redirect(c *gin.Context, out service.Outcome) {
	if resp.WantsJSON(c) {
		c.JSON(http.StatusOK, resp.OK(out))
		return
	}
	if !out.Flash.Empty() {
		w.pushFlash(c, out.Flash)
	}
	c.Redirect(http.StatusSeeOther, out.Redirect)
}

func (w *Web) fail(c *gin.Context, err error) {
	var he *HTTPError
	var ve *service.ValidationError
	switch {
	case errors.Is(err, policy.ErrNotAuthorized):
		if resp.WantsJSON(c) {
			resp.Fail(c, resp.CodeForbidden, MsgNotAuthorized)
			return
		}
		w.redirect(c, service.Outcome{Redirect: "/", Flash: flash.NewAlert(MsgNotAuthorized)})
	case errors.Is(err, domain.ErrNotFound):
		w.errorPage(c, resp.CodeNotFound, msgNotFound)
	case errors.As(err, &ve):
		w.errorPage(c, resp.CodeUnprocessable, ve.Error())
	case errors.As(err, &he):
		w.errorPage(c, he.Code, he.Error())
	default:
		w.Log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		w.errorPage(c, resp.CodeServerError, msgServerError)
	}
}

func (w *Web) errorPage(c *gin.Context, code int, msg string) {
	if resp.WantsJSON(c) {
		resp.Fail(c, code, msg)
		return
	}
	c.HTML(resp.Status(code), "error", w.page(c, resp.CodeMsgMap[code], msg))
	c.Abort()
}

// NotFound serves unmatched routes.
func (w *Web) NotFound(c *gin.Context) { w.errorPage(c, resp.CodeNotFound, msgNotFound) }

func (w *Web) pushFlash(c *gin.Context, m flash.Message) {
	key := uuid.NewString()
	if err := w.Flashes.Put(c.Request.Context(), key, m); err != nil {
		w.Log.Warn("flash put failed", zap.Error(err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(w.FlashCookie, key, int(w.FlashTTL/time.Second), "/", "", w.Secure, true)
}

func (w *Web) popFlash(c *gin.Context) flash.Message {
	key, err := c.Cookie(w.FlashCookie)
	if err != nil || key == "" {
		return flash.Message{}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(w.FlashCookie, "", -1, "/", "", w.Secure, true)
	m, err := w.Flashes.Take(c.Request.Context(), key)
	if err != nil {
		w.Log.Warn("flash take failed", zap.Error(err))
		return flash.Message{}
	}
	return m
}

func pageParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
