package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "sunday-market/internal/transport/http/response"
	"sunday-market/internal/transport/http/view"
)

const (
	KeyCSRFToken   = "csrfToken"
	CSRFField      = "authenticity_token"
	CSRFHeader     = "X-CSRF-Token"
	MsgCSRFInvalid = "The request could not be verified. Reload the page and try again."
)

// CSRF guards unsafe methods on cookie-authenticated requests. Every
// browser gets a random token in a cookie; forms echo it back in
// CSRFField (or CSRFHeader) and cross-origin Origin/Referer headers are
// refused outright. Bearer-authenticated requests carry no ambient
// credentials and skip the check.
func CSRF(cookie string, secure bool, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(cookie)
		if err != nil || tok == "" {
			tok = newCSRFToken()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookie, tok, 0, "/", "", secure, true)
		}
		c.Set(KeyCSRFToken, tok)

		if safeMethod(c.Request.Method) || strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.Next()
			return
		}
		if !sameOrigin(c.Request) || !tokenMatches(c, tok) {
			l.Warn("csrf rejected",
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("origin", c.GetHeader("Origin")))
			rejectCSRF(c)
			return
		}
		c.Next()
	}
}

// CSRFToken is the token forms must echo back.
func CSRFToken(c *gin.Context) string { return c.GetString(KeyCSRFToken) }

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// sameOrigin rejects a request whose Origin, or failing that Referer,
// names another host. Requests with neither fall through to the token.
func sameOrigin(r *http.Request) bool {
	src := r.Header.Get("Origin")
	if src == "null" {
		return false
	}
	if src == "" {
		src = r.Referer()
	}
	if src == "" {
		return true
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func tokenMatches(c *gin.Context, want string) bool {
	got := c.GetHeader(CSRFHeader)
	if got == "" {
		got = c.PostForm(CSRFField)
	}
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func rejectCSRF(c *gin.Context) {
	if resp.WantsJSON(c) {
		resp.Fail(c, resp.CodeForbidden, MsgCSRFInvalid)
		return
	}
	c.HTML(http.StatusForbidden, "error", view.Page{Title: "Forbidden", CurrentUser: CurrentUser(c), Data: MsgCSRFInvalid})
	c.Abort()
}

func newCSRFToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
