package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sunday-market/internal/core/auth"
	"sunday-market/internal/domain"
)

const keyCurrentUser = "currentUser"

// UserResolver turns a token's subject into a live account.
type UserResolver interface {
	Current(ctx context.Context, id string) (*domain.User, error)
}

// Session resolves the acting user from the session cookie, or from a
// Bearer token for API clients. Requests without a valid token proceed
// anonymously; a stale cookie is cleared.
func Session(j *auth.JWTer, users UserResolver, cookie string, secure bool, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, fromCookie := "", false
		if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			tok = strings.TrimPrefix(ah, "Bearer ")
		} else if v, err := c.Cookie(cookie); err == nil && v != "" {
			tok, fromCookie = v, true
		}
		if tok == "" {
			c.Next()
			return
		}

		u, err := resolve(c.Request.Context(), j, users, tok)
		switch {
		case err == nil:
			c.Set(keyCurrentUser, u)
		case fromCookie:
			if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, auth.ErrInvalidToken) {
				l.Warn("session lookup failed", zap.Error(err))
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookie, "", -1, "/", "", secure, true)
		}
		c.Next()
	}
}

func resolve(ctx context.Context, j *auth.JWTer, users UserResolver, tok string) (*domain.User, error) {
	claims, err := j.Parse(tok)
	if err != nil {
		return nil, err
	}
	return users.Current(ctx, claims.UID)
}

// CurrentUser is the acting user, or nil when anonymous.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(keyCurrentUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// SetCurrentUser replaces the acting user for the rest of the request.
func SetCurrentUser(c *gin.Context, u *domain.User) {
	c.Set(keyCurrentUser, u)
}
