package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "sunday-market/internal/transport/http/response"
)

// MaxBodyBytes bounds request bodies; handlers see *http.MaxBytesError on overflow.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
		if c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var mbe *http.MaxBytesError
			if errors.As(e.Err, &mbe) {
				resp.Fail(c, resp.CodeTooLarge, "request body too large")
				return
			}
		}
	}
}
