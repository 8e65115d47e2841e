package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDefaults(t *testing.T) {
	assert.Equal(t, Resp{Code: 404, Msg: "Not Found", Data: struct{}{}}, Error(CodeNotFound, ""))
	assert.Equal(t, "nope", Error(CodeForbidden, "nope").Msg)
	assert.Equal(t, struct{}{}, OK(nil).Data)
	assert.Equal(t, 200, Status(CodeOK))
	assert.Equal(t, 422, Status(CodeUnprocessable))
}

func TestFailAndNegotiation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if WantsJSON(c) {
			Fail(c, CodeTooManyRequests, "")
			return
		}
		c.String(http.StatusOK, "html")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var body Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too Many Requests", body.Msg)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "html", w.Body.String())
}
