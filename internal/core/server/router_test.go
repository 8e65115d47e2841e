package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRouter_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := NewRouter(zap.New(core), Options{Mode: gin.TestMode})
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.Len())
}

func TestNewRouter_CORS(t *testing.T) {
	r := NewRouter(zap.NewNop(), Options{Mode: gin.TestMode, AllowOrigins: []string{"https://market.example"}})
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://market.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://market.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", Addr("0.0.0.0", 8080))
	assert.Equal(t, gin.ReleaseMode, GinMode("prod"))
	assert.Equal(t, gin.DebugMode, GinMode("dev"))
	srv := BuildServer(":1", http.NotFoundHandler(), time.Second, 2*time.Second, 3*time.Second)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
}
