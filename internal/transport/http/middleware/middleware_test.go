package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"sunday-market/internal/core/auth"
	"sunday-market/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(KeyRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	assert.Equal(t, "abc", serve(r, req).Body.String())

	req.Header.Set(KeyRequestID, strings.Repeat("x", 100))
	assert.NotEqual(t, strings.Repeat("x", 100), serve(r, req).Body.String())
}

func TestAccessLog_MasksAndLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ok?token=abc&page=2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "/ok", ctx["path"])
	assert.NotEmpty(t, ctx["rid"])
	q := ctx["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"2"}, q["page"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestIPLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewIPLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "buckets are per ip")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"), "bucket refills")

	now = now.Add(time.Hour)
	l.Allow("3.3.3.3")
	assert.Len(t, l.buckets, 1, "idle buckets are swept")
}

func TestIPLimiter_Middleware(t *testing.T) {
	r := gin.New()
	r.Use(NewIPLimiter(0.001, 1).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestConcurrencyLimit_BusyWhenContextEnds(t *testing.T) {
	r := gin.New()
	release := make(chan struct{})
	entered := make(chan struct{})
	r.Use(ConcurrencyLimit(1))
	r.GET("/", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/sellers/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/sellers/a", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/sellers/b", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/sellers/:slug", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

type stubUsers map[string]*domain.User

func (s stubUsers) Current(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func TestSession(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "sunday-market", TTL: time.Hour}
	users := stubUsers{"u1": {ID: "u1", Role: domain.RoleSeller}}

	r := gin.New()
	r.Use(Session(j, users, "sid", false, zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	good, err := j.Issue("u1", "Seller")
	require.NoError(t, err)
	gone, err := j.Issue("u2", "Seller")
	require.NoError(t, err)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: good})
	assert.Equal(t, "u1", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	assert.Equal(t, "u1", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: gone})
	w = serve(r, req)
	assert.Equal(t, "anonymous", w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sid=;")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "garbage"})
	assert.Equal(t, "anonymous", serve(r, req).Body.String())
}

func TestCSRF(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := gin.New()
	r.Use(CSRF("csrf", false, zap.New(core)))
	r.GET("/form", func(c *gin.Context) { c.String(http.StatusOK, CSRFToken(c)) })
	r.POST("/act", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/form", nil))
	tok := w.Body.String()
	require.NotEmpty(t, tok)
	ck := w.Result().Cookies()
	require.Len(t, ck, 1)
	assert.Equal(t, tok, ck[0].Value)
	assert.Equal(t, http.SameSiteLaxMode, ck[0].SameSite)

	post := func(token string, hdr map[string]string) int {
		req := httptest.NewRequest(http.MethodPost, "/act", strings.NewReader("authenticity_token="+token))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		req.AddCookie(&http.Cookie{Name: "csrf", Value: tok})
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusNoContent, post(tok, nil))
	assert.Equal(t, http.StatusNoContent, post(tok, map[string]string{"Origin": "http://example.com"}))
	assert.Equal(t, http.StatusNoContent, post("", map[string]string{CSRFHeader: tok}))
	assert.Equal(t, http.StatusNoContent, post("", map[string]string{"Authorization": "Bearer abc"}))

	assert.Equal(t, http.StatusForbidden, post("", nil))
	assert.Equal(t, http.StatusForbidden, post("nope", nil))
	assert.Equal(t, http.StatusForbidden, post(tok, map[string]string{"Origin": "https://evil.example"}))
	assert.Equal(t, http.StatusForbidden, post(tok, map[string]string{"Referer": "https://evil.example/page"}))
	assert.Equal(t, 4, logs.FilterMessage("csrf rejected").Len())
}
