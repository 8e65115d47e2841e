package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sunday-market/internal/core/auth"
	"sunday-market/internal/core/config"
	"sunday-market/internal/core/server"
	"sunday-market/internal/flash"
	"sunday-market/internal/service"
	"sunday-market/internal/storage"
	"sunday-market/internal/transport/http/handler"
	mdw "sunday-market/internal/transport/http/middleware"
	"sunday-market/internal/transport/http/view"
)

// Deps is everything the web engine needs; Images and Ping may be nil.
type Deps struct {
	Log        *zap.Logger
	Config     *config.Config
	JWT        *auth.JWTer
	Sessions   *service.Sessions
	Users      *service.Users
	Categories *service.Categories
	Products   *service.Products
	Flashes    flash.Store
	Images     storage.ImageStore
	Registry   prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Ping       func(context.Context) error
}

func NewEngine(d Deps) (*gin.Engine, error) {
	views, err := view.New()
	if err != nil {
		return nil, err
	}
	hc := d.Config.App.HTTP
	sc := d.Config.Session

	r := server.NewRouter(d.Log, server.Options{Mode: server.GinMode(d.Config.App.Env)})
	r.HTMLRender = views
	if d.Config.Otel.Enabled {
		r.Use(otelgin.Middleware(d.Config.Otel.ServiceName))
	}
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.RateLimit(rate.Limit(hc.RateLimitRPS), hc.RateLimitBurst),
		mdw.ConcurrencyLimit(hc.MaxInFlight),
		mdw.MaxBodyBytes(hc.MaxBodyBytes),
		mdw.Timeout(hc.RequestTimeout),
		mdw.NewMetrics(d.Registry).Handler(),
		mdw.Session(d.JWT, d.Sessions, sc.CookieName, sc.Secure, d.Log),
		mdw.CSRF(sc.CSRFName, sc.Secure, d.Log),
	)

	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0, "error": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	web := &handler.Web{
		Log:         d.Log,
		Flashes:     d.Flashes,
		FlashCookie: sc.FlashName,
		FlashTTL:    sc.FlashTTL,
		Secure:      sc.Secure,
	}
	r.NoRoute(web.NotFound)

	var reg Registry
	reg.Register(
		&handler.Home{Web: web},
		&handler.Sessions{
			Web:    web,
			Svc:    d.Sessions,
			JWT:    d.JWT,
			Cookie: sc.CookieName,
			Limit:  mdw.NewIPLimiter(rate.Every(time.Second), 10).Middleware(),
		},
		&handler.Users{Web: web, Svc: d.Users, Images: d.Images},
		&handler.Categories{Web: web, Svc: d.Categories},
		&handler.Products{Web: web, Svc: d.Products},
	)
	reg.MountAll(r)
	return r, nil
}
