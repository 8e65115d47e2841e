package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	// Mode is gin's mode: debug, release or test. Empty keeps the current one.
	Mode string
	// AllowOrigins feeds CORS; empty allows any origin without credentials.
	AllowOrigins []string
}

// NewRouter returns a bare engine with panic recovery logged through zap
// and CORS. Access logging is left to the caller's middleware chain.
func NewRouter(l *zap.Logger, opt Options) *gin.Engine {
	if opt.Mode != "" {
		gin.SetMode(opt.Mode)
	}
	r := gin.New()
	r.Use(ginzap.RecoveryWithZap(l, true))

	cc := cors.DefaultConfig()
	if len(opt.AllowOrigins) > 0 {
		cc.AllowOrigins = opt.AllowOrigins
		cc.AllowCredentials = true
	} else {
		cc.AllowAllOrigins = true
	}
	r.Use(cors.New(cc))
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// GinMode maps the app environment onto gin's mode.
func GinMode(env string) string {
	switch env {
	case "prod", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	}
	return gin.DebugMode
}
