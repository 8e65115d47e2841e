package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"sunday-market/internal/core/auth"
	"sunday-market/internal/core/cache"
	"sunday-market/internal/core/config"
	"sunday-market/internal/core/database"
	"sunday-market/internal/core/logger"
	"sunday-market/internal/core/server"
	"sunday-market/internal/core/tracing"
	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/internal/policy"
	"sunday-market/internal/repo"
	"sunday-market/internal/service"
	"sunday-market/internal/storage"
	"sunday-market/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		JSON:      cfg.Log.JSON,
		AddCaller: true,
		Rotate:    logger.FileRotate(cfg.Log.Rotate),
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if len(cfg.JWT.Secret) < 16 {
		log.Fatal("jwt.secret must be at least 16 bytes (APP_JWT_SECRET)")
	}
	adminRoles, err := domain.ParseRoles(cfg.Policy.AdminRoles)
	if err != nil {
		log.Fatal("policy.adminroles", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Otel)
	if err != nil {
		log.Fatal("tracing init", zap.Error(err))
	}

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	users := repo.NewUserRepo(db)
	categories := repo.NewCategoryRepo(db)
	products := repo.NewProductRepo(db)
	admins := policy.NewRoleSet(adminRoles...)
	sessions := service.NewSessions(users, log)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		u, err := sessions.EnsureAdmin(ctx, service.NewUser{
			FirstName: cfg.Admin.FirstName,
			LastName:  cfg.Admin.LastName,
			Email:     cfg.Admin.Email,
			Password:  cfg.Admin.Password,
		})
		if err != nil {
			log.Fatal("seed admin", zap.Error(err))
		}
		log.Info("admin ready", zap.String("slug", u.Slug))
	}

	flashes, closeFlashes := flashStore(ctx, cfg, log)
	defer closeFlashes()

	var images storage.ImageStore
	if cfg.S3.Bucket != "" {
		s3, err := storage.NewS3(cfg.S3)
		if err != nil {
			log.Fatal("s3", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed; uploads may fail", zap.Error(err))
		}
		images = s3
		log.Info("image uploads enabled", zap.String("bucket", cfg.S3.Bucket))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("sql db", zap.Error(err))
	}
	reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.DB.Driver))

	r, err := router.NewEngine(router.Deps{
		Log:    log,
		Config: cfg,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
		Sessions:   sessions,
		Users:      service.NewUsers(users, admins, cfg.Pagination.PerPage, log),
		Categories: service.NewCategories(categories, products, admins, cfg.Pagination.PerPage, log),
		Products:   service.NewProducts(products, cfg.Pagination.PerPage),
		Flashes:    flashes,
		Images:     images,
		Registry:   reg,
		Gatherer:   reg,
		Ping:       sqlDB.PingContext,
	})
	if err != nil {
		log.Fatal("build router", zap.Error(err))
	}

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("market starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("env", cfg.App.Env),
	)

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		log.Error("market start FAILED", zap.Error(err))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", zap.Error(err))
	}
	_ = sqlDB.Close()
	log.Info("market stopped gracefully")
}

// flashStore prefers redis; without an address, or when redis is down at
// boot, messages live in process memory.
func flashStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (flash.Store, func()) {
	if cfg.Redis.Addr == "" {
		l.Info("flash store: memory")
		return flash.NewMemoryStore(cfg.Session.FlashTTL), func() {}
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	c.Prefix = cfg.App.Name + ":"
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		l.Warn("redis unavailable, flash store: memory", zap.Error(err))
		_ = c.Close()
		return flash.NewMemoryStore(cfg.Session.FlashTTL), func() {}
	}
	l.Info("flash store: redis", zap.String("addr", cfg.Redis.Addr))
	return flash.NewRedisStore(c, cfg.Session.FlashTTL), func() { _ = c.Close() }
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToStdLogger(l.Named("gorm"), zapcore.InfoLevel),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
