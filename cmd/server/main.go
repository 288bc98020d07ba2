package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-rate-configurator/internal/config"
	"github.com/iliyamo/hotel-rate-configurator/internal/database"
	"github.com/iliyamo/hotel-rate-configurator/internal/handler"
	"github.com/iliyamo/hotel-rate-configurator/internal/logger"
	"github.com/iliyamo/hotel-rate-configurator/internal/middleware"
	"github.com/iliyamo/hotel-rate-configurator/internal/queue"
	"github.com/iliyamo/hotel-rate-configurator/internal/repository"
	"github.com/iliyamo/hotel-rate-configurator/internal/router"
	"github.com/iliyamo/hotel-rate-configurator/internal/service"
)

func main() {
	// Outside production a local .env wins over the shell.
	if !logger.IsProduction(os.Getenv("APP_ENV")) {
		_ = godotenv.Overload(".env")
	}
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		zl.Warn("redis unavailable; cache disabled and rate limiting is local")
	}

	stores, operators, closeBackend := openBackend(ctx, cfg, rdb, zl)
	defer closeBackend()

	cacheCfg := config.LoadCacheConfig()
	var pub service.Publisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		ap := service.NewAMQPPublisher(cfg.RabbitURL, zl)
		defer func() { _ = ap.Close() }()
		pub = ap
	}

	svc := service.NewConfigurator(stores, pub, zl, service.Options{
		PropertyID:   cfg.PropertyID,
		CalendarDays: cfg.CalendarDays,
		OnChange: func(ctx context.Context) {
			if rdb == nil {
				return
			}
			if n, err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix); err != nil {
				zl.Warn("cache purge failed", zap.Error(err))
			} else {
				zl.Debug("cache purged", zap.Int("keys", n))
			}
		},
	})
	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := svc.Bootstrap(bootCtx); err != nil {
		cancel()
		zl.Fatal("bootstrap failed", zap.Error(err))
	}
	cancel()

	if cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartChangeConsumer(ctx, cfg.RabbitURL, zl, svc.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("change consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("ip", v.RemoteIP),
			}
			if v.Error != nil {
				zl.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zl.Info("request", fields...)
			return nil
		},
	}))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl)
	cache := middleware.NewRedisCache(cacheCfg, rdb, svc.Revision)

	router.RegisterRoutes(e, svc)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, operators), cfg.JWTSecret, limit)
	router.RegisterRates(e, handler.NewStoreHandler(svc), cfg.JWTSecret, limit, cache)

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("backend", cfg.StoreBackend), zap.String("instance", svc.Instance()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
	zl.Info("stopped")
}

// openBackend builds the store and operator repositories for the configured
// backend.  The returned func releases whatever was opened.
func openBackend(ctx context.Context, cfg config.Config, rdb *redis.Client, zl *zap.Logger) (repository.StoreRepository, repository.OperatorRepository, func()) {
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			zl.Fatal("mysql open failed", zap.Error(err))
		}
		migrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := database.Migrate(migrateCtx, db); err != nil {
			zl.Fatal("mysql migrate failed", zap.Error(err))
		}
		return repository.NewMySQLStoreRepo(db, cfg.PropertyID), repository.NewMySQLOperatorRepo(db), closeDB(db)
	case config.BackendRedis:
		if rdb == nil {
			zl.Fatal("STORE_BACKEND=redis but redis is unavailable")
		}
		return repository.NewRedisStoreRepo(rdb, cfg.PropertyID), repository.NewRedisOperatorRepo(rdb), func() {}
	}
	zl.Warn("memory backend: configuration is lost on restart")
	return repository.NewMemoryStoreRepo(), repository.NewMemoryOperatorRepo(), func() {}
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
