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

	configs "github.com/Payphone-Digital/factbook/config"
	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/factbook"
	"github.com/Payphone-Digital/factbook/internal/handler"
	"github.com/Payphone-Digital/factbook/internal/middleware"
	"github.com/Payphone-Digital/factbook/internal/repository"
	"github.com/Payphone-Digital/factbook/internal/router"
	"github.com/Payphone-Digital/factbook/internal/service"
	"github.com/Payphone-Digital/factbook/internal/userrecord"
	"github.com/Payphone-Digital/factbook/pkg/circuit"
	"github.com/Payphone-Digital/factbook/pkg/database"
	"github.com/Payphone-Digital/factbook/pkg/health"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/Payphone-Digital/factbook/pkg/password"
	"github.com/Payphone-Digital/factbook/pkg/pool"
	"github.com/Payphone-Digital/factbook/pkg/redis"
	"github.com/Payphone-Digital/factbook/pkg/storage"
	"github.com/Payphone-Digital/factbook/pkg/validation"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(config, os.Args[2:]))
	}

	log, err := logger.New(config.App.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(config, log); err != nil {
		log.Error("Application stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(config *configs.Config, log *zap.Logger) error {
	log.Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sentry error tracking
	if config.App.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              config.App.SentryDSN,
			Environment:      config.App.Environment,
			Release:          constants.AppVersion,
			TracesSampleRate: 0.2,
		}); err != nil {
			log.Error("Sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.NewPostgresDB(ctx, config, database.DefaultPoolConfig(), log)
	if err != nil {
		return err
	}
	defer func() { _ = database.CloseDB(db) }()

	if err := database.Migrate(ctx, db, config.Database.Synchronize, log); err != nil {
		return err
	}

	ctxLog := logger.NewContextLogger(log)

	// Hashing runs on a bounded pool so argon2 cannot starve request goroutines.
	hashPool := pool.New("argon2", config.Security.HashWorkers, log)
	hasher := password.NewHasher(password.DefaultParams(), hashPool)
	records := userrecord.NewManager(hasher)

	// Repositories
	userRepo := repository.NewUserRepository(db, records, ctxLog)
	roleRepo := repository.NewRoleRepository(db, ctxLog)

	if err := database.Seed(ctx, roleRepo, log); err != nil {
		return err
	}

	monitor := health.NewMonitor(30*time.Second, log)
	monitor.Register("database", true, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})

	stats := map[string]handler.StatsFunc{
		"hash_pool": hashPool.Stats,
		"database":  func() map[string]any { return database.PoolStats(db) },
	}

	// Redis is optional: without it user views are simply not cached.
	var userCache service.UserCache
	if config.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, config, log)
		if err != nil {
			log.Warn("Continuing without user cache", zap.Error(err))
			monitor.Register("redis", false, func(context.Context) error { return err })
		} else {
			defer func() { _ = redisClient.Close() }()

			// Role names may have changed since the last run.
			if n, err := redisClient.DeleteByPattern(ctx, constants.CacheKeyUser+"*"); err != nil {
				log.Warn("Failed to flush cached user views", zap.Error(err))
			} else {
				log.Info("Flushed cached user views", zap.Int("keys", n))
			}

			breaker := circuit.NewBreaker("redis", circuit.DefaultConfig(), log)
			viewCache := service.NewUserViewCache(redisClient, breaker, config.Redis.TTL, log)
			userCache = viewCache

			monitor.Register("redis", false, redisClient.Ping)
			stats["redis_pool"] = redisClient.PoolStats
			stats["redis_breaker"] = viewCache.Stats
		}
	} else {
		monitor.Disable("redis")
	}

	objects, err := storage.NewS3Store(ctx, config, log)
	if err != nil {
		return err
	}
	monitor.Register("storage", false, func(ctx context.Context) error {
		_, err := objects.Exists(ctx, constants.AvatarKeyPrefix+".health")
		return err
	})

	pages, err := factbook.NewDirStore(config.Factbook.DataDir, config.Factbook.CacheTTL, log)
	if err != nil {
		return err
	}
	defer pages.Close()

	// Services
	jwtService := service.NewJWTService(config.JWT.Secret, config.JWT.Expiration)
	userService := service.NewUserService(userRepo, roleRepo, userCache, ctxLog)
	avatarService := service.NewAvatarService(objects, userRepo, ctxLog)

	validation.RegisterJSONTagNames()

	engine := router.NewRouter(
		handler.NewUserHandler(userService, avatarService, ctxLog),
		handler.NewFactbookHandler(pages, ctxLog),
		handler.NewHealthHandler(monitor, stats, log),
		middleware.NewJWTMiddleware(jwtService, log),
		config,
		log,
	).SetupRoutes()

	monitor.Start(ctx)
	defer monitor.Stop()

	srv := &http.Server{
		Addr:              config.ListenAddress(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
