package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/transpopilot/backend/internal/cache"
	"github.com/transpopilot/backend/internal/config"
	"github.com/transpopilot/backend/internal/delivery/http"
	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
	"github.com/transpopilot/backend/internal/monitoring"
	"github.com/transpopilot/backend/internal/repository/postgres"
	"github.com/transpopilot/backend/internal/repository/redisstore"
	"github.com/transpopilot/backend/internal/repository/rest"
	"github.com/transpopilot/backend/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	metrics, err := monitoring.NewDefaultMetrics()
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// API call logs go to whichever store ends up serving records
	var dataRepo service.DataRepository
	recorder := monitoring.NewRecorder(monitoring.SinkFunc(func(ctx context.Context, logs []domain.APICallLog) error {
		return dataRepo.SaveAPILogs(ctx, logs)
	}), cfg.LogQueueSize, metrics)

	// Dependency Injection: Repositories
	dataRepo, dataSource, closeRepo := openRepository(ctx, cfg, recorder, metrics)
	defer closeRepo()

	if err := dataRepo.Health(ctx); err != nil {
		logger.Warn("store rejected the service credentials; API call logs stay queued", "error", err)
	} else {
		recorder.MarkAuthenticated(ctx)
	}

	// Optional Redis for the shared summary cache and high-risk alerts
	var (
		remote   cache.Remote
		notifier service.AlertNotifier
	)
	if cfg.RedisAddr != "" {
		store, err := redisstore.NewRedisStore(ctx, cfg)
		if err != nil {
			logger.Warn("redis unavailable, continuing without shared cache and alerts", "error", err)
		} else {
			defer store.Close()
			remote = store
			notifier = store
			logger.Info("connected to redis", "addr", cfg.RedisAddr)
		}
	}

	// Dependency Injection: Services
	fetcher := service.NewFetcher(dataRepo, cfg.FetchTimeout)
	opts := service.BehaviorOptions{
		WindowDays:    cfg.BehaviorWindowDays,
		TrendLookback: cfg.TrendLookback,
		FanOutLimit:   cfg.FanOutLimit,
		Notifier:      notifier,
	}
	if cfg.SummaryCacheTTL > 0 {
		opts.Cache = cache.NewSummaryCache(cfg.SummaryCacheTTL, remote)
	}
	behaviorSvc := service.NewBehaviorService(dataRepo, fetcher, opts)
	fuelSvc := service.NewFuelService(fetcher, cfg.TargetMPG, nil)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "TranspoPilot API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(metrics.Middleware())

	// Routes
	http.SetupRoutes(app, http.NewHandler(behaviorSvc, fuelSvc, dataRepo, dataSource, cfg.FuelWindowDays), metrics)

	// Graceful shutdown
	go func() {
		logger.Info("server starting", "port", cfg.Port, "data_source", dataSource, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}
	behaviorSvc.WaitBackground()
	recorder.Wait()
	logger.Info("server exited gracefully")
}

// openRepository selects the record store. An unreachable database falls back to mock data.
func openRepository(ctx context.Context, cfg *config.Config, recorder *monitoring.Recorder, metrics *monitoring.Metrics) (service.DataRepository, string, func()) {
	noop := func() {}

	switch cfg.DataSource {
	case config.SourceMock:
		logger.Info("running with mock data")
		return postgres.NewMockRepository(), config.SourceMock, noop

	case config.SourceREST:
		if cfg.BackendURL == "" {
			logger.Warn("BACKEND_URL is not set, running with mock data only")
			return postgres.NewMockRepository(), config.SourceMock, noop
		}
		transport := monitoring.NewTransport(nil, recorder, metrics, cfg.SlowCallThreshold)
		client := rest.NewClient(cfg.BackendURL, cfg.BackendAPIKey, cfg.BackendTimeout, transport)
		logger.Info("using backend REST endpoint", "url", cfg.BackendURL)
		return client, config.SourceREST, noop

	case config.SourcePostgres:
		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			logger.Warn("could not connect to database, running with mock data only", "error", err)
			return postgres.NewMockRepository(), config.SourceMock, noop
		}
		logger.Info("connected to PostgreSQL")
		return postgres.NewPostgresRepository(pool), config.SourcePostgres, pool.Close

	default:
		logger.Warn("unknown DATA_SOURCE, running with mock data only", "data_source", cfg.DataSource)
		return postgres.NewMockRepository(), config.SourceMock, noop
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = cfg.DBMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
