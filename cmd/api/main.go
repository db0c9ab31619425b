package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomstay/internal/api"
	"roomstay/internal/config"
	"roomstay/internal/database"
	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/logging"
	"roomstay/internal/metrics"
	"roomstay/internal/repository"
	"roomstay/internal/scheduler"
	"roomstay/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	priceCache := initPriceCache(cfg, redisClient, &logger)
	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	lockService := service.NewLockService(db, eventBus, cfg.Locks, &logger)
	availabilityService := service.NewAvailabilityService(db, &logger)
	pricingService := service.NewPricingService(db, priceCache, &logger)
	lifecycleService := service.NewEventLifecycleService(db, priceCache, eventBus, &logger)

	sched, err := scheduler.New(lifecycleService, lockService, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("create scheduler")
		return err
	}

	httpServer := api.NewHTTPServer(cfg.API, availabilityService, lockService, pricingService, lifecycleService, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	startBackups(ctx, cfg, &logger)

	if err := sched.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("start scheduler")
		return err
	}

	return startServers(ctx, httpServer, sched, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initPriceCache prefers redis with in-memory failover; a memory cache alone
// when redis is not configured.
func initPriceCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.PriceCache {
	ttl := cfg.Pricing.CacheTTL()
	memory := repository.NewMemoryPriceCache(ttl)
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisPriceCache(redisClient, ttl)
	return repository.NewFailoverPriceCache(primary, memory, logger)
}

// subscribeAuditLog writes every domain event to the log as an audit trail.
func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	auditLogger := logger.With().Str("component", "audit").Logger()
	for _, eventType := range []string{
		events.EventLockAcquired,
		events.EventLockReleased,
		events.EventLockConverted,
		events.EventLocksSwept,
		events.EventPricingActivated,
		events.EventPricingCompleted,
		events.EventPricingCancelled,
	} {
		bus.Subscribe(eventType, func(e *events.Event) error {
			auditLogger.Info().
				Str("event", e.Type).
				RawJSON("payload", e.Payload).
				Msg("domain event")
			return nil
		})
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startBackups(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}

	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backupService.Start(ctx)
}

func startServers(
	ctx context.Context,
	httpServer *api.HTTPServer,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sched.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("scheduler shutdown error")
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
