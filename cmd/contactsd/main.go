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

	"freightbook/internal/api"
	"freightbook/internal/config"
	"freightbook/internal/domain"
	"freightbook/internal/events"
	"freightbook/internal/logging"
	"freightbook/internal/metrics"
	"freightbook/internal/repository"
	"freightbook/internal/service"
	"freightbook/internal/source"
	"freightbook/internal/worker"

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

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	cache := buildSnapshotCache(cfg, redisClient, &logger)
	bookingSource := source.NewHTTPBookingSource(cfg.Source, &logger)

	eventBus := events.NewEventBus()
	subscribeRefreshLogging(eventBus, &logger)

	directoryService := service.NewDirectoryService(bookingSource, cache, eventBus, &logger)

	refresher := worker.NewRefresher(directoryService, cfg.Refresh.Interval(), worker.RetryPolicy{
		MaxRetries:   cfg.Refresh.MaxRetries,
		InitialDelay: time.Duration(cfg.Refresh.InitialDelaySeconds) * time.Second,
		MaxDelay:     time.Duration(cfg.Refresh.MaxDelaySeconds) * time.Second,
	}, &logger)

	httpServer := api.NewHTTPServer(cfg.API, directoryService, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	go refresher.Run(ctx)

	return serveHTTP(ctx, httpServer, cfg, &logger)
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
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func buildSnapshotCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SnapshotCache {
	memory := repository.NewMemorySnapshotCache(cfg.Redis.SnapshotTTL())
	if redisClient == nil {
		return memory
	}

	redisCache := repository.NewRedisSnapshotCache(redisClient, cfg.Redis.SnapshotTTL())
	return repository.NewFailoverSnapshotCache(redisCache, memory, logger)
}

func subscribeRefreshLogging(bus *events.EventBus, logger *zerolog.Logger) {
	refreshLogger := logging.Component(logger, "refresh-events")
	bus.Subscribe(events.EventRefreshFailed, func(e *events.Event) error {
		refreshLogger.Warn().RawJSON("payload", e.Payload).Msg("refresh failed")
		return nil
	})
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

func serveHTTP(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("contact directory service started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("contact directory service stopped")
	return nil
}
