package main

import (
	"context"
	"dispatch-route-service/internal/adapters/cache"
	"dispatch-route-service/internal/adapters/directions"
	"dispatch-route-service/internal/adapters/repositories"
	"dispatch-route-service/internal/api"
	"dispatch-route-service/internal/config"
	"dispatch-route-service/internal/platform/db"
	"dispatch-route-service/internal/platform/logging"
	"dispatch-route-service/internal/platform/metrics"
	"dispatch-route-service/internal/ports"
	"dispatch-route-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	envLoaded := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if !envLoaded {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	opts, err := config.LoadOptimizerOptions(cfg.OptimizerConfig)
	if err != nil {
		return err
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	metrics.Register()

	estimator, closeEstimator, err := newEstimator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeEstimator()

	repo := repositories.NewPostgresDispatchRepository(sqlDB)
	optimizer := services.NewOptimizer(opts, logger.Named("optimizer"))
	svc := services.NewDispatchService(repo, optimizer, estimator, logger.Named("dispatch"))
	router := api.NewRouter(svc, logger.Named("http"))

	// Timeouts are tuned for cold-cache estimates (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newEstimator builds the optional route estimator. Without an ORS key plans
// carry no travel estimates; without Redis estimates are not cached.
func newEstimator(ctx context.Context, cfg config.Config, logger *zap.Logger) (*services.PlanEstimator, func(), error) {
	noop := func() {}

	if strings.TrimSpace(cfg.ORSAPIKey) == "" {
		logger.Info("ORS_API_KEY not set, route estimates disabled")
		return nil, noop, nil
	}

	provider, err := directions.NewORSDirectionsProvider(directions.ORSConfig{
		APIKey:        cfg.ORSAPIKey,
		BaseURL:       cfg.ORSBaseURL,
		Profile:       cfg.ORSProfile,
		RatePerSecond: cfg.ORSRatePerSec,
	}, logger.Named("ors"))
	if err != nil {
		return nil, noop, err
	}

	var estimateCache ports.EstimateCache
	closeFn := noop
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		estimateCache = cache.NewRedisEstimateCache(rdb, cfg.EstimateCacheTTL)
		closeFn = func() { _ = rdb.Close() }
	} else {
		logger.Info("REDIS_URL not set, route estimates are not cached")
	}

	return services.NewPlanEstimator(provider, estimateCache, logger.Named("estimates")), closeFn, nil
}
