package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/smartcart/backend/config"
	"github.com/smartcart/backend/internal/infrastructure/postgres"
	"github.com/smartcart/backend/internal/usecase"
)

// The reconciler runs one merge pass over the product population and
// exits. An external scheduler invokes it after the day's scrapes finish
// and guarantees only one instance runs at a time.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.New(ctx, cfg.Database.URL, &postgres.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	normalizer := usecase.NewNormalizer(usecase.NormalizerConfig{})
	resolver := usecase.NewResolver(normalizer, usecase.ResolverConfig{
		Threshold: cfg.Matching.Threshold,
	})
	reconciler := usecase.NewReconcileService(store, normalizer, resolver, logger)

	merges, err := reconciler.Run(ctx)
	if err != nil {
		logger.Fatal("reconciliation pass failed", zap.Int("merges", merges), zap.Error(err))
	}

	logger.Info("done", zap.Int("merges", merges))
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProductionConfig().Build()
	}
	return zap.NewDevelopmentConfig().Build()
}
