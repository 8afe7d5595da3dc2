package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/config"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
	buildsvc "github.com/kailas-cloud/cardex/internal/usecase/build"
)

func runBuild(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	began := time.Now()
	svc := buildsvc.New(cfg.Index.DataDir, cfg.Index.Dir, logger,
		resource.WithBatchSize(cfg.Index.BatchSize),
	)
	stats, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	logger.Info("Index built",
		zap.Int("cards", stats.Cards),
		zap.Int("sets", stats.Sets),
		zap.Duration("elapsed", time.Since(began)),
	)
	return nil
}
