package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/config"
	"github.com/kailas-cloud/cardex/internal/db/redis"
	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/metrics"
	"github.com/kailas-cloud/cardex/internal/repository/pagecache"
	"github.com/kailas-cloud/cardex/internal/repository/payload"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
	"github.com/kailas-cloud/cardex/internal/repository/stringset"
	chiTransport "github.com/kailas-cloud/cardex/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/cardex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/cardex/internal/usecase/health"
)

func runServe(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	// One payload cache shared by every resource
	cache := payload.New(metrics.PayloadCacheTotal)
	opts := []resource.Option{
		resource.WithSearchCount(cfg.Index.SearchCount),
		resource.WithSearchTimeout(cfg.Index.SearchTimeout()),
		resource.WithPayloadCache(cache),
		resource.WithMetrics(metrics.SearchRequestsTotal, metrics.SearchDuration),
		resource.WithLogger(logger),
	}

	indexes := make(map[string]cataloguc.Index)
	pingers := make(map[string]healthuc.Pinger)
	for _, name := range []string{resource.Cards, resource.Sets} {
		res, err := resource.Open(cfg.Index.Dir, name, opts...)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer func() { _ = res.Close() }()

		n, err := res.Count(ctx)
		if err != nil {
			return fmt.Errorf("count index: %w", err)
		}
		metrics.IndexedDocuments.WithLabelValues(name).Set(float64(n))
		indexes[name] = res
		pingers[name] = res
	}

	values := make(map[string][]string, len(stringset.Names))
	for _, name := range stringset.Names {
		set, err := stringset.Load(cfg.Index.Dir, name)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("String set not built", zap.String("set", name))
			continue
		}
		if err != nil {
			return fmt.Errorf("load string sets: %w", err)
		}
		values[name] = set.Values()
	}

	catalogOpts := []cataloguc.Option{
		cataloguc.WithImageURLBase(cfg.Images.URLBase),
		cataloguc.WithLogger(logger),
	}

	// Optional shared page cache
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled() {
		store, err := redis.NewStore(redis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("create page cache store: %w", err)
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("page cache not ready: %w", err)
		}
		logger.Info("Connected to page cache", zap.Strings("addrs", cfg.Cache.Addrs))

		pages := pagecache.New(store, cfg.Cache.TTL(), metrics.PageCacheTotal, logger)
		catalogOpts = append(catalogOpts, cataloguc.WithPageCache(pages))
		cachePinger = store
	}

	catalog, err := cataloguc.New(indexes, values, catalogOpts...)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	health := healthuc.New(pingers, cachePinger)

	server := chiTransport.NewServer(catalog, health, cfg.Index.MaxPageSize, logger)
	r := chiTransport.NewRouter(server, cfg.HTTP.CORSAllowOrigin, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
