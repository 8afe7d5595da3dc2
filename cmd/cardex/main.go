// Command cardex builds the card catalog index and serves it over HTTP.
//
// Usage:
//
//	cardex build   rebuild the index from the raw data directory
//	cardex serve   serve the built index (default)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/config"
	logpkg "github.com/kailas-cloud/cardex/internal/logger"
	"github.com/kailas-cloud/cardex/internal/version"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cardex",
		zap.String("command", cmd),
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.String("index_dir", cfg.Index.Dir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "build":
		err = runBuild(ctx, cfg, logger)
	case "serve":
		err = runServe(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unknown command %q (want build or serve)", cmd)
	}
	if err != nil {
		logger.Fatal("Command failed", zap.String("command", cmd), zap.Error(err))
	}
}
