package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/quoted/internal/config"
	httpserver "github.com/fyrsmithlabs/quoted/internal/http"
	"github.com/fyrsmithlabs/quoted/internal/logging"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quote generation HTTP server",
	Long: `Start the HTTP server exposing POST /v1/quotes, GET /healthz and
GET /metrics.

Examples:
  # Start with defaults (127.0.0.1:8420, in-memory history)
  quoted serve

  # Start with a config file
  quoted serve --config ~/.config/quoted/config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	generator, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	server, err := httpserver.NewServer(generator, logger.Named("http"), httpserver.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctx := cmd.Context()
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info(ctx, "signal received, shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
