// Command linkscan-api serves the scan engine over HTTP with on-disk
// persistence of finished scans.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"linkscan/internal/api"
	"linkscan/internal/config"
	"linkscan/internal/scanstore"
)

var cli struct {
	Config string `placeholder:"FILE" help:"Path to the YAML server configuration. Built-in defaults apply when omitted."`
	Addr   string `help:"Listen address override."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("linkscan-api"),
		kong.Description("HTTP API for running link scans and fetching their reports."),
		kong.UsageOnError(),
	)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "linkscan-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cli.Addr != "" {
		cfg.Server.Addr = cli.Addr
	}

	logger := buildLogger(cfg.Logging)

	store, err := scanstore.Open(cfg.Server.StorePath)
	if err != nil {
		return fmt.Errorf("open scan store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(api.Options{
		Logger:             logger,
		Store:              store,
		DownloadDir:        cfg.Server.DownloadDir,
		ScanDefaults:       cfg.Scan,
		MaxConcurrentScans: cfg.Server.MaxConcurrentScans,
		BaseContext:        ctx,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	}()

	logger.Info("api server listening", "addr", cfg.Server.Addr,
		"max_concurrent_scans", cfg.Server.MaxConcurrentScans,
		"store", cfg.Server.StorePath)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("api server stopped")
	return nil
}

func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
