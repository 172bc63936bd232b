package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-opsgraph/pkg/api"
	"github.com/dd0wney/cluso-opsgraph/pkg/config"
	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	flag.Parse()

	// Structured logging to stdout so the platform can collect it
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	slogger.Info("opsgraph server starting",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
	)

	var store *storage.GraphStore
	if cfg.DataDir != "" {
		store, err = storage.NewPersistentGraphStore(cfg.DataDir, logger)
		if err != nil {
			slogger.Error("failed to open graph store", "error", err)
			os.Exit(1)
		}
	} else {
		store = storage.NewGraphStore(logger)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err == nil {
		slogger.Info("graph store ready",
			"nodes", stats.Nodes,
			"edges", stats.Edges,
			"generation", stats.GenerationID,
		)
	}

	server := api.NewServer(store, cfg, nil, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slogger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
