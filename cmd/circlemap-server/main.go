// Package main provides the HTTP server for circlemap: the JSON API, job
// streaming and the MCP tools over streamable HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/circlemap/internal/api"
	"github.com/raphaelgruber/circlemap/internal/config"
	"github.com/raphaelgruber/circlemap/internal/server"
	"github.com/raphaelgruber/circlemap/internal/service"
	"github.com/raphaelgruber/circlemap/internal/tools"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "config file")
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	noDB := flag.Bool("no-db", false, "keep overlays, contexts and jobs in memory only")
	noLLM := flag.Bool("no-llm", false, "disable enrichment")
	flag.Parse()

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, cleanup := cfg.Logger()
	defer func() { _ = cleanup() }()

	logger.Info("starting circlemap-server", "version", version, "port", cfg.ServerPort)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	svc, err := service.Open(ctx, cfg, logger, service.OpenOptions{
		Database:   !*noDB,
		Enrichment: !*noLLM,
		Wipe:       *wipeDB || os.Getenv("CIRCLEMAP_WIPE_DB") == "true",
	})
	cancel()
	if err != nil {
		logger.Error("failed to open services", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := svc.Close(context.Background()); err != nil {
			logger.Error("failed to close services", "error", err)
		}
	}()

	mcpServer := server.New(version, &tools.Dependencies{Services: svc, Logger: logger}, logger)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpServer.HTTPHandler())
	mux.Handle("/", api.New(svc, logger).Handler())

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long for LLM-backed tools
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s/api", cfg.ServerPort))
		logger.Info("MCP endpoint available", "url", fmt.Sprintf("http://localhost:%s/mcp", cfg.ServerPort))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
