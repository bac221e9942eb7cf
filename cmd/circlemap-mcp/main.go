// Package main provides the entry point for the circlemap MCP server over
// stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/circlemap/internal/config"
	"github.com/raphaelgruber/circlemap/internal/server"
	"github.com/raphaelgruber/circlemap/internal/service"
	"github.com/raphaelgruber/circlemap/internal/tools"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "config file")
	withDB := flag.Bool("db", false, "persist overlays and contexts in SurrealDB")
	withLLM := flag.Bool("llm", false, "enable enrichment")
	flag.Parse()

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := cfg.Logger()
	defer func() { _ = cleanup() }()

	logger.Info("circlemap-mcp starting",
		"version", version,
		"database", *withDB,
		"enrichment", *withLLM,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	svc, err := service.Open(ctx, cfg, logger, service.OpenOptions{
		Database:   *withDB,
		Enrichment: *withLLM,
	})
	if err != nil {
		logger.Error("failed to open services", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing services")
		_ = svc.Close(context.Background())
	}()

	srv := server.New(version, &tools.Dependencies{Services: svc, Logger: logger}, logger)
	logger.Info("server ready, awaiting connections")

	// blocks until disconnect or context cancelled
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
