package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dshills/docrag/internal/config"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/internal/mcp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("docrag MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", index.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", index.DriverName)
		os.Exit(0)
	}

	// stdout carries the MCP protocol; all logging goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	// API keys may live in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		logger.Error("loading configuration failed", "error", err)
		os.Exit(1)
	}

	logger.Info("docrag MCP server starting",
		"version", version,
		"config", cfgPath,
		"index_dir", cfg.IndexDir,
		"build_mode", index.BuildMode,
		"driver", index.DriverName)

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		logger.Error("creating MCP server failed", "error", err)
		os.Exit(1)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// loadConfig resolves the configuration: DOCRAG_CONFIG wins, otherwise
// the default lookup (./docrag.yaml, then the per-user config path).
// DOCRAG_INDEX_DIR overrides the index location either way.
func loadConfig() (*config.Config, string, error) {
	var cfg *config.Config
	var path string
	var err error

	if explicit := os.Getenv("DOCRAG_CONFIG"); explicit != "" {
		cfg, err = config.Load(explicit)
		path = explicit
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return nil, "", err
	}

	if dir := os.Getenv("DOCRAG_INDEX_DIR"); dir != "" {
		cfg.IndexDir = dir
	}
	return cfg, path, nil
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("DOCRAG_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
