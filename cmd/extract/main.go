// extract backfills settlement pricing for hourly Bitcoin markets.
// Usage: go run ./cmd/extract --config configs/extract.local.yaml --days 7
//
// Optional environment variables (also read from a .env file):
//
//	KALSHI_API_KEY - API key, referenced as ${KALSHI_API_KEY} in the config
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/api"
	"github.com/rickgao/kalshi-analysis/internal/config"
	"github.com/rickgao/kalshi-analysis/internal/database"
	"github.com/rickgao/kalshi-analysis/internal/discovery"
	"github.com/rickgao/kalshi-analysis/internal/pipeline"
	"github.com/rickgao/kalshi-analysis/internal/resolve"
	"github.com/rickgao/kalshi-analysis/internal/sink"
	"github.com/rickgao/kalshi-analysis/internal/version"
	"github.com/rickgao/kalshi-analysis/internal/window"
)

func main() {
	configPath := flag.String("config", "configs/extract.example.yaml", "path to config file")
	series := flag.String("series", "", "series ticker to extract (overrides config)")
	days := flag.Int("days", 7, "how many days back to extract")
	minCloseStr := flag.String("min-close", "", "earliest close time, RFC3339 (overrides --days)")
	maxCloseStr := flag.String("max-close", "", "latest close time, RFC3339 (default now)")
	output := flag.String("output", "", "output file path (overrides config)")
	format := flag.String("format", "", "output format: csv, parquet, or postgres (overrides config)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting extract",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration; flags alone are enough when no file exists.
	var cfg *config.Config
	if _, err := os.Stat(*configPath); err == nil {
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("config file not found, using defaults", "path", *configPath)
		cfg = config.Default()
		if cfg.API.APIKey == "" {
			cfg.API.APIKey = os.Getenv("KALSHI_API_KEY")
		}
	}

	if *series != "" {
		cfg.Extract.SeriesTicker = *series
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	if *format != "" {
		cfg.Output.Format = *format
	}

	minClose, maxClose, err := closeRange(*minCloseStr, *maxCloseStr, *days)
	if err != nil {
		logger.Error("invalid close range", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"series", cfg.Extract.SeriesTicker,
		"min_close", minClose.Format(time.RFC3339),
		"max_close", maxClose.Format(time.RFC3339),
		"format", cfg.Output.Format,
	)

	// Create context with cancellation; Ctrl+C stops discovery but
	// completed records are still flushed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create API client
	apiClient := api.NewClient(
		cfg.API.RestURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)

	// Select output sink
	var out pipeline.Sink
	switch cfg.Output.Format {
	case "postgres":
		logger.Info("connecting to database",
			"host", cfg.Output.Postgres.Host,
			"port", cfg.Output.Postgres.Port,
			"database", cfg.Output.Postgres.Name,
		)
		pool, err := database.Connect(ctx, cfg.Output.Postgres)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		out = sink.NewPostgresSink(pool, cfg.Output.Table, logger)
	default:
		fileSink, err := sink.NewFileSink(cfg.Output.Format, cfg.Output.Path)
		if err != nil {
			logger.Error("failed to create output sink", "error", err)
			os.Exit(1)
		}
		out = fileSink
	}

	// Assemble the pipeline
	fetcher := discovery.New(discovery.Config{
		PageSize:  cfg.Extract.PageSize,
		PageDelay: cfg.Extract.PageDelay,
	}, apiClient, logger)

	extractor := window.New(window.Config{
		Lookback:   cfg.Extract.Lookback,
		TradeLimit: cfg.Extract.TradeLimit,
		Delay:      cfg.Extract.MarketDelay,
	}, apiClient, logger)

	resolver := resolve.New(apiClient, logger)

	pipe := pipeline.New(pipeline.Config{
		TopStrikes:  cfg.Extract.TopStrikes,
		MarketDelay: cfg.Extract.MarketDelay,
	}, fetcher, resolver, extractor, logger)

	n, err := pipe.Run(ctx, cfg.Extract.SeriesTicker, minClose, maxClose, out)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	logger.Info("extraction complete",
		"records", n,
		"interrupted", ctx.Err() != nil,
	)
}

// closeRange resolves the close-time bounds from flags. An explicit
// --min-close wins over --days.
func closeRange(minStr, maxStr string, days int) (time.Time, time.Time, error) {
	maxClose := time.Now().UTC()
	if maxStr != "" {
		t, err := time.Parse(time.RFC3339, maxStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --max-close: %w", err)
		}
		maxClose = t
	}

	var minClose time.Time
	if minStr != "" {
		t, err := time.Parse(time.RFC3339, minStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --min-close: %w", err)
		}
		minClose = t
	} else {
		if days <= 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("--days must be positive, got %d", days)
		}
		minClose = maxClose.AddDate(0, 0, -days)
	}

	if !minClose.Before(maxClose) {
		return time.Time{}, time.Time{}, fmt.Errorf("min close %s is not before max close %s",
			minClose.Format(time.RFC3339), maxClose.Format(time.RFC3339))
	}

	return minClose, maxClose, nil
}
