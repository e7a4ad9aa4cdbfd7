// streamwatch tails live trades for hourly Bitcoin markets to the console.
// Usage: go run ./cmd/streamwatch --config configs/extract.local.yaml --tickers KXBTCD-25NOV1417-T100249.99
//
// Required environment variables (also read from a .env file):
//
//	KALSHI_API_KEY          - API key ID from the Kalshi dashboard
//	KALSHI_PRIVATE_KEY_PATH - Path to the RSA private key PEM file
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-analysis/internal/auth"
	"github.com/rickgao/kalshi-analysis/internal/config"
	"github.com/rickgao/kalshi-analysis/internal/stream"
	"github.com/rickgao/kalshi-analysis/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/extract.example.yaml", "path to config file")
	tickers := flag.String("tickers", "", "comma-separated market tickers to watch")
	verbose := flag.Bool("verbose", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamwatch",
		"version", version.Version,
		"config", *configPath,
	)

	var cfg *config.Config
	if _, err := os.Stat(*configPath); err == nil {
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Default()
		cfg.API.APIKey = os.Getenv("KALSHI_API_KEY")
		cfg.API.PrivateKeyPath = os.Getenv("KALSHI_PRIVATE_KEY_PATH")
	}

	watched := splitTickers(*tickers)
	if len(watched) == 0 {
		logger.Error("no tickers to watch, pass --tickers")
		os.Exit(1)
	}

	creds, err := auth.Load(cfg.API.APIKey, cfg.API.PrivateKeyPath)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		logger.Info("set KALSHI_API_KEY and KALSHI_PRIVATE_KEY_PATH")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamCfg := stream.DefaultConfig()
	streamCfg.URL = cfg.API.WSURL
	streamCfg.Credentials = creds

	client := stream.NewClient(streamCfg, logger)

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Subscribe(watched); err != nil {
		logger.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}

	logger.Info("streaming started - press Ctrl+C to stop",
		"tickers", len(watched),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return printTrades(ctx, client.Trades())
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case err := <-client.Errors():
			return fmt.Errorf("stream: %w", err)
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("stream stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("streamwatch stopped")
}

func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func printTrades(ctx context.Context, trades <-chan stream.TradeUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case trade := <-trades:
			fmt.Printf("[TRADE] %s ticker=%s yes_price=%dc count=%d taker=%s\n",
				trade.Time.Format(time.RFC3339),
				trade.Ticker,
				trade.YesPriceCents,
				trade.Count,
				trade.TakerSide,
			)
		}
	}
}
