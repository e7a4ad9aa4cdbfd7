package discovery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/api"
	"github.com/rickgao/kalshi-analysis/internal/model"
)

// Config holds fetcher settings.
type Config struct {
	PageSize         int           // Markets per page request (API max 1000)
	PageDelay        time.Duration // Fixed delay between page requests
	MaxCursorRepeats int           // Pages tolerated with an unchanged cursor before aborting
}

// DefaultConfig returns the settings used for hourly Bitcoin backfills.
func DefaultConfig() Config {
	return Config{
		PageSize:         200,
		PageDelay:        500 * time.Millisecond,
		MaxCursorRepeats: 3,
	}
}

// Fetcher discovers settled markets through the paginated /markets endpoint.
type Fetcher struct {
	cfg    Config
	client *api.Client
	logger *slog.Logger
}

// New creates a Fetcher. Zero config fields fall back to DefaultConfig.
func New(cfg Config, client *api.Client, logger *slog.Logger) *Fetcher {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = def.PageDelay
	}
	if cfg.MaxCursorRepeats <= 0 {
		cfg.MaxCursorRepeats = def.MaxCursorRepeats
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{cfg: cfg, client: client, logger: logger}
}

// ListSettledMarkets returns all settled markets for the series whose close
// time falls in [minClose, maxClose]. Zero bounds are passed through as
// unset.
//
// Pagination ends when the API returns no cursor or an empty page. A cursor
// that repeats without making progress is tolerated MaxCursorRepeats times
// and then aborted, so a misbehaving server cannot loop the fetch forever.
// On a request failure or context cancellation the markets accumulated so
// far are returned.
func (f *Fetcher) ListSettledMarkets(ctx context.Context, series string, minClose, maxClose time.Time) []model.Market {
	opts := api.GetMarketsOptions{
		SeriesTicker: series,
		Status:       model.MarketStatusSettled,
		Limit:        f.cfg.PageSize,
	}
	if !minClose.IsZero() {
		opts.MinCloseTS = minClose.Unix()
	}
	if !maxClose.IsZero() {
		opts.MaxCloseTS = maxClose.Unix()
	}

	prefix := series + "-"

	var markets []model.Market
	var prevCursor string
	repeats := 0

	for page := 1; ; page++ {
		resp, err := f.client.GetMarkets(ctx, opts)
		if err != nil {
			f.logger.Error("market page fetch failed, returning partial result",
				"page", page,
				"fetched", len(markets),
				"error", err,
			)
			return markets
		}

		added := 0
		for i := range resp.Markets {
			// The series filter is also applied server-side; re-check the
			// prefix so a loose response cannot leak foreign tickers in.
			if !strings.HasPrefix(resp.Markets[i].Ticker, prefix) {
				continue
			}
			markets = append(markets, resp.Markets[i].ToModel())
			added++
		}

		f.logger.Debug("fetched market page",
			"page", page,
			"markets", added,
			"total", len(markets),
		)

		if resp.Cursor == "" || len(resp.Markets) == 0 {
			break
		}
		if resp.Cursor == prevCursor {
			repeats++
			if repeats >= f.cfg.MaxCursorRepeats {
				f.logger.Warn("cursor repeated without progress, stopping pagination",
					"cursor", resp.Cursor,
					"repeats", repeats,
				)
				break
			}
		} else {
			repeats = 0
		}
		prevCursor = resp.Cursor
		opts.Cursor = resp.Cursor

		select {
		case <-ctx.Done():
			f.logger.Info("discovery cancelled, returning partial result", "fetched", len(markets))
			return markets
		case <-time.After(f.cfg.PageDelay):
		}
	}

	f.logger.Info("discovery complete", "series", series, "markets", len(markets))
	return markets
}
