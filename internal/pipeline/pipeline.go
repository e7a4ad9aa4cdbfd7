package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/discovery"
	"github.com/rickgao/kalshi-analysis/internal/grouping"
	"github.com/rickgao/kalshi-analysis/internal/model"
	"github.com/rickgao/kalshi-analysis/internal/resolve"
	"github.com/rickgao/kalshi-analysis/internal/window"
)

// Sink receives the accumulated records in one pass at the end of a run.
type Sink interface {
	Write(ctx context.Context, records []model.OutputRecord) error
}

// Config holds orchestration settings.
type Config struct {
	TopStrikes  int           // Strikes kept per event (default 5)
	MarketDelay time.Duration // Fixed delay between markets
}

// DefaultConfig returns the settings used for hourly Bitcoin backfills.
func DefaultConfig() Config {
	return Config{
		TopStrikes:  grouping.DefaultTopStrikes,
		MarketDelay: 200 * time.Millisecond,
	}
}

// Pipeline orchestrates one extraction run.
type Pipeline struct {
	cfg       Config
	fetcher   *discovery.Fetcher
	resolver  *resolve.Resolver
	extractor *window.Extractor
	logger    *slog.Logger
}

// New creates a Pipeline. Zero config fields fall back to DefaultConfig.
func New(cfg Config, fetcher *discovery.Fetcher, resolver *resolve.Resolver, extractor *window.Extractor, logger *slog.Logger) *Pipeline {
	def := DefaultConfig()
	if cfg.TopStrikes <= 0 {
		cfg.TopStrikes = def.TopStrikes
	}
	if cfg.MarketDelay <= 0 {
		cfg.MarketDelay = def.MarketDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		resolver:  resolver,
		extractor: extractor,
		logger:    logger,
	}
}

// Run executes the full pipeline for one series and close-time range and
// returns the number of records written to the sink.
//
// Markets are processed grouped by event (events in lexicographic order,
// strikes in volume rank order), so output order is deterministic regardless
// of API return order. The accumulated records are flushed exactly once,
// even when zero markets survived or the context was cancelled mid-run; the
// flush itself runs detached from the cancelled context.
func (p *Pipeline) Run(ctx context.Context, series string, minClose, maxClose time.Time, sink Sink) (int, error) {
	p.logger.Info("starting extraction run",
		"series", series,
		"min_close", minClose,
		"max_close", maxClose,
	)

	markets := p.fetcher.ListSettledMarkets(ctx, series, minClose, maxClose)
	p.logger.Info("discovered settled markets", "count", len(markets))

	groups := grouping.SelectTop(markets, model.EventTicker, p.cfg.TopStrikes)
	p.logger.Info("selected top strikes", "events", len(groups))

	var records []model.OutputRecord

processing:
	for _, eventID := range grouping.EventIDs(groups) {
		p.logger.Info("processing event", "event", eventID, "strikes", len(groups[eventID]))

		for _, m := range groups[eventID] {
			// Cancellation is observed only between markets, so an appended
			// record is always complete.
			if ctx.Err() != nil {
				p.logger.Warn("run cancelled, flushing collected records", "collected", len(records))
				break processing
			}

			rec, ok := p.processMarket(ctx, eventID, m)
			if !ok {
				continue
			}
			records = append(records, rec)

			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.MarketDelay):
			}
		}
	}

	// The flush must survive the cancellation that triggered it.
	flushCtx := context.WithoutCancel(ctx)
	if err := sink.Write(flushCtx, records); err != nil {
		return 0, fmt.Errorf("flush records: %w", err)
	}

	p.logger.Info("extraction run complete", "records", len(records))
	return len(records), nil
}

// processMarket builds the output record for one market. The second return
// is false when the market is skipped; a skip never aborts the run.
func (p *Pipeline) processMarket(ctx context.Context, eventID string, m model.Market) (model.OutputRecord, bool) {
	outcome, lastPrice := p.resolver.Resolve(ctx, m.Ticker)
	if outcome == resolve.OutcomeUnknown {
		p.logger.Warn("skipping market without settlement result", "ticker", m.Ticker)
		return model.OutputRecord{}, false
	}

	w, err := p.extractor.Extract(ctx, m)
	if err != nil {
		p.logger.Warn("skipping market, window extraction failed",
			"ticker", m.Ticker,
			"error", err,
		)
		return model.OutputRecord{}, false
	}

	p.logger.Debug("processed market",
		"ticker", m.Ticker,
		"result", outcome,
		"trades_in_window", w.TradeCount,
	)

	return model.OutputRecord{
		Ticker:            m.Ticker,
		EventTicker:       eventID,
		CloseTime:         m.CloseTime,
		Result:            string(outcome),
		ResultBinary:      outcome.Binary(),
		Volume:            m.Volume,
		LastPrice:         lastPrice,
		Price15Min:        w.PriceAt(15 * time.Minute),
		Price10Min:        w.PriceAt(10 * time.Minute),
		Price5Min:         w.PriceAt(5 * time.Minute),
		Price1Min:         w.PriceAt(1 * time.Minute),
		SnapshotsInWindow: w.TradeCount,
	}, true
}
