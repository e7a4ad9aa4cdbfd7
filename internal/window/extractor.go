package window

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/api"
	"github.com/rickgao/kalshi-analysis/internal/model"
)

// SnapshotOffsets are the fixed sampling points before close, in the order
// they appear in the output schema.
var SnapshotOffsets = []time.Duration{
	15 * time.Minute,
	10 * time.Minute,
	5 * time.Minute,
	1 * time.Minute,
}

// ErrNoCloseTime is returned for markets whose close time is unknown; the
// window cannot be computed without it.
var ErrNoCloseTime = errors.New("market has no close time")

// Config holds extractor settings.
type Config struct {
	Lookback   time.Duration // Window length before close (default 15m)
	TradeLimit int           // Max trades per request (API cap 1000)
	Delay      time.Duration // Fixed delay before each trade request
}

// DefaultConfig returns the settings matching the 15-minute analysis window.
func DefaultConfig() Config {
	return Config{
		Lookback:   15 * time.Minute,
		TradeLimit: 1000,
		Delay:      200 * time.Millisecond,
	}
}

// Window is the result of one extraction: the four fixed-offset snapshots
// and the number of trades observed inside the window.
type Window struct {
	Snapshots  []model.PriceSnapshot
	TradeCount int
}

// PriceAt returns the snapshot price for the given offset, nil if absent or
// the offset is not sampled.
func (w Window) PriceAt(offset time.Duration) *float64 {
	for _, s := range w.Snapshots {
		if s.Offset == offset {
			return s.Price
		}
	}
	return nil
}

// Extractor samples pre-settlement prices from the trade history endpoint.
type Extractor struct {
	cfg    Config
	client *api.Client
	logger *slog.Logger
}

// New creates an Extractor. Zero config fields fall back to DefaultConfig.
func New(cfg Config, client *api.Client, logger *slog.Logger) *Extractor {
	def := DefaultConfig()
	if cfg.Lookback <= 0 {
		cfg.Lookback = def.Lookback
	}
	if cfg.TradeLimit <= 0 {
		cfg.TradeLimit = def.TradeLimit
	}
	if cfg.Delay <= 0 {
		cfg.Delay = def.Delay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, client: client, logger: logger}
}

// Extract retrieves the market's trades in [close−Lookback, close] and
// produces one snapshot per fixed offset.
//
// A failed trade request degrades to an empty window rather than an error:
// the record is still worth emitting with the settlement result alone. If
// the window holds more trades than TradeLimit the retrieval is truncated
// at the cap and TradeCount reports what was actually retrieved.
func (e *Extractor) Extract(ctx context.Context, m model.Market) (Window, error) {
	if m.CloseTime.IsZero() {
		return Window{}, ErrNoCloseTime
	}

	select {
	case <-ctx.Done():
		return Window{}, ctx.Err()
	case <-time.After(e.cfg.Delay):
	}

	windowStart := m.CloseTime.Add(-e.cfg.Lookback)

	resp, err := e.client.GetTrades(ctx, api.GetTradesOptions{
		Ticker: m.Ticker,
		Limit:  e.cfg.TradeLimit,
		MinTS:  windowStart.Unix(),
		MaxTS:  m.CloseTime.Unix(),
	})
	if err != nil {
		e.logger.Warn("trade fetch failed, emitting empty window",
			"ticker", m.Ticker,
			"error", err,
		)
		return emptyWindow(), nil
	}

	trades := make([]model.Trade, 0, len(resp.Trades))
	for i := range resp.Trades {
		tr := resp.Trades[i].ToModel()
		if tr.Time.IsZero() {
			continue
		}
		trades = append(trades, tr)
	}

	w := Window{TradeCount: len(trades)}
	for _, offset := range SnapshotOffsets {
		target := m.CloseTime.Add(-offset)
		w.Snapshots = append(w.Snapshots, model.PriceSnapshot{
			Offset: offset,
			Price:  nearestPrice(trades, target),
		})
	}

	return w, nil
}

// nearestPrice returns the price of the trade closest in absolute time to
// target, nil when no trades are available. Equidistant trades resolve to
// the earlier one regardless of their order in the slice.
func nearestPrice(trades []model.Trade, target time.Time) *float64 {
	if len(trades) == 0 {
		return nil
	}

	best := trades[0]
	bestDist := absDuration(trades[0].Time.Sub(target))

	for _, tr := range trades[1:] {
		d := absDuration(tr.Time.Sub(target))
		if d < bestDist || (d == bestDist && tr.Time.Before(best.Time)) {
			best = tr
			bestDist = d
		}
	}

	p := best.Prob()
	return &p
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func emptyWindow() Window {
	w := Window{}
	for _, offset := range SnapshotOffsets {
		w.Snapshots = append(w.Snapshots, model.PriceSnapshot{Offset: offset})
	}
	return w
}
