// Package resolve fetches the realized settlement outcome for a market.
package resolve

import (
	"context"
	"log/slog"

	"github.com/rickgao/kalshi-analysis/internal/api"
	"github.com/rickgao/kalshi-analysis/internal/model"
)

// Outcome is a market's realized settlement result.
type Outcome string

const (
	OutcomeYes     Outcome = "yes"
	OutcomeNo      Outcome = "no"
	OutcomeUnknown Outcome = "unknown"
)

// Binary returns the 0/1 encoding of the outcome: 1 for yes, 0 otherwise.
func (o Outcome) Binary() int {
	if o == OutcomeYes {
		return 1
	}
	return 0
}

// Resolver fetches per-market settlement results.
type Resolver struct {
	client *api.Client
	logger *slog.Logger
}

// New creates a Resolver.
func New(client *api.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve returns the market's settlement outcome and its final observed
// price as a probability.
//
// Any failure — transport error, non-success status, or a response without
// a result field — yields OutcomeUnknown and a nil price. The caller decides
// whether unknown markets are recorded or skipped; Resolve itself never
// fails a run.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (Outcome, *float64) {
	m, err := r.client.GetMarket(ctx, ticker)
	if err != nil {
		r.logger.Warn("result fetch failed", "ticker", ticker, "error", err)
		return OutcomeUnknown, nil
	}

	var lastPrice *float64
	if m.LastPrice > 0 {
		p := model.CentsToProb(m.LastPrice)
		lastPrice = &p
	}

	switch m.Result {
	case "yes":
		return OutcomeYes, lastPrice
	case "no":
		return OutcomeNo, lastPrice
	default:
		return OutcomeUnknown, lastPrice
	}
}
