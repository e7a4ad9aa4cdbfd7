package model

import (
	"time"

	"github.com/google/uuid"
)

// MarketStatusSettled is the API status of a market that has resolved.
const MarketStatusSettled = "settled"

// Market is a single binary contract at one strike within an hourly event.
// Built once from an API response during discovery, read-only afterwards.
type Market struct {
	Ticker      string     // Full market ticker (e.g., "KXBTCD-25NOV1417-T100249.99")
	EventTicker string     // Parent event ticker, derived from Ticker
	Strike      float64    // Strike threshold parsed from the ticker, 0 if unparseable
	CloseTime   time.Time  // Settlement instant
	Status      string     // API market status
	Volume      int64      // Total traded volume
	LastPrice   *float64   // Last traded YES price as probability, nil if never traded
}

// Trade is a single execution pulled from the trade history endpoint.
// Retained only for the duration of one window extraction.
type Trade struct {
	ID            uuid.UUID // Kalshi trade ID; zero UUID if the API value was malformed
	Time          time.Time // Execution timestamp
	YesPriceCents int       // YES-side price in cents (0-100)
	Count         int       // Number of contracts
}

// Prob returns the trade's YES price as a probability in [0,1].
// Exact for every integer cent value in 0..100.
func (t Trade) Prob() float64 {
	return CentsToProb(t.YesPriceCents)
}

// CentsToProb converts an integer cent price (0-100) to a probability.
func CentsToProb(cents int) float64 {
	return float64(cents) / 100
}

// PriceSnapshot pairs a fixed offset before close with the price of the
// nearest trade, or nil when no trade was available in the window.
type PriceSnapshot struct {
	Offset time.Duration // Distance before close (e.g., 15m)
	Price  *float64      // Probability in [0,1], nil if absent
}

// OutputRecord is one output row per processed market.
type OutputRecord struct {
	Ticker            string
	EventTicker       string
	CloseTime         time.Time
	Result            string // "yes" or "no"
	ResultBinary      int    // 1 if Result == "yes", else 0
	Volume            int64
	LastPrice         *float64 // nil if absent
	Price15Min        *float64
	Price10Min        *float64
	Price5Min         *float64
	Price1Min         *float64
	SnapshotsInWindow int // trades observed in the extraction window
}
