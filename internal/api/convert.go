package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-analysis/internal/model"
)

// ParseTime parses an ISO 8601 timestamp from the API.
// Returns the zero time for empty or invalid input.
func ParseTime(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Some fields omit the timezone suffix.
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t.UTC()
}

// ToModel converts an APIMarket to a model.Market.
//
// The event ticker is derived from the market ticker rather than taken from
// the response, so grouping never depends on a field the API may omit for
// settled markets. LastPrice 0 means the market never traded and maps to nil.
func (m *APIMarket) ToModel() model.Market {
	strike, _ := model.Strike(m.Ticker)

	var lastPrice *float64
	if m.LastPrice > 0 {
		p := model.CentsToProb(m.LastPrice)
		lastPrice = &p
	}

	closeTime := ParseTime(m.CloseTime)
	if closeTime.IsZero() {
		closeTime = ParseTime(m.ExpirationTime)
	}

	return model.Market{
		Ticker:      m.Ticker,
		EventTicker: model.EventTicker(m.Ticker),
		Strike:      strike,
		CloseTime:   closeTime,
		Status:      m.Status,
		Volume:      m.Volume,
		LastPrice:   lastPrice,
	}
}

// ToModel converts an APITrade to a model.Trade.
// A malformed trade ID maps to the zero UUID rather than an error.
func (t *APITrade) ToModel() model.Trade {
	id, err := uuid.Parse(t.TradeID)
	if err != nil {
		id = uuid.UUID{}
	}

	return model.Trade{
		ID:            id,
		Time:          ParseTime(t.CreatedTime),
		YesPriceCents: t.YesPrice,
		Count:         t.Count,
	}
}
