package api

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// SingleMarketResponse from GET /markets/{ticker}
type SingleMarketResponse struct {
	Market APIMarket `json:"market"`
}

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Status      string `json:"status"`
	Result      string `json:"result"`

	// Prices in cents (0-100)
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	LastPrice int `json:"last_price"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`

	SettlementValue *int `json:"settlement_value"`
}

// TradesResponse from GET /markets/trades
type TradesResponse struct {
	Trades []APITrade `json:"trades"`
	Cursor string     `json:"cursor"`
}

// APITrade represents a single executed trade from the Kalshi API.
type APITrade struct {
	TradeID     string `json:"trade_id"`
	Ticker      string `json:"ticker"`
	CreatedTime string `json:"created_time"` // ISO 8601
	YesPrice    int    `json:"yes_price"`    // cents
	NoPrice     int    `json:"no_price"`     // cents
	Count       int    `json:"count"`
	TakerSide   string `json:"taker_side"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	SeriesTicker string
	Status       string
	MinCloseTS   int64 // unix seconds, inclusive; 0 = unset
	MaxCloseTS   int64 // unix seconds, inclusive; 0 = unset
}

// GetTradesOptions configures a GetTrades request.
type GetTradesOptions struct {
	Ticker string
	Limit  int
	Cursor string
	MinTS  int64 // unix seconds, inclusive; 0 = unset
	MaxTS  int64 // unix seconds, inclusive; 0 = unset
}
