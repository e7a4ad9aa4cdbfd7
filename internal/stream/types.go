package stream

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/auth"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Command is a WebSocket command to send to the server.
type Command struct {
	ID     int64       `json:"id"`
	Cmd    string      `json:"cmd"`
	Params interface{} `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

// serverMessage is the envelope every server message arrives in. Command
// responses carry a Type of "subscribed" or "error"; data messages carry
// the channel name.
type serverMessage struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	SID  int64           `json:"sid"`
	Msg  json.RawMessage `json:"msg"`
}

// tradeMsg is the message content for a "trade" data message.
type tradeMsg struct {
	MarketTicker string `json:"market_ticker"`
	TradeID      string `json:"trade_id"`
	YesPrice     int    `json:"yes_price"`
	Count        int    `json:"count"`
	TakerSide    string `json:"taker_side"`
	Timestamp    int64  `json:"ts"`
}

// errorMsg is the message content for an "error" response.
type errorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TradeUpdate is a single trade from the live feed.
type TradeUpdate struct {
	Ticker        string
	TradeID       string
	YesPriceCents int
	Count         int
	TakerSide     string
	Time          time.Time // server timestamp
	ReceivedAt    time.Time // local timestamp when ReadMessage() returned
}

// Config configures a trade stream client.
type Config struct {
	URL          string            // WebSocket URL (e.g., wss://api.elections.kalshi.com/trade-api/ws/v2)
	Credentials  *auth.Credentials // nil = unauthenticated handshake
	PingTimeout  time.Duration     // Max time without ping before considering connection stale
	WriteTimeout time.Duration     // Write deadline for sends
	BufferSize   int               // Trade channel buffer size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}
