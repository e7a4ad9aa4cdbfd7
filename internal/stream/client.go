package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a single WebSocket connection streaming live trades.
type Client struct {
	cfg    Config
	logger *slog.Logger

	conn *websocket.Conn

	trades chan TradeUpdate
	errors chan error
	done   chan struct{}

	cmdID atomic.Int64

	// Write serialization
	writeMu sync.Mutex

	// State
	mu         sync.RWMutex
	connected  bool
	lastPingAt time.Time
	closed     bool
}

// NewClient creates a new trade stream client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultConfig().PingTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		trades: make(chan TradeUpdate, cfg.BufferSize),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.cfg.Credentials != nil {
		signed, err := c.cfg.Credentials.SignWebSocket()
		if err != nil {
			return err
		}
		for k, v := range signed {
			header.Set(k, v)
		}
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.lastPingAt = time.Now()
	c.mu.Unlock()

	// Server sends ping, we respond with pong
	conn.SetPingHandler(func(data string) error {
		c.mu.Lock()
		c.lastPingAt = time.Now()
		c.mu.Unlock()

		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
	})

	conn.SetPongHandler(func(data string) error {
		c.mu.Lock()
		c.lastPingAt = time.Now()
		c.mu.Unlock()
		return nil
	})

	go c.readLoop()
	go c.heartbeatLoop()

	c.logger.Debug("websocket connected", "url", c.cfg.URL)

	return nil
}

// Subscribe requests trade updates for the given market tickers.
func (c *Client) Subscribe(tickers []string) error {
	cmd := Command{
		ID:  c.cmdID.Add(1),
		Cmd: "subscribe",
		Params: SubscribeParams{
			Channels:      []string{"trade"},
			MarketTickers: tickers,
		},
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	return c.send(data)
}

// Close gracefully closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	c.mu.Unlock()

	close(c.done)

	if c.conn != nil {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return c.conn.Close()
	}

	return nil
}

// Trades returns the trade updates channel.
func (c *Client) Trades() <-chan TradeUpdate {
	return c.trades
}

// Errors returns the errors channel.
func (c *Client) Errors() <-chan error {
	return c.errors
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) send(data []byte) error {
	c.mu.RLock()
	if !c.connected {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	c.mu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads messages from the WebSocket and forwards trades.
func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			// Ignore errors after Close() is called
			select {
			case <-c.done:
				return
			default:
				select {
				case c.errors <- err:
				default:
				}
				return
			}
		}

		c.handleMessage(data, receivedAt)
	}
}

func (c *Client) handleMessage(data []byte, receivedAt time.Time) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn("unparseable message", "error", err)
		return
	}

	switch msg.Type {
	case "trade":
		var tm tradeMsg
		if err := json.Unmarshal(msg.Msg, &tm); err != nil {
			c.logger.Warn("unparseable trade", "error", err)
			return
		}

		update := TradeUpdate{
			Ticker:        tm.MarketTicker,
			TradeID:       tm.TradeID,
			YesPriceCents: tm.YesPrice,
			Count:         tm.Count,
			TakerSide:     tm.TakerSide,
			Time:          time.Unix(tm.Timestamp, 0).UTC(),
			ReceivedAt:    receivedAt,
		}

		select {
		case c.trades <- update:
		case <-c.done:
		default:
			c.logger.Warn("trade buffer full, dropping trade", "ticker", update.Ticker)
		}

	case "subscribed":
		c.logger.Debug("subscription confirmed", "id", msg.ID, "sid", msg.SID)

	case "error":
		var em errorMsg
		if err := json.Unmarshal(msg.Msg, &em); err == nil {
			c.logger.Warn("server error", "code", em.Code, "message", em.Message)
		} else {
			c.logger.Warn("server error", "raw", string(msg.Msg))
		}

	default:
		c.logger.Debug("ignoring message", "type", msg.Type)
	}
}

// heartbeatLoop monitors for stale connections.
func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn != nil {
				deadline := time.Now().Add(c.cfg.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
					c.logger.Debug("failed to send ping", "error", err)
				}
			}

			c.mu.RLock()
			lastPing := c.lastPingAt
			c.mu.RUnlock()

			if time.Since(lastPing) > c.cfg.PingTimeout {
				c.logger.Warn("no ping received, connection stale",
					"last_ping", lastPing,
					"timeout", c.cfg.PingTimeout,
				)
				select {
				case c.errors <- ErrStaleConnection:
				default:
				}
				return
			}
		}
	}
}
