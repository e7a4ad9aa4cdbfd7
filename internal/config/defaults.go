package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL      = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultWSURL        = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	DefaultAPITimeout   = 30 * time.Second
	DefaultSeriesTicker = "KXBTCD"
	DefaultTopStrikes   = 5
	DefaultLookback     = 15 * time.Minute
	DefaultPageSize     = 200
	DefaultTradeLimit   = 1000
	DefaultPageDelay    = 500 * time.Millisecond
	DefaultMarketDelay  = 200 * time.Millisecond
	DefaultFormat       = "csv"
	DefaultOutputPath   = "bitcoin_hourly_analysis.csv"
	DefaultDBPort       = 5432
	DefaultDBSSLMode    = "prefer"
	DefaultMaxConns     = 4
	DefaultMinConns     = 1
)

// Default returns a fully defaulted configuration; used when no config file
// is present and everything comes from flags and the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.Extract.SeriesTicker == "" {
		c.Extract.SeriesTicker = DefaultSeriesTicker
	}
	if c.Extract.TopStrikes == 0 {
		c.Extract.TopStrikes = DefaultTopStrikes
	}
	if c.Extract.Lookback == 0 {
		c.Extract.Lookback = DefaultLookback
	}
	if c.Extract.PageSize == 0 {
		c.Extract.PageSize = DefaultPageSize
	}
	if c.Extract.TradeLimit == 0 {
		c.Extract.TradeLimit = DefaultTradeLimit
	}
	if c.Extract.PageDelay == 0 {
		c.Extract.PageDelay = DefaultPageDelay
	}
	if c.Extract.MarketDelay == 0 {
		c.Extract.MarketDelay = DefaultMarketDelay
	}

	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	applyDBDefaults(&c.Output.Postgres)
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
