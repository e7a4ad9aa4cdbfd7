// Package config loads and validates the extractor configuration.
package config

import "time"

// Config is the root configuration for an extraction run.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Extract ExtractConfig `yaml:"extract"`
	Output  OutputConfig  `yaml:"output"`
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL        string        `yaml:"rest_url"`
	WSURL          string        `yaml:"ws_url"`
	APIKey         string        `yaml:"api_key"`          // Bearer token / API key ID
	PrivateKeyPath string        `yaml:"private_key_path"` // RSA key PEM, only needed for the stream watcher
	Timeout        time.Duration `yaml:"timeout"`
}

// ExtractConfig holds pipeline settings.
type ExtractConfig struct {
	SeriesTicker string        `yaml:"series_ticker"`
	TopStrikes   int           `yaml:"top_strikes"`
	Lookback     time.Duration `yaml:"lookback"`
	PageSize     int           `yaml:"page_size"`
	TradeLimit   int           `yaml:"trade_limit"`
	PageDelay    time.Duration `yaml:"page_delay"`
	MarketDelay  time.Duration `yaml:"market_delay"`
}

// OutputConfig holds sink settings. Format selects the sink: "csv" or
// "parquet" write to Path, "postgres" writes to Table via Postgres.
type OutputConfig struct {
	Format   string   `yaml:"format"`
	Path     string   `yaml:"path"`
	Table    string   `yaml:"table"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
