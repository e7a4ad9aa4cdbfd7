package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}

	if c.Extract.SeriesTicker == "" {
		return errors.New("extract.series_ticker is required")
	}
	if c.Extract.TopStrikes < 1 {
		return errors.New("extract.top_strikes must be >= 1")
	}
	if c.Extract.Lookback <= 0 {
		return errors.New("extract.lookback must be positive")
	}
	if c.Extract.PageSize < 1 || c.Extract.PageSize > 1000 {
		return fmt.Errorf("extract.page_size must be between 1 and 1000, got %d", c.Extract.PageSize)
	}
	if c.Extract.TradeLimit < 1 || c.Extract.TradeLimit > 1000 {
		return fmt.Errorf("extract.trade_limit must be between 1 and 1000, got %d", c.Extract.TradeLimit)
	}

	switch c.Output.Format {
	case "csv", "parquet":
		if c.Output.Path == "" {
			return fmt.Errorf("output.path is required for format %q", c.Output.Format)
		}
	case "postgres":
		if err := c.Output.Postgres.validate("output.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("output.format must be csv, parquet or postgres, got %q", c.Output.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
