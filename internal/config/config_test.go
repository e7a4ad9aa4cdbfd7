package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
api:
  api_key: test-key
extract:
  series_ticker: KXBTCD
  top_strikes: 3
output:
  format: csv
  path: out.csv
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.API.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", cfg.API.APIKey)
	}
	if cfg.API.RestURL != DefaultRestURL {
		t.Errorf("RestURL = %q, want default", cfg.API.RestURL)
	}
	if cfg.Extract.TopStrikes != 3 {
		t.Errorf("TopStrikes = %d, want 3", cfg.Extract.TopStrikes)
	}
	if cfg.Extract.PageDelay != DefaultPageDelay {
		t.Errorf("PageDelay = %v, want default %v", cfg.Extract.PageDelay, DefaultPageDelay)
	}
	if cfg.Extract.Lookback != 15*time.Minute {
		t.Errorf("Lookback = %v, want 15m", cfg.Extract.Lookback)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("KALSHI_API_KEY", "from-env")

	path := writeConfig(t, `
api:
  api_key: ${KALSHI_API_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.API.APIKey)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Extract.SeriesTicker != "KXBTCD" {
		t.Errorf("SeriesTicker = %q, want KXBTCD", cfg.Extract.SeriesTicker)
	}
	if cfg.Extract.TopStrikes != 5 {
		t.Errorf("TopStrikes = %d, want 5", cfg.Extract.TopStrikes)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("Format = %q, want csv", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero top strikes", func(c *Config) { c.Extract.TopStrikes = 0 }, true},
		{"negative lookback", func(c *Config) { c.Extract.Lookback = -time.Minute }, true},
		{"page size over API cap", func(c *Config) { c.Extract.PageSize = 2000 }, true},
		{"trade limit over API cap", func(c *Config) { c.Extract.TradeLimit = 1001 }, true},
		{"unknown format", func(c *Config) { c.Output.Format = "xlsx" }, true},
		{"csv without path", func(c *Config) { c.Output.Path = "" }, true},
		{"postgres without host", func(c *Config) { c.Output.Format = "postgres" }, true},
		{"postgres complete", func(c *Config) {
			c.Output.Format = "postgres"
			c.Output.Postgres.Host = "localhost"
			c.Output.Postgres.Name = "kalshi"
			c.Output.Postgres.User = "analyst"
		}, false},
		{"min conns above max", func(c *Config) {
			c.Output.Format = "postgres"
			c.Output.Postgres.Host = "localhost"
			c.Output.Postgres.Name = "kalshi"
			c.Output.Postgres.User = "analyst"
			c.Output.Postgres.MinConns = 10
			c.Output.Postgres.MaxConns = 2
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
