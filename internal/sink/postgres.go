package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/kalshi-analysis/internal/model"
)

// DefaultTable is the table pipeline runs write into.
const DefaultTable = "market_pricing"

// PostgresSink writes records to a Postgres table in one batch.
// Rows conflict on ticker, so re-running a date range upserts nothing and
// duplicates nothing.
type PostgresSink struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewPostgresSink creates a PostgresSink. An empty table uses DefaultTable.
func NewPostgresSink(pool *pgxpool.Pool, table string, logger *slog.Logger) *PostgresSink {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSink{pool: pool, table: table, logger: logger}
}

func (s *PostgresSink) Write(ctx context.Context, records []model.OutputRecord) error {
	if len(records) == 0 {
		s.logger.Info("nothing to write", "table", s.table)
		return nil
	}

	start := time.Now()

	sql := fmt.Sprintf(`
		INSERT INTO %s (
			ticker, event_ticker, close_time, result, result_binary,
			volume, last_price,
			price_15min, price_10min, price_5min, price_1min,
			snapshots_in_window
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (ticker) DO NOTHING
	`, s.table)

	batch := &pgx.Batch{}
	for i := range records {
		r := &records[i]
		batch.Queue(sql,
			r.Ticker, r.EventTicker, r.CloseTime.UTC(), r.Result, r.ResultBinary,
			r.Volume, r.LastPrice,
			r.Price15Min, r.Price10Min, r.Price5Min, r.Price1Min,
			r.SnapshotsInWindow,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	conflicts := 0
	for range records {
		ct, err := results.Exec()
		if err != nil {
			return fmt.Errorf("batch insert into %s: %w", s.table, err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	s.logger.Info("flushed records to postgres",
		"table", s.table,
		"inserted", len(records)-conflicts,
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}
