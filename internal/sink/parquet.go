package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rickgao/kalshi-analysis/internal/model"
)

// parquetRow mirrors the output schema; pointer fields become optional
// columns so absence survives the round trip.
type parquetRow struct {
	Ticker            string   `parquet:"ticker"`
	EventTicker       string   `parquet:"event_ticker"`
	CloseTime         string   `parquet:"close_time"`
	Result            string   `parquet:"result"`
	ResultBinary      int32    `parquet:"result_binary"`
	Volume            int64    `parquet:"volume"`
	LastPrice         *float64 `parquet:"last_price,optional"`
	Price15Min        *float64 `parquet:"price_15min,optional"`
	Price10Min        *float64 `parquet:"price_10min,optional"`
	Price5Min         *float64 `parquet:"price_5min,optional"`
	Price1Min         *float64 `parquet:"price_1min,optional"`
	SnapshotsInWindow int32    `parquet:"snapshots_in_window"`
}

// ParquetSink writes records to a single Parquet file.
type ParquetSink struct {
	Path string
}

func (s *ParquetSink) Write(ctx context.Context, records []model.OutputRecord) error {
	rows := make([]parquetRow, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, parquetRow{
			Ticker:            r.Ticker,
			EventTicker:       r.EventTicker,
			CloseTime:         r.CloseTime.UTC().Format(time.RFC3339),
			Result:            r.Result,
			ResultBinary:      int32(r.ResultBinary),
			Volume:            r.Volume,
			LastPrice:         r.LastPrice,
			Price15Min:        r.Price15Min,
			Price10Min:        r.Price10Min,
			Price5Min:         r.Price5Min,
			Price1Min:         r.Price1Min,
			SnapshotsInWindow: int32(r.SnapshotsInWindow),
		})
	}

	if err := parquet.WriteFile(s.Path, rows); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
