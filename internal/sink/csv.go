package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/model"
)

// csvHeader matches the output schema column order.
var csvHeader = []string{
	"ticker", "event_ticker", "close_time", "result", "result_binary",
	"volume", "last_price",
	"price_15min", "price_10min", "price_5min", "price_1min",
	"snapshots_in_window",
}

// CSVSink writes records to a single CSV file, overwriting any previous run.
type CSVSink struct {
	Path string
}

func (s *CSVSink) Write(ctx context.Context, records []model.OutputRecord) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := w.Write(csvRow(&records[i])); err != nil {
			return fmt.Errorf("write record %s: %w", records[i].Ticker, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func csvRow(r *model.OutputRecord) []string {
	return []string{
		r.Ticker,
		r.EventTicker,
		r.CloseTime.UTC().Format(time.RFC3339),
		r.Result,
		strconv.Itoa(r.ResultBinary),
		strconv.FormatInt(r.Volume, 10),
		floatCell(r.LastPrice),
		floatCell(r.Price15Min),
		floatCell(r.Price10Min),
		floatCell(r.Price5Min),
		floatCell(r.Price1Min),
		strconv.Itoa(r.SnapshotsInWindow),
	}
}

// floatCell renders an optional probability; absence is an empty cell.
func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
