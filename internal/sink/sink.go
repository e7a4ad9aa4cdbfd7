package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/rickgao/kalshi-analysis/internal/model"
)

// Sink persists a full run's records in one pass.
type Sink interface {
	Write(ctx context.Context, records []model.OutputRecord) error
}

// NewFileSink creates a file-backed sink for the given format ("csv" or
// "parquet") writing to path.
func NewFileSink(format, path string) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVSink{Path: path}, nil
	case "parquet":
		return &ParquetSink{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
