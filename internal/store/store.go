// Package store persists and retrieves historical OHLCV bars for the
// backtester. Two backends are provided: SQLite for a single queryable
// database file and Parquet for per-symbol columnar files.
package store

import (
	"context"
	"fmt"
	"time"

	"quantbt/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data. Implementations return
// bars sorted by ascending timestamp, which is the ordering the replay
// engine requires.
type BarStore interface {
	// WriteBars persists a batch of bars, replacing duplicates keyed by
	// (symbol, timestamp).
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the symbol within [start, end], ordered by
	// ascending timestamp.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with stored bars, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}

// Open constructs a BarStore for the named backend: "sqlite" (backed by
// sqlitePath) or "parquet" (backed by dataDir).
func Open(backend, dataDir, sqlitePath string) (BarStore, error) {
	switch backend {
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	case "parquet":
		return NewParquetStore(dataDir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
