package gather

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"quantbt/internal/domain"
	"quantbt/internal/store"
)

// Compile-time interface check.
var _ Gatherer = (*CSVGatherer)(nil)

// columnAliases maps each canonical bar field to the source header names it
// accepts. Matching is case-insensitive.
var columnAliases = map[string][]string{
	"symbol":    {"symbol", "ticker", "code"},
	"timestamp": {"timestamp", "datetime", "date", "time"},
	"open":      {"open", "open_price", "o"},
	"high":      {"high", "high_price", "h"},
	"low":       {"low", "low_price", "l"},
	"close":     {"close", "close_price", "last", "c"},
	"volume":    {"volume", "vol", "v"},
}

// timestampLayouts are tried in order when parsing the timestamp column.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// CSVGatherer ingests one OHLCV CSV file into a BarStore. Source column
// names are mapped onto the canonical schema via columnAliases; the file is
// rejected before anything is stored when a required column is missing or
// timestamps within a symbol go backwards.
type CSVGatherer struct {
	path   string
	symbol string // fallback when the file carries no symbol column
	store  store.BarStore
	log    *slog.Logger
}

// NewCSVGatherer creates a CSVGatherer for the file at path, writing into s.
// symbol is used for every row when the file has no symbol column.
func NewCSVGatherer(path, symbol string, s store.BarStore) *CSVGatherer {
	return &CSVGatherer{
		path:   path,
		symbol: symbol,
		store:  s,
		log:    slog.Default().With("gatherer", "csv", "path", path),
	}
}

// Name returns the gatherer identifier.
func (g *CSVGatherer) Name() string { return "csv" }

// Run parses, validates, and stores the whole file. Validation failures
// surface before any bar is written.
func (g *CSVGatherer) Run(ctx context.Context) error {
	bars, err := g.load()
	if err != nil {
		return err
	}
	if err := g.store.WriteBars(ctx, bars); err != nil {
		return fmt.Errorf("storing %d bars from %s: %w", len(bars), g.path, err)
	}
	g.log.Info("ingested csv", "bars", len(bars))
	return nil
}

func (g *CSVGatherer) load() ([]domain.Bar, error) {
	f, err := os.Open(g.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", g.path, err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	if _, ok := cols["symbol"]; !ok && g.symbol == "" {
		return nil, fmt.Errorf("%s: no symbol column and no symbol override", g.path)
	}

	var bars []domain.Bar
	lastTS := make(map[string]time.Time)
	for line := 2; ; line++ {
		row, err := r.Read()
		if err != nil {
			break
		}

		bar, err := parseRow(row, cols, g.symbol)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", g.path, line, err)
		}
		// Bars must arrive in non-decreasing timestamp order per symbol.
		if prev, ok := lastTS[bar.Symbol]; ok && bar.Timestamp.Before(prev) {
			return nil, fmt.Errorf("%s line %d: timestamp %s goes backwards for %s",
				g.path, line, bar.Timestamp, bar.Symbol)
		}
		lastTS[bar.Symbol] = bar.Timestamp
		bars = append(bars, bar)
	}
	return bars, nil
}

// resolveColumns maps canonical field names to header indexes. Timestamp and
// the OHLC prices are required; symbol and volume are optional (volume
// defaults to 0 when absent).
func resolveColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for field, aliases := range columnAliases {
		for i, h := range header {
			name := strings.ToLower(strings.TrimSpace(h))
			for _, alias := range aliases {
				if name == alias {
					cols[field] = i
				}
			}
		}
	}

	for _, required := range []string{"timestamp", "open", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q in header %v", required, header)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int, fallbackSymbol string) (domain.Bar, error) {
	bar := domain.Bar{Symbol: fallbackSymbol}

	if i, ok := cols["symbol"]; ok && strings.TrimSpace(row[i]) != "" {
		bar.Symbol = strings.TrimSpace(row[i])
	}

	ts, err := parseTimestamp(row[cols["timestamp"]])
	if err != nil {
		return bar, err
	}
	bar.Timestamp = ts

	for field, dst := range map[string]*float64{
		"open": &bar.Open, "high": &bar.High, "low": &bar.Low, "close": &bar.Close,
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[cols[field]]), 64)
		if err != nil {
			return bar, fmt.Errorf("bad %s value %q", field, row[cols[field]])
		}
		*dst = v
	}

	if i, ok := cols["volume"]; ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return bar, fmt.Errorf("bad volume value %q", row[i])
		}
		bar.Volume = v
	}
	return bar, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
