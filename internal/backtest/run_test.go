package backtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"quantbt/internal/domain"
	"quantbt/internal/store"
	"quantbt/internal/strategy"
)

// stubStore serves a fixed bar slice.
type stubStore struct {
	bars []domain.Bar
}

var _ store.BarStore = (*stubStore)(nil)

func (s *stubStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	s.bars = append(s.bars, bars...)
	return nil
}

func (s *stubStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for _, b := range s.bars {
		if b.Symbol == symbol && !b.Timestamp.Before(start) && !b.Timestamp.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubStore) ListSymbols(_ context.Context) ([]string, error) {
	return []string{"AAPL"}, nil
}

func TestRunFromStore(t *testing.T) {
	st := &stubStore{bars: testBars(10, 11, 12, 13)}

	registry := strategy.NewRegistry()
	registry.Register("script", func(_ map[string]float64) (strategy.Strategy, error) {
		return &scriptStrategy{}, nil
	})

	result, err := RunFromStore(context.Background(), st, registry, RunConfig{
		Symbol:      "AAPL",
		Start:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Strategy:    "script",
		InitialCash: 100000,
	})
	if err != nil {
		t.Fatalf("RunFromStore returned error: %v", err)
	}

	m := result.Metrics()
	if m.FinalEquity != 100000 {
		t.Errorf("final equity = %v, want 100000 for an idle strategy", m.FinalEquity)
	}
	if m.TotalTrades != 0 {
		t.Errorf("total trades = %d, want 0", m.TotalTrades)
	}
}

func TestRunFromStoreNoBars(t *testing.T) {
	st := &stubStore{}
	registry := strategy.NewRegistry()

	_, err := RunFromStore(context.Background(), st, registry, RunConfig{
		Symbol:   "MSFT",
		Start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Strategy: "script",
	})
	if err == nil {
		t.Fatal("RunFromStore should fail fast when no bars exist for the range")
	}
	if !strings.Contains(err.Error(), "no bars") {
		t.Errorf("error = %v, want a no-bars failure", err)
	}
}

func TestRunFromStoreUnknownStrategy(t *testing.T) {
	st := &stubStore{bars: testBars(10)}
	registry := strategy.NewRegistry()

	_, err := RunFromStore(context.Background(), st, registry, RunConfig{
		Symbol:   "AAPL",
		Start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Strategy: "does-not-exist",
	})
	if err == nil {
		t.Fatal("RunFromStore should fail for an unregistered strategy")
	}
}
