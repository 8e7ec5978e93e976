package gather

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quantbt/internal/domain"
	"quantbt/internal/store"
)

// memStore collects written bars without touching disk.
type memStore struct {
	bars []domain.Bar
}

var _ store.BarStore = (*memStore)(nil)

func (m *memStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	m.bars = append(m.bars, bars...)
	return nil
}

func (m *memStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for _, b := range m.bars {
		if b.Symbol == symbol && !b.Timestamp.Before(start) && !b.Timestamp.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListSymbols(_ context.Context) ([]string, error) {
	return nil, nil
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp csv: %v", err)
	}
	return path
}

func TestCSVGathererIngests(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"symbol,date,open,high,low,close,volume",
		"AAPL,2025-01-02,10,11,9,10.5,1000",
		"AAPL,2025-01-03,10.5,12,10,11.5,1500",
		"MSFT,2025-01-02,200,205,198,203,800",
	}, "\n"))

	st := &memStore{}
	g := NewCSVGatherer(path, "", st)
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(st.bars) != 3 {
		t.Fatalf("stored %d bars, want 3", len(st.bars))
	}
	b := st.bars[0]
	if b.Symbol != "AAPL" || b.Open != 10 || b.High != 11 || b.Low != 9 || b.Close != 10.5 || b.Volume != 1000 {
		t.Errorf("first bar = %+v", b)
	}
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !b.Timestamp.Equal(want) {
		t.Errorf("first bar timestamp = %v, want %v", b.Timestamp, want)
	}
}

func TestCSVGathererHeaderAliases(t *testing.T) {
	// Alternate header names and no volume column.
	path := writeTempCSV(t, strings.Join([]string{
		"ticker,datetime,o,h,l,last",
		"AAPL,2025-01-02 09:30:00,10,11,9,10.5",
	}, "\n"))

	st := &memStore{}
	if err := NewCSVGatherer(path, "", st).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(st.bars) != 1 {
		t.Fatalf("stored %d bars, want 1", len(st.bars))
	}
	if st.bars[0].Volume != 0 {
		t.Errorf("volume = %v, want 0 when the column is absent", st.bars[0].Volume)
	}
}

func TestCSVGathererSymbolOverride(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"date,open,high,low,close,volume",
		"2025-01-02,10,11,9,10.5,1000",
	}, "\n"))

	st := &memStore{}
	if err := NewCSVGatherer(path, "TSLA", st).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if st.bars[0].Symbol != "TSLA" {
		t.Errorf("symbol = %q, want override TSLA", st.bars[0].Symbol)
	}
}

func TestCSVGathererNoSymbol(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"date,open,high,low,close,volume",
		"2025-01-02,10,11,9,10.5,1000",
	}, "\n"))

	err := NewCSVGatherer(path, "", &memStore{}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "symbol") {
		t.Errorf("err = %v, want a missing-symbol failure", err)
	}
}

func TestCSVGathererMissingColumn(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"symbol,date,open,high,low,volume", // no close
		"AAPL,2025-01-02,10,11,9,1000",
	}, "\n"))

	st := &memStore{}
	err := NewCSVGatherer(path, "", st).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "close") {
		t.Errorf("err = %v, want a missing-close failure", err)
	}
	if len(st.bars) != 0 {
		t.Errorf("stored %d bars despite validation failure, want 0", len(st.bars))
	}
}

func TestCSVGathererBackwardsTimestamp(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"symbol,date,open,high,low,close,volume",
		"AAPL,2025-01-03,10,11,9,10.5,1000",
		"AAPL,2025-01-02,10,11,9,10.5,1000",
	}, "\n"))

	st := &memStore{}
	err := NewCSVGatherer(path, "", st).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "backwards") {
		t.Errorf("err = %v, want a backwards-timestamp failure", err)
	}
	if len(st.bars) != 0 {
		t.Errorf("stored %d bars despite validation failure, want 0", len(st.bars))
	}
}

func TestCSVGathererBadValue(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"symbol,date,open,high,low,close,volume",
		"AAPL,2025-01-02,ten,11,9,10.5,1000",
	}, "\n"))

	err := NewCSVGatherer(path, "", &memStore{}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want a line 2 parse failure", err)
	}
}
