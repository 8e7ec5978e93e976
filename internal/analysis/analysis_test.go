package analysis

import (
	"math"
	"strings"
	"testing"
	"time"

	"quantbt/internal/domain"
)

func snapshotsFromEquity(equities ...float64) []domain.EquitySnapshot {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	snaps := make([]domain.EquitySnapshot, len(equities))
	for i, eq := range equities {
		snaps[i] = domain.EquitySnapshot{
			Timestamp: base.AddDate(0, 0, i),
			Equity:    eq,
			Cash:      eq,
			Close:     10,
		}
	}
	return snaps
}

func TestDrawdownAndReturn(t *testing.T) {
	// equity_pct [100, 105, 95, 110]: running max [100,105,105,110],
	// drawdown [0, 0, -10, 0], max drawdown -10, total return +10%.
	a := New(snapshotsFromEquity(1000, 1050, 950, 1100), nil, 1000, 0)

	wantDD := []float64{0, 0, -10, 0}
	got := a.Drawdown()
	if len(got) != len(wantDD) {
		t.Fatalf("drawdown has %d entries, want %d", len(got), len(wantDD))
	}
	for i := range wantDD {
		if math.Abs(got[i]-wantDD[i]) > 1e-9 {
			t.Errorf("drawdown[%d] = %v, want %v", i, got[i], wantDD[i])
		}
		if got[i] > 0 {
			t.Errorf("drawdown[%d] = %v, must never be positive", i, got[i])
		}
	}

	m := a.Metrics()
	if math.Abs(m.MaxDrawdown-(-10)) > 1e-9 {
		t.Errorf("max drawdown = %v, want -10", m.MaxDrawdown)
	}
	if math.Abs(m.TotalReturnPct-10) > 1e-9 {
		t.Errorf("total return = %v, want 10", m.TotalReturnPct)
	}
	if m.FinalEquity != 1100 {
		t.Errorf("final equity = %v, want 1100", m.FinalEquity)
	}
}

func TestSharpeRatio(t *testing.T) {
	// Hand-computed for per-period returns of [100,105,95,110] with rf=0:
	// mean 0.0375522139, sample stdev 0.1270246756, sharpe = mean/stdev*sqrt(3).
	a := New(snapshotsFromEquity(1000, 1050, 950, 1100), nil, 1000, 0)

	want := 0.5120449398014901
	if got := a.Metrics().SharpeRatio; math.Abs(got-want) > 1e-9 {
		t.Errorf("sharpe = %v, want %v", got, want)
	}
}

func TestSharpeRiskFreeRate(t *testing.T) {
	withRF := New(snapshotsFromEquity(1000, 1050, 950, 1100), nil, 1000, 0.03)
	noRF := New(snapshotsFromEquity(1000, 1050, 950, 1100), nil, 1000, 0)

	if withRF.Metrics().SharpeRatio >= noRF.Metrics().SharpeRatio {
		t.Errorf("sharpe with rf = %v should be below %v",
			withRF.Metrics().SharpeRatio, noRF.Metrics().SharpeRatio)
	}
}

func TestSharpeZeroVolatility(t *testing.T) {
	// Constant per-period return → stdev 0 → sharpe defined as 0, not Inf/NaN.
	a := New(snapshotsFromEquity(1000, 1100, 1210), nil, 1000, 0)
	if got := a.Metrics().SharpeRatio; got != 0 {
		t.Errorf("sharpe on zero-volatility series = %v, want 0", got)
	}
}

func TestEmptySeries(t *testing.T) {
	a := New(nil, nil, 1000, 0.02)
	m := a.Metrics()

	if m.SharpeRatio != 0 || m.MaxDrawdown != 0 || m.TotalReturnPct != 0 || m.FinalEquity != 0 {
		t.Errorf("empty series metrics = %+v, want all zero", m)
	}
	if len(a.EquityPct()) != 0 || len(a.Drawdown()) != 0 {
		t.Error("empty series should yield empty curves")
	}
}

func TestSingleSnapshot(t *testing.T) {
	a := New(snapshotsFromEquity(1200), nil, 1000, 0)
	m := a.Metrics()

	if math.Abs(m.TotalReturnPct-20) > 1e-9 {
		t.Errorf("total return = %v, want 20", m.TotalReturnPct)
	}
	// One snapshot means zero periods: no ratio to compute.
	if m.SharpeRatio != 0 {
		t.Errorf("sharpe with a single snapshot = %v, want 0", m.SharpeRatio)
	}
}

func TestTradeCounts(t *testing.T) {
	trades := []domain.Trade{
		{OrderID: 0, Symbol: "AAPL", Side: domain.SideBuy, Price: 10, Quantity: 5},
		{OrderID: 1, Symbol: "AAPL", Side: domain.SideSell, Price: 11, Quantity: 5},
		{OrderID: 2, Symbol: "AAPL", Side: domain.SideBuy, Price: 9, Quantity: 3},
	}
	a := New(snapshotsFromEquity(1000, 1010), trades, 1000, 0)
	m := a.Metrics()

	if m.TotalTrades != 3 || m.BuyTrades != 2 || m.SellTrades != 1 {
		t.Errorf("trade counts = %d/%d/%d, want 3/2/1",
			m.TotalTrades, m.BuyTrades, m.SellTrades)
	}
}

func TestWriteSummary(t *testing.T) {
	trades := []domain.Trade{
		{Side: domain.SideBuy, Price: 10, Quantity: 5},
	}
	a := New(snapshotsFromEquity(1000, 1100), trades, 1000, 0)

	var sb strings.Builder
	a.WriteSummary(&sb)
	out := sb.String()

	for _, want := range []string{
		"Initial cash:  1000.00",
		"Final equity:  1100.00",
		"Total return:  10.00%",
		"Total trades:  1",
		"Buy trades:    1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
