// Package analysis computes performance metrics over the snapshot and trade
// history a backtest run produced: equity curve, drawdown, total return, and
// risk-adjusted return.
package analysis

import (
	"fmt"
	"io"
	"math"
	"os"

	"quantbt/internal/domain"
)

// Metrics is the summary of one backtest run.
type Metrics struct {
	InitialCash    float64 `json:"initial_cash"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	TotalTrades    int     `json:"total_trades"`
	BuyTrades      int     `json:"buy_trades"`
	SellTrades     int     `json:"sell_trades"`
}

// Analysis is a pure post-processor over a finished run. All metrics are
// computed once at construction; the inputs are never mutated.
type Analysis struct {
	snapshots    []domain.EquitySnapshot
	trades       []domain.Trade
	initialCash  float64
	riskFreeRate float64

	equityPct      []float64
	drawdown       []float64
	maxDrawdown    float64
	totalReturnPct float64
	sharpeRatio    float64
}

// New builds an Analysis from a run's snapshot sequence and trade log.
// riskFreeRate is the per-run (not per-period) risk-free rate used in the
// Sharpe calculation.
func New(snapshots []domain.EquitySnapshot, trades []domain.Trade, initialCash, riskFreeRate float64) *Analysis {
	a := &Analysis{
		snapshots:    snapshots,
		trades:       trades,
		initialCash:  initialCash,
		riskFreeRate: riskFreeRate,
	}
	a.compute()
	return a
}

// compute derives every metric. Empty snapshot sequences leave all metrics
// zero; no ratio is ever computed over an empty or flat series.
func (a *Analysis) compute() {
	if len(a.snapshots) == 0 {
		return
	}

	a.equityPct = make([]float64, len(a.snapshots))
	for i, s := range a.snapshots {
		a.equityPct[i] = s.Equity / a.initialCash * 100
	}

	// Drawdown relative to the running equity peak. Always <= 0.
	a.drawdown = make([]float64, len(a.equityPct))
	runningMax := math.Inf(-1)
	for i, pct := range a.equityPct {
		if pct > runningMax {
			runningMax = pct
		}
		a.drawdown[i] = pct - runningMax
		if a.drawdown[i] < a.maxDrawdown {
			a.maxDrawdown = a.drawdown[i]
		}
	}

	a.totalReturnPct = a.equityPct[len(a.equityPct)-1] - 100

	// Per-period returns over the equity curve.
	returns := make([]float64, 0, len(a.equityPct)-1)
	for i := 1; i < len(a.equityPct); i++ {
		if a.equityPct[i-1] != 0 {
			returns = append(returns, a.equityPct[i]/a.equityPct[i-1]-1)
		}
	}
	a.sharpeRatio = sharpe(returns, a.riskFreeRate)
}

// sharpe is (mean(r) - rf/N) / stdev(r) * sqrt(N) with sample standard
// deviation. Defined as 0 when fewer than two periods exist or volatility
// is zero.
func sharpe(returns []float64, riskFreeRate float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(n)

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	stdev := math.Sqrt(sq / float64(n-1))
	if stdev <= 0 {
		return 0
	}

	periodRF := riskFreeRate / float64(n)
	return (mean - periodRF) / stdev * math.Sqrt(float64(n))
}

// EquityPct returns the equity curve normalized to 100 at initial cash.
func (a *Analysis) EquityPct() []float64 { return a.equityPct }

// Drawdown returns the per-snapshot drawdown series (each value <= 0).
func (a *Analysis) Drawdown() []float64 { return a.drawdown }

// Metrics returns the summary metrics for the run.
func (a *Analysis) Metrics() Metrics {
	m := Metrics{
		InitialCash:    a.initialCash,
		TotalReturnPct: a.totalReturnPct,
		MaxDrawdown:    a.maxDrawdown,
		SharpeRatio:    a.sharpeRatio,
		TotalTrades:    len(a.trades),
	}
	if len(a.snapshots) > 0 {
		m.FinalEquity = a.snapshots[len(a.snapshots)-1].Equity
	}
	for _, t := range a.trades {
		switch t.Side {
		case domain.SideBuy:
			m.BuyTrades++
		case domain.SideSell:
			m.SellTrades++
		}
	}
	return m
}

// WriteSummary writes a human-readable run summary to w.
func (a *Analysis) WriteSummary(w io.Writer) {
	m := a.Metrics()
	fmt.Fprintln(w, "=== Backtest Summary ===")
	fmt.Fprintf(w, "Initial cash:  %.2f\n", m.InitialCash)
	fmt.Fprintf(w, "Final equity:  %.2f\n", m.FinalEquity)
	fmt.Fprintf(w, "Total return:  %.2f%%\n", m.TotalReturnPct)
	fmt.Fprintf(w, "Max drawdown:  %.2f%%\n", m.MaxDrawdown)
	fmt.Fprintf(w, "Sharpe ratio:  %.4f\n", m.SharpeRatio)
	fmt.Fprintf(w, "Total trades:  %d\n", m.TotalTrades)
	if m.TotalTrades > 0 {
		fmt.Fprintf(w, "Buy trades:    %d\n", m.BuyTrades)
		fmt.Fprintf(w, "Sell trades:   %d\n", m.SellTrades)
	}
}

// PrintSummary writes the summary to stdout.
func (a *Analysis) PrintSummary() {
	a.WriteSummary(os.Stdout)
}
