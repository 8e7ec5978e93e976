package backtest

import (
	"context"
	"fmt"
	"time"

	"quantbt/internal/analysis"
	"quantbt/internal/store"
	"quantbt/internal/strategy"
)

// RunConfig describes one store-driven backtest run.
type RunConfig struct {
	Symbol       string
	Start        time.Time
	End          time.Time
	Strategy     string
	Params       map[string]float64
	InitialCash  float64
	FeeRate      float64
	Slippage     float64
	RiskFreeRate float64
}

// RunFromStore reads bars for the configured symbol and range, builds the
// named strategy from the registry, runs the replay, and returns the
// analysis over its results. It fails before the loop starts when no bars
// exist for the range.
func RunFromStore(ctx context.Context, bars store.BarStore, registry *strategy.Registry, cfg RunConfig) (*analysis.Analysis, error) {
	data, err := bars.ReadBars(ctx, cfg.Symbol, cfg.Start, cfg.End)
	if err != nil {
		return nil, fmt.Errorf("reading bars for %s: %w", cfg.Symbol, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no bars for %s in %s..%s",
			cfg.Symbol, cfg.Start.Format("2006-01-02"), cfg.End.Format("2006-01-02"))
	}

	strat, err := registry.Create(cfg.Strategy, cfg.Params)
	if err != nil {
		return nil, err
	}

	bt := New(strat, data, cfg.InitialCash, cfg.FeeRate, cfg.Slippage)
	if err := bt.Run(); err != nil {
		return nil, err
	}

	return analysis.New(bt.Results(), bt.Trades(), cfg.InitialCash, cfg.RiskFreeRate), nil
}
