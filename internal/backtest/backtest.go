// Package backtest replays an ordered bar sequence through a strategy
// against a simulated broker and records the equity timeline.
package backtest

import (
	"fmt"

	"quantbt/internal/broker"
	"quantbt/internal/domain"
	"quantbt/internal/strategy"
)

// Backtester drives one replay. It owns a fresh Simulator per run; ledger
// state is never shared across runs.
type Backtester struct {
	strategy strategy.Strategy
	bars     []domain.Bar
	broker   *broker.Simulator
	history  []domain.EquitySnapshot
}

// New creates a Backtester over the given time-ordered bars. The strategy is
// bound to a new Simulator holding initialCash.
func New(strat strategy.Strategy, bars []domain.Bar, initialCash, feeRate, slippage float64) *Backtester {
	return &Backtester{
		strategy: strat,
		bars:     bars,
		broker:   broker.NewSimulator(initialCash, feeRate, slippage),
	}
}

// Run replays every bar in order. Per bar: OnBar first, then order execution
// against the same bar, then OnTrade per fill, then an equity snapshot.
// Orders submitted in OnBar can therefore fill against that bar's own range;
// replay semantics keep this intentionally, so strategies see fills on the
// bar that triggered them.
//
// An empty bar sequence performs zero iterations (OnInit and OnFinish still
// run) and leaves Results empty.
func (bt *Backtester) Run() error {
	if err := bt.strategy.OnInit(strategy.NewTrader(bt.broker)); err != nil {
		return fmt.Errorf("strategy %s init: %w", bt.strategy.Name(), err)
	}

	for _, bar := range bt.bars {
		if err := bt.strategy.OnBar(bar); err != nil {
			return fmt.Errorf("strategy %s on bar %s: %w", bt.strategy.Name(), bar.Timestamp, err)
		}
		for _, trade := range bt.broker.ExecuteOrders(bar) {
			if err := bt.strategy.OnTrade(trade); err != nil {
				return fmt.Errorf("strategy %s on trade %d: %w", bt.strategy.Name(), trade.OrderID, err)
			}
		}
		bt.record(bar)
	}

	if err := bt.strategy.OnFinish(); err != nil {
		return fmt.Errorf("strategy %s finish: %w", bt.strategy.Name(), err)
	}
	return nil
}

// record appends one equity snapshot for the bar just processed. Equity is
// cash plus every held position marked to this bar's close.
func (bt *Backtester) record(bar domain.Bar) {
	equity := bt.broker.Cash()
	positions := bt.broker.Positions()
	for _, pos := range positions {
		if pos.Quantity > 0 {
			equity += pos.Quantity * bar.Close
		}
	}

	bt.history = append(bt.history, domain.EquitySnapshot{
		Timestamp: bar.Timestamp,
		Equity:    equity,
		Cash:      bt.broker.Cash(),
		Close:     bar.Close,
		Positions: positions,
	})
}

// Results returns the recorded snapshots, one per processed bar, in
// timestamp order.
func (bt *Backtester) Results() []domain.EquitySnapshot {
	return bt.history
}

// Trades returns the broker's trade log for the run.
func (bt *Backtester) Trades() []domain.Trade {
	return bt.broker.Trades()
}
