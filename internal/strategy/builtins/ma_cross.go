// Package builtins provides built-in strategy implementations that ship with
// the platform.
package builtins

import (
	"fmt"
	"log/slog"

	"quantbt/internal/domain"
	"quantbt/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MACross)(nil)

// MACross implements a moving average crossover strategy. It buys at market
// when the short-window mean of closes rises above the long-window mean
// while flat, and sells the whole position at market on the reverse cross.
// Buys are sized to 95% of available cash.
type MACross struct {
	shortWindow int
	longWindow  int

	trader *strategy.Trader
	prices []float64
	log    *slog.Logger
}

// NewMACross creates a MACross strategy with the given short and long
// moving-average windows.
func NewMACross(short, long int) (*MACross, error) {
	if short <= 0 || long <= 0 || short >= long {
		return nil, fmt.Errorf("invalid ma windows: short=%d long=%d", short, long)
	}
	return &MACross{
		shortWindow: short,
		longWindow:  long,
		log:         slog.Default().With("strategy", "ma-cross"),
	}, nil
}

// Register adds all builtin strategies to the registry.
func Register(r *strategy.Registry) {
	r.Register("ma-cross", func(params map[string]float64) (strategy.Strategy, error) {
		short, long := 5, 20
		if v, ok := params["short_window"]; ok {
			short = int(v)
		}
		if v, ok := params["long_window"]; ok {
			long = int(v)
		}
		return NewMACross(short, long)
	})
}

// Name returns "ma-cross".
func (s *MACross) Name() string {
	return "ma-cross"
}

// OnInit stores the trader handle and resets price history.
func (s *MACross) OnInit(t *strategy.Trader) error {
	s.trader = t
	s.prices = s.prices[:0]
	return nil
}

// OnBar appends the bar close to the rolling history and trades on a
// crossover once the long window is full.
func (s *MACross) OnBar(bar domain.Bar) error {
	price := bar.Close
	s.prices = append(s.prices, price)

	if len(s.prices) < s.longWindow {
		return nil
	}

	shortMA := mean(s.prices[len(s.prices)-s.shortWindow:])
	longMA := mean(s.prices[len(s.prices)-s.longWindow:])
	pos := s.trader.Position(bar.Symbol)

	switch {
	case shortMA > longMA && pos.Quantity == 0:
		qty := s.trader.Account().Cash * 0.95 / price
		if qty > 0 {
			s.trader.Buy(bar.Symbol, price, qty, domain.OrderTypeMarket)
			s.log.Debug("cross up, buying",
				"symbol", bar.Symbol, "qty", qty, "price", price)
		}
	case shortMA < longMA && pos.Quantity > 0:
		s.trader.Sell(bar.Symbol, price, pos.Quantity, domain.OrderTypeMarket)
		s.log.Debug("cross down, selling",
			"symbol", bar.Symbol, "qty", pos.Quantity, "price", price)
	}
	return nil
}

// OnTrade logs the fill.
func (s *MACross) OnTrade(trade domain.Trade) error {
	s.log.Info("fill",
		"side", trade.Side, "symbol", trade.Symbol,
		"qty", trade.Quantity, "price", trade.Price, "fee", trade.Fee)
	return nil
}

// OnFinish is a no-op; all state is per-run.
func (s *MACross) OnFinish() error {
	return nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
