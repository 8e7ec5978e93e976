// Package strategy defines the Strategy interface for trading strategies,
// the Trader handle that binds a strategy to a broker, and a Registry for
// managing strategy factories.
package strategy

import (
	"fmt"
	"sort"

	"quantbt/internal/broker"
	"quantbt/internal/domain"
)

// Strategy is the interface all trading strategies must implement. The
// backtest driver calls the hooks in a fixed order: OnInit once, then per
// bar OnBar followed by OnTrade for each fill the bar produced, then
// OnFinish once after the last bar.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// OnInit is called once before replay starts. The Trader is the
	// strategy's only handle on the account; implementations keep it for
	// use in later hooks.
	OnInit(t *Trader) error

	// OnBar is called for every bar, in timestamp order. Orders submitted
	// here are eligible to fill against this same bar.
	OnBar(bar domain.Bar) error

	// OnTrade is called for each fill, in fill order.
	OnTrade(trade domain.Trade) error

	// OnFinish is called once after the last bar.
	OnFinish() error
}

// Trader gives a strategy order entry and account access through the broker
// it was bound to. Binding happens at backtest construction (dependency
// injection, never shared globals).
type Trader struct {
	broker broker.Broker
}

// NewTrader binds a Trader to a broker.
func NewTrader(b broker.Broker) *Trader {
	return &Trader{broker: b}
}

// Buy submits a BUY order.
func (t *Trader) Buy(symbol string, price, quantity float64, orderType domain.OrderType) domain.Order {
	return t.broker.SubmitOrder(domain.SideBuy, symbol, price, quantity, orderType)
}

// Sell submits a SELL order.
func (t *Trader) Sell(symbol string, price, quantity float64, orderType domain.OrderType) domain.Order {
	return t.broker.SubmitOrder(domain.SideSell, symbol, price, quantity, orderType)
}

// CancelOrder cancels an OPEN order by ID.
func (t *Trader) CancelOrder(id int64) bool {
	return t.broker.CancelOrder(id)
}

// Position returns the current position for a symbol.
func (t *Trader) Position(symbol string) domain.Position {
	return t.broker.Position(symbol)
}

// Account returns a snapshot of cash and positions.
func (t *Trader) Account() domain.AccountInfo {
	return t.broker.Account()
}

// OpenOrders returns OPEN orders, optionally filtered by symbol.
func (t *Trader) OpenOrders(symbol string) []domain.Order {
	return t.broker.OpenOrders(symbol)
}

// Factory builds a fresh strategy instance from numeric parameters. Each
// backtest run gets its own instance; strategies carry per-run state.
type Factory func(params map[string]float64) (Strategy, error)

// Registry holds a named collection of strategy factories for lookup and
// enumeration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry under the given name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Create builds a new strategy instance by name.
func (r *Registry) Create(name string, params map[string]float64) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return f(params)
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
