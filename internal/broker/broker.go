// Package broker defines the order-entry surface strategies trade against
// and provides the in-memory Simulator that matches orders against bars.
package broker

import "quantbt/internal/domain"

// Broker is the capability set a strategy sees: order entry, cancellation,
// and read-only access to account state. All read methods return copies;
// callers never observe internal ledger state directly.
type Broker interface {
	// SubmitOrder creates an OPEN order with a freshly allocated ID. No
	// balance or position check happens at submission; checks happen at
	// fill time.
	SubmitOrder(side domain.Side, symbol string, price, quantity float64, orderType domain.OrderType) domain.Order

	// CancelOrder transitions an OPEN order to CANCELED. It returns false
	// if the order does not exist or has already resolved.
	CancelOrder(id int64) bool

	// OpenOrders returns all OPEN orders, optionally filtered by symbol.
	// An empty symbol matches every order.
	OpenOrders(symbol string) []domain.Order

	// Position returns the current position for a symbol, or a zero
	// position if the symbol was never traded.
	Position(symbol string) domain.Position

	// Account returns a snapshot copy of cash and all positions.
	Account() domain.AccountInfo
}
