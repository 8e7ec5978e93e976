// Package domain defines the core types shared across the backtesting
// platform: bars, orders, trades, positions, and equity snapshots.
package domain

import "time"

// Side is the direction of an order or trade.
type Side string

// Order sides.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType distinguishes market orders from limit orders.
type OrderType string

// Order types.
const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderStatus is the lifecycle state of an order. Transitions are one-way:
// OPEN → FILLED or OPEN → CANCELED.
type OrderStatus string

// Order statuses.
const (
	OrderStatusOpen     OrderStatus = "OPEN"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// Bar is a single OHLCV observation for a symbol at a point in time. Bars
// are immutable and ordered by ascending timestamp within a symbol.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Order is a request to trade. IDs are allocated by the broker in submission
// order and are unique within a run. Orders are retained for audit after
// they resolve.
type Order struct {
	ID       int64       `json:"id"`
	Side     Side        `json:"side"`
	Symbol   string      `json:"symbol"`
	Price    float64     `json:"price"`
	Quantity float64     `json:"quantity"`
	Type     OrderType   `json:"type"`
	Status   OrderStatus `json:"status"`
}

// Position is the current holding for a symbol. Quantity and AvgPrice are
// never negative; symbols never traded implicitly hold a zero Position.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// Trade records a fill. Trades are immutable once created and the trade log
// is append-only.
type Trade struct {
	OrderID   int64     `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Fee       float64   `json:"fee"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountInfo is a point-in-time copy of the account state. It never aliases
// the broker's internal maps.
type AccountInfo struct {
	Cash      float64             `json:"cash"`
	Positions map[string]Position `json:"positions"`
}

// EquitySnapshot captures account state after one bar has been processed:
// total equity (cash plus mark-to-market holdings at the bar close), cash,
// the bar close, and a copy of all positions.
type EquitySnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Equity    float64             `json:"equity"`
	Cash      float64             `json:"cash"`
	Close     float64             `json:"close"`
	Positions map[string]Position `json:"positions"`
}

// CopyPositions returns a copy of a positions map. Callers use it to hand
// out snapshots without aliasing internal ledger state.
func CopyPositions(src map[string]Position) map[string]Position {
	dst := make(map[string]Position, len(src))
	for sym, pos := range src {
		dst[sym] = pos
	}
	return dst
}
