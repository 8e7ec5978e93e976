package broker

import "quantbt/internal/domain"

// Compile-time interface check.
var _ Broker = (*Simulator)(nil)

// Simulator is the single source of truth for cash, positions, orders, and
// trades during a backtest. It simulates fills against bars handed to
// ExecuteOrders. All mutation happens synchronously from a single caller;
// no locking (one Simulator per run, never shared across runs).
type Simulator struct {
	cash     float64
	feeRate  float64
	slippage float64

	nextID int64
	// Orders in submission order. Resolved orders stay for audit.
	orders    []*domain.Order
	positions map[string]domain.Position
	trades    []domain.Trade
}

// NewSimulator creates a Simulator with the given starting cash, fee rate,
// and market-order slippage fraction.
func NewSimulator(initialCash, feeRate, slippage float64) *Simulator {
	return &Simulator{
		cash:      initialCash,
		feeRate:   feeRate,
		slippage:  slippage,
		positions: make(map[string]domain.Position),
	}
}

// SubmitOrder creates an OPEN order. IDs are monotonic in submission order.
func (s *Simulator) SubmitOrder(side domain.Side, symbol string, price, quantity float64, orderType domain.OrderType) domain.Order {
	o := &domain.Order{
		ID:       s.nextID,
		Side:     side,
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
		Type:     orderType,
		Status:   domain.OrderStatusOpen,
	}
	s.nextID++
	s.orders = append(s.orders, o)
	return *o
}

// CancelOrder moves an OPEN order to CANCELED. Returns false when the order
// does not exist or has already filled or been canceled.
func (s *Simulator) CancelOrder(id int64) bool {
	for _, o := range s.orders {
		if o.ID == id && o.Status == domain.OrderStatusOpen {
			o.Status = domain.OrderStatusCanceled
			return true
		}
	}
	return false
}

// OpenOrders returns copies of all OPEN orders in submission order. An empty
// symbol matches every order.
func (s *Simulator) OpenOrders(symbol string) []domain.Order {
	var open []domain.Order
	for _, o := range s.orders {
		if o.Status == domain.OrderStatusOpen && (symbol == "" || o.Symbol == symbol) {
			open = append(open, *o)
		}
	}
	return open
}

// Position returns the position for a symbol, or a zero position if the
// symbol was never traded.
func (s *Simulator) Position(symbol string) domain.Position {
	if pos, ok := s.positions[symbol]; ok {
		return pos
	}
	return domain.Position{Symbol: symbol}
}

// Account returns a snapshot copy of cash and positions.
func (s *Simulator) Account() domain.AccountInfo {
	return domain.AccountInfo{
		Cash:      s.cash,
		Positions: domain.CopyPositions(s.positions),
	}
}

// Cash returns the current cash balance.
func (s *Simulator) Cash() float64 { return s.cash }

// Positions returns a copy of all positions keyed by symbol.
func (s *Simulator) Positions() map[string]domain.Position {
	return domain.CopyPositions(s.positions)
}

// Trades returns a copy of the append-only trade log in fill order.
func (s *Simulator) Trades() []domain.Trade {
	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// ExecuteOrders evaluates every OPEN order on the bar's symbol, in
// submission order, and returns the trades produced by this bar.
//
// Fill rules:
//   - MARKET orders always fill at close adjusted by slippage (up for BUY,
//     down for SELL).
//   - LIMIT orders fill at their limit price only when the bar touches it:
//     BUY when price >= bar low, SELL when price <= bar high. Untouched
//     orders stay OPEN for the next bar.
//
// A BUY needs cash >= cost+fee and a SELL needs held quantity >= order
// quantity. When the check fails the order is not rejected; it stays OPEN
// and is retried on later bars.
func (s *Simulator) ExecuteOrders(bar domain.Bar) []domain.Trade {
	var fills []domain.Trade

	for _, o := range s.orders {
		if o.Status != domain.OrderStatusOpen || o.Symbol != bar.Symbol {
			continue
		}

		var matchPrice float64
		switch o.Type {
		case domain.OrderTypeMarket:
			if o.Side == domain.SideBuy {
				matchPrice = bar.Close * (1 + s.slippage)
			} else {
				matchPrice = bar.Close * (1 - s.slippage)
			}
		case domain.OrderTypeLimit:
			touched := (o.Side == domain.SideBuy && o.Price >= bar.Low) ||
				(o.Side == domain.SideSell && o.Price <= bar.High)
			if !touched {
				continue
			}
			// No price improvement: limit orders fill at their limit.
			matchPrice = o.Price
		default:
			continue
		}

		cost := matchPrice * o.Quantity
		fee := cost * s.feeRate
		pos := s.Position(o.Symbol)

		switch o.Side {
		case domain.SideBuy:
			if s.cash < cost+fee {
				continue // soft-fail: stays OPEN, retried next bar
			}
			s.cash -= cost + fee
			total := pos.Quantity + o.Quantity
			if total > 0 {
				pos.AvgPrice = (pos.AvgPrice*pos.Quantity + matchPrice*o.Quantity) / total
			}
			pos.Quantity = total
		case domain.SideSell:
			if pos.Quantity < o.Quantity {
				continue // soft-fail: stays OPEN, retried next bar
			}
			s.cash += cost - fee
			pos.Quantity -= o.Quantity
		}

		pos.Symbol = o.Symbol
		s.positions[o.Symbol] = pos
		o.Status = domain.OrderStatusFilled

		trade := domain.Trade{
			OrderID:   o.ID,
			Symbol:    o.Symbol,
			Side:      o.Side,
			Price:     matchPrice,
			Quantity:  o.Quantity,
			Fee:       fee,
			Timestamp: bar.Timestamp,
		}
		s.trades = append(s.trades, trade)
		fills = append(fills, trade)
	}

	return fills
}
