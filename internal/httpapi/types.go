package httpapi

import "quantbt/internal/analysis"

// BacktestRequest is the body of POST /api/v1/backtest. Unset numeric
// parameters fall back to the server's configured defaults.
type BacktestRequest struct {
	Symbol       string             `json:"symbol"`
	Start        string             `json:"start"` // YYYY-MM-DD, inclusive
	End          string             `json:"end"`   // YYYY-MM-DD, inclusive
	Strategy     string             `json:"strategy"`
	Params       map[string]float64 `json:"params"`
	InitialCash  float64            `json:"initial_cash"`
	FeeRate      float64            `json:"fee_rate"`
	Slippage     float64            `json:"slippage"`
	RiskFreeRate float64            `json:"risk_free_rate"`
	IncludeCurve bool               `json:"include_curve"`
}

// BacktestResponse carries the run metrics, plus the normalized equity and
// drawdown series when include_curve was set.
type BacktestResponse struct {
	Status    string            `json:"status"`
	Metrics   analysis.Metrics  `json:"metrics"`
	EquityPct []float64         `json:"equity_pct,omitempty"`
	Drawdown  []float64         `json:"drawdown,omitempty"`
}
