// Package httpapi exposes backtest runs over stored bar data as an HTTP API.
package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quantbt/internal/backtest"
	"quantbt/internal/config"
	"quantbt/internal/store"
	"quantbt/internal/strategy"
)

// Server wires the bar store and strategy registry behind a gin router.
type Server struct {
	store    store.BarStore
	registry *strategy.Registry
	defaults config.Backtest
	log      *slog.Logger
}

// NewServer creates a Server. defaults fill any run parameter a request
// leaves unset.
func NewServer(s store.BarStore, registry *strategy.Registry, defaults config.Backtest, log *slog.Logger) *Server {
	return &Server{
		store:    s,
		registry: registry,
		defaults: defaults,
		log:      log.With("component", "httpapi"),
	}
}

// Router builds the gin router with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.GET("/strategies", s.listStrategies)
	api.GET("/symbols", s.listSymbols)
	api.POST("/backtest", s.runBacktest)

	return r
}

// Run starts the HTTP listener and blocks.
func (s *Server) Run(addr string) error {
	s.log.Info("http api listening", "addr", addr)
	return s.Router().Run(addr)
}

func (s *Server) listStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": s.registry.List()})
}

func (s *Server) listSymbols(c *gin.Context) {
	symbols, err := s.store.ListSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("STORE_ERROR", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

func (s *Server) runBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err))
		return
	}

	cfg, err := s.buildRunConfig(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err))
		return
	}

	started := time.Now()
	result, err := backtest.RunFromStore(c.Request.Context(), s.store, s.registry, cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BACKTEST_ERROR", err))
		return
	}
	s.log.Info("backtest complete",
		"symbol", cfg.Symbol, "strategy", cfg.Strategy, "elapsed", time.Since(started))

	resp := BacktestResponse{
		Status:  "completed",
		Metrics: result.Metrics(),
	}
	if req.IncludeCurve {
		resp.EquityPct = result.EquityPct()
		resp.Drawdown = result.Drawdown()
	}
	c.JSON(http.StatusOK, resp)
}

// buildRunConfig validates the request and fills unset parameters from the
// configured defaults.
func (s *Server) buildRunConfig(req BacktestRequest) (backtest.RunConfig, error) {
	var cfg backtest.RunConfig
	if req.Symbol == "" {
		return cfg, errors.New("symbol is required")
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return cfg, fmt.Errorf("bad start date %q: %w", req.Start, err)
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return cfg, fmt.Errorf("bad end date %q: %w", req.End, err)
	}
	if end.Before(start) {
		return cfg, fmt.Errorf("end %s before start %s", req.End, req.Start)
	}

	cfg = backtest.RunConfig{
		Symbol:       req.Symbol,
		Start:        start,
		End:          end.Add(24*time.Hour - time.Nanosecond),
		Strategy:     req.Strategy,
		Params:       req.Params,
		InitialCash:  req.InitialCash,
		FeeRate:      req.FeeRate,
		Slippage:     req.Slippage,
		RiskFreeRate: req.RiskFreeRate,
	}
	if cfg.Strategy == "" {
		cfg.Strategy = s.defaults.Strategy
	}
	if cfg.InitialCash == 0 {
		cfg.InitialCash = s.defaults.InitialCash
	}
	if cfg.FeeRate == 0 {
		cfg.FeeRate = s.defaults.FeeRate
	}
	if cfg.Slippage == 0 {
		cfg.Slippage = s.defaults.Slippage
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = s.defaults.RiskFreeRate
	}
	return cfg, nil
}

func errorBody(code string, err error) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": err.Error()}}
}
