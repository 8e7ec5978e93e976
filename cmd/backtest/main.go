package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"quantbt/internal/backtest"
	"quantbt/internal/config"
	"quantbt/internal/store"
	"quantbt/internal/strategy"
	"quantbt/internal/strategy/builtins"
	"quantbt/internal/util"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "path to YAML config file (optional)")
		symbol    = flag.String("symbol", "", "symbol to backtest (required)")
		start     = flag.String("start", "", "start date YYYY-MM-DD (required)")
		end       = flag.String("end", "", "end date YYYY-MM-DD (required)")
		stratName = flag.String("strategy", "", "strategy name (default from config)")
		cash      = flag.Float64("cash", 0, "initial cash (default from config)")
	)
	flag.Parse()

	cfg := loadConfig(*cfgPath)
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	if *symbol == "" || *start == "" || *end == "" {
		flag.Usage()
		os.Exit(2)
	}
	startTime, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("bad -start date: %v", err)
	}
	endTime, err := time.Parse("2006-01-02", *end)
	if err != nil {
		log.Fatalf("bad -end date: %v", err)
	}

	barStore, err := store.Open(cfg.Storage.Backend, cfg.Storage.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening bar store: %v", err)
	}
	if closer, ok := barStore.(io.Closer); ok {
		defer closer.Close()
	}

	registry := strategy.NewRegistry()
	builtins.Register(registry)

	runCfg := backtest.RunConfig{
		Symbol:   *symbol,
		Start:    startTime,
		End:      endTime.Add(24*time.Hour - time.Nanosecond),
		Strategy: cfg.Backtest.Strategy,
		Params: map[string]float64{
			"short_window": float64(cfg.Backtest.ShortWindow),
			"long_window":  float64(cfg.Backtest.LongWindow),
		},
		InitialCash:  cfg.Backtest.InitialCash,
		FeeRate:      cfg.Backtest.FeeRate,
		Slippage:     cfg.Backtest.Slippage,
		RiskFreeRate: cfg.Backtest.RiskFreeRate,
	}
	if *stratName != "" {
		runCfg.Strategy = *stratName
	}
	if *cash > 0 {
		runCfg.InitialCash = *cash
	}

	result, err := backtest.RunFromStore(context.Background(), barStore, registry, runCfg)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}
	result.PrintSummary()
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = os.Getenv("QUANTBT_CONFIG")
	}
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
