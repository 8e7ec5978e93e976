package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"quantbt/internal/config"
	"quantbt/internal/gather"
	"quantbt/internal/store"
	"quantbt/internal/util"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ingest <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  csv      Ingest an OHLCV CSV file into the bar store\n")
		fmt.Fprintf(os.Stderr, "  alpaca   Fetch daily bars from the Alpaca market-data API\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "csv":
		runCSV(os.Args[2:])
	case "alpaca":
		runAlpaca(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func runCSV(args []string) {
	fs := flag.NewFlagSet("csv", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to YAML config file (optional)")
	file := fs.String("file", "", "CSV file to ingest (required)")
	symbol := fs.String("symbol", "", "symbol override when the file has no symbol column")
	fs.Parse(args)

	if *file == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, barStore := setup(*cfgPath)
	if closer, ok := barStore.(io.Closer); ok {
		defer closer.Close()
	}
	_ = cfg

	g := gather.NewCSVGatherer(*file, *symbol, barStore)
	if err := g.Run(context.Background()); err != nil {
		log.Fatalf("csv ingest: %v", err)
	}
}

func runAlpaca(args []string) {
	fs := flag.NewFlagSet("alpaca", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to YAML config file (optional)")
	symbols := fs.String("symbols", "", "comma-separated symbols (required)")
	start := fs.String("start", "", "start date YYYY-MM-DD (required)")
	end := fs.String("end", "", "end date YYYY-MM-DD (required)")
	fs.Parse(args)

	if *symbols == "" || *start == "" || *end == "" {
		fs.Usage()
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

	cfg, barStore := setup(*cfgPath)
	if closer, ok := barStore.(io.Closer); ok {
		defer closer.Close()
	}
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("alpaca credentials missing: set APCA_API_KEY_ID and APCA_API_SECRET_KEY")
	}

	g := gather.NewAlpacaGatherer(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		barStore, strings.Split(*symbols, ","), startTime, endTime,
		cfg.Alpaca.RateLimitPerMin)
	if err := g.Run(context.Background()); err != nil {
		log.Fatalf("alpaca ingest: %v", err)
	}
}

func setup(cfgPath string) (*config.Config, store.BarStore) {
	if cfgPath == "" {
		cfgPath = os.Getenv("QUANTBT_CONFIG")
	}

	var cfg *config.Config
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	barStore, err := store.Open(cfg.Storage.Backend, cfg.Storage.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening bar store: %v", err)
	}
	return cfg, barStore
}
