package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"quantbt/internal/config"
	"quantbt/internal/httpapi"
	"quantbt/internal/store"
	"quantbt/internal/strategy"
	"quantbt/internal/strategy/builtins"
	"quantbt/internal/util"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		path = os.Getenv("QUANTBT_CONFIG")
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	barStore, err := store.Open(cfg.Storage.Backend, cfg.Storage.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening bar store: %v", err)
	}
	if closer, ok := barStore.(io.Closer); ok {
		defer closer.Close()
	}

	registry := strategy.NewRegistry()
	builtins.Register(registry)

	srv := httpapi.NewServer(barStore, registry, cfg.Backtest, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Run(addr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
