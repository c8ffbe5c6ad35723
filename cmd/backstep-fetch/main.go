// Command backstep-fetch downloads daily bars from Alpaca into the local
// Parquet cache for later replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"backstep/internal/config"
	"backstep/internal/fetch"
	"backstep/internal/store"
	"backstep/internal/util"
)

func main() {
	var (
		symbols = flag.String("symbols", "", "comma-separated symbols to fetch")
		start   = flag.String("start", "", "first date (YYYY-MM-DD, default from config)")
		end     = flag.String("end", "", "last date (YYYY-MM-DD, default today)")
		cfgPath = flag.String("config", "", "config file path")
	)
	flag.Parse()

	if *symbols == "" {
		fmt.Fprintln(os.Stderr, "usage: backstep-fetch -symbols AAPL,MSFT [-start 2020-01-01]")
		os.Exit(2)
	}

	cfgFile := *cfgPath
	if cfgFile == "" {
		cfgFile = "config/backstep.yaml"
		if p := os.Getenv("BACKSTEP_CONFIG"); p != "" {
			cfgFile = p
		}
	}
	cfg := config.Default()
	if _, err := os.Stat(cfgFile); err == nil {
		if cfg, err = config.Load(cfgFile); err != nil {
			log.Fatalf("loading config %s: %v", cfgFile, err)
		}
	}
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("Alpaca credentials missing: set APCA_API_KEY_ID and APCA_API_SECRET_KEY")
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	startT, err := time.Parse("2006-01-02", cfg.Fetch.StartDate)
	if err != nil {
		log.Fatalf("bad fetch start_date in config: %v", err)
	}
	if *start != "" {
		if startT, err = time.Parse("2006-01-02", *start); err != nil {
			log.Fatalf("bad -start: %v", err)
		}
	}
	endT := time.Now().UTC()
	if *end != "" {
		if endT, err = time.Parse("2006-01-02", *end); err != nil {
			log.Fatalf("bad -end: %v", err)
		}
	}

	var syms []string
	for _, s := range strings.Split(*symbols, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			syms = append(syms, s)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := fetch.NewDailyBarFetcher(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		store.NewParquetStore(cfg.Storage.DataDir),
		cfg.Fetch.BatchSize,
		cfg.Fetch.RateLimitPerMin,
	)

	logger.Info("fetching daily bars", "symbols", len(syms),
		"start", startT.Format("2006-01-02"), "end", endT.Format("2006-01-02"))
	n, err := fetcher.Fetch(ctx, syms, startT, endT)
	if err != nil {
		log.Fatalf("fetch: %v", err)
	}
	logger.Info("fetch complete", "bars", n)
}
