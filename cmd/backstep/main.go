// Command backstep replays a bar series one bar at a time with a simulated
// broker attached. It loads bars either from a CSV file or from the local
// Parquet cache, then hands the session to the TUI (or the line-oriented
// CLI when stdout is not a terminal).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"backstep/internal/cli"
	"backstep/internal/config"
	"backstep/internal/dataset"
	"backstep/internal/domain"
	"backstep/internal/session"
	"backstep/internal/sim"
	"backstep/internal/store"
	"backstep/internal/tui"
	"backstep/internal/util"
)

func main() {
	var (
		csvPath = flag.String("csv", "", "CSV file with Date,Open,High,Low,Close,Volume columns")
		symbol  = flag.String("symbol", "", "symbol to load from the local bar cache")
		start   = flag.String("start", "", "first date to load from the cache (YYYY-MM-DD)")
		end     = flag.String("end", "", "last date to load from the cache (YYYY-MM-DD)")
		mode    = flag.String("mode", "auto", "front end: auto, tui, or cli")
		cash    = flag.Float64("cash", 0, "override starting cash")
		feeBps  = flag.Float64("fee-bps", -1, "override commission in basis points")
		slipBps = flag.Float64("slip-bps", -1, "override slippage in basis points")
		policy  = flag.String("policy", "", "market fill policy: next_open or bar_inclusive")
		cfgPath = flag.String("config", "", "config file path")
	)
	flag.Parse()

	if *csvPath == "" && *symbol == "" {
		fmt.Fprintln(os.Stderr, "either -csv or -symbol is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	applyFlagOverrides(cfg, *cash, *feeBps, *slipBps, *policy)

	useTUI := *mode == "tui" || (*mode == "auto" && stdoutIsTerminal())

	// The TUI owns the terminal, so its logs go to a file instead.
	var logger *slog.Logger
	if useTUI {
		logPath := fmt.Sprintf("/tmp/backstep-%s.log", time.Now().Format("2006-01-02"))
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("opening log file: %v", err)
		}
		defer logFile.Close()
		logger = util.NewLoggerTo(logFile, cfg.Logging.Level, cfg.Logging.Format)
	} else {
		logger = util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	}
	util.SetDefault(logger)

	ctx := context.Background()

	var (
		bars []domain.Bar
		name string
		err  error
	)
	if *csvPath != "" {
		bars, name, err = loadCSV(ctx, cfg, *csvPath, *symbol, logger)
	} else {
		bars, name, err = loadCached(ctx, cfg, *symbol, *start, *end)
	}
	if err != nil {
		log.Fatalf("loading bars: %v", err)
	}
	logger.Info("bars loaded", "symbol", name, "count", len(bars))

	sess, err := session.New(bars, sim.Config{
		Cash:    cfg.Simulation.Cash,
		FeeBps:  cfg.Simulation.FeeBps,
		SlipBps: cfg.Simulation.SlipBps,
		Timing:  sim.FillTiming(cfg.Simulation.Policy),
	}, logger)
	if err != nil {
		log.Fatalf("creating session: %v", err)
	}

	if useTUI {
		err := tui.Run(sess, name, logger)
		if err == nil {
			return
		}
		if *mode == "tui" {
			log.Fatalf("tui: %v", err)
		}
		logger.Warn("tui unavailable, falling back to cli", "error", err)
	}
	if err := cli.New(sess, name, logger, os.Stdout).Run(os.Stdin); err != nil {
		log.Fatalf("cli: %v", err)
	}
}

// loadCSV reads bars from a CSV file and registers the dataset in the
// catalog so the run can be tied back to the exact data it replayed.
func loadCSV(ctx context.Context, cfg *config.Config, path, symbol string, logger *slog.Logger) ([]domain.Bar, string, error) {
	bars, meta, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, "", err
	}
	if symbol == "" {
		symbol = strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	// Catalog registration is best effort; a broken catalog should not stop
	// a backtest.
	if cat, err := dataset.OpenCatalog(cfg.Storage.CatalogPath); err != nil {
		logger.Warn("opening catalog", "error", err)
	} else {
		defer cat.Close()
		m := dataset.NewManifest(symbol, "1D", meta, nil, 0)
		if err := cat.Register(ctx, m); err != nil {
			logger.Warn("registering dataset", "checksum", meta.Checksum, "error", err)
		} else {
			logger.Info("dataset registered", "checksum", meta.Checksum, "rows", meta.Rows)
		}
	}
	return bars, symbol, nil
}

// loadCached reads bars for a symbol from the local Parquet cache.
func loadCached(ctx context.Context, cfg *config.Config, symbol, start, end string) ([]domain.Bar, string, error) {
	symbol = strings.ToUpper(symbol)
	startT := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	endT := time.Now().UTC()
	var err error
	if start != "" {
		if startT, err = time.Parse("2006-01-02", start); err != nil {
			return nil, "", fmt.Errorf("bad -start: %w", err)
		}
	}
	if end != "" {
		if endT, err = time.Parse("2006-01-02", end); err != nil {
			return nil, "", fmt.Errorf("bad -end: %w", err)
		}
	}

	bars, err := store.NewParquetStore(cfg.Storage.DataDir).ReadBars(ctx, symbol, startT, endT)
	if err != nil {
		return nil, "", err
	}
	if len(bars) == 0 {
		return nil, "", fmt.Errorf("no cached bars for %s (run backstep-fetch or backstep-import first)", symbol)
	}
	return bars, symbol, nil
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = "config/backstep.yaml"
		if p := os.Getenv("BACKSTEP_CONFIG"); p != "" {
			path = p
		}
		// The default path is optional; fall back to built-in defaults.
		if _, err := os.Stat(path); err != nil {
			return config.Default()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("loading config %s: %v", path, err)
	}
	return cfg
}

func applyFlagOverrides(cfg *config.Config, cash, feeBps, slipBps float64, policy string) {
	if cash > 0 {
		cfg.Simulation.Cash = cash
	}
	if feeBps >= 0 {
		cfg.Simulation.FeeBps = feeBps
	}
	if slipBps >= 0 {
		cfg.Simulation.SlipBps = slipBps
	}
	if policy != "" {
		cfg.Simulation.Policy = policy
	}
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
