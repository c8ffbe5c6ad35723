// Command backstep-import loads one or more OHLCV CSV files into the local
// Parquet cache and registers each dataset in the catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"backstep/internal/config"
	"backstep/internal/dataset"
	"backstep/internal/store"
	"backstep/internal/util"
)

func main() {
	var (
		symbol  = flag.String("symbol", "", "symbol override (defaults to the file name)")
		cfgPath = flag.String("config", "", "config file path")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: backstep-import [-symbol SYM] file.csv [file.csv ...]")
		os.Exit(2)
	}
	if *symbol != "" && flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "-symbol only makes sense with a single file")
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

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	cat, err := dataset.OpenCatalog(cfg.Storage.CatalogPath)
	if err != nil {
		log.Fatalf("opening catalog: %v", err)
	}
	defer cat.Close()

	ctx := context.Background()
	for _, path := range flag.Args() {
		sym := *symbol
		if sym == "" {
			sym = strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		}

		bars, meta, err := dataset.LoadCSV(path)
		if err != nil {
			log.Fatalf("loading %s: %v", path, err)
		}
		for i := range bars {
			bars[i].Symbol = sym
		}

		if err := pstore.WriteBars(ctx, bars); err != nil {
			log.Fatalf("writing %s bars: %v", sym, err)
		}
		if err := cat.Register(ctx, dataset.NewManifest(sym, "1D", meta, nil, 0)); err != nil {
			log.Fatalf("registering %s: %v", sym, err)
		}
		logger.Info("imported", "symbol", sym, "rows", meta.Rows,
			"checksum", meta.Checksum,
			"start", meta.Start.Format("2006-01-02"), "end", meta.End.Format("2006-01-02"))
	}
}
