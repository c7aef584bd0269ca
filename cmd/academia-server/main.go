package main

import (
	"flag"
	"log/slog"
	"os"

	"academia-backend/lib/configutil"
	"academia-backend/lib/scrapers/academia"
	"academia-backend/lib/serviceutil"
	academiaapi "academia-backend/services/academia"

	"github.com/joho/godotenv"
)

type Config struct {
	// defaults to :8000
	Listen      string           `json:"listen"`
	AccessToken string           `json:"access_token"`
	Scraper     academia.Options `json:"scraper"`
	Snapshots   SnapshotsConfig  `json:"snapshots"`
}

const defaultDumpDir = "<dev_state>/html_dumps"

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "The config file to read.")
	flag.Parse()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env", "err", err)
	}

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8000"
	}

	if cfg.Scraper.DumpDir == "" {
		cfg.Scraper.DumpDir = defaultDumpDir
	}
	scraper, err := academia.NewScraper(cfg.Scraper)
	if err != nil && cfg.Scraper.DumpDir == defaultDumpDir {
		// outside of the workspace there is no <dev_state>
		slog.Warn("html dumps disabled", "err", err)
		cfg.Scraper.DumpDir = ""
		scraper, err = academia.NewScraper(cfg.Scraper)
	}
	if err != nil {
		serviceutil.Fatal("init scraper", err)
	}

	opts := academiaapi.Options{
		Scraper:     scraper,
		AccessToken: cfg.AccessToken,
		PortalUrl:   cfg.Scraper.BaseUrl,
	}
	snapshots, err := InitSnapshots(cfg.Snapshots)
	if err != nil {
		serviceutil.Fatal("init snapshots", err)
	}
	if snapshots != nil {
		opts.Snapshots = snapshots
	}

	service := academiaapi.NewService(opts)
	err = serviceutil.StartHttpServer(ctx, cfg.Listen, service.Handler())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
