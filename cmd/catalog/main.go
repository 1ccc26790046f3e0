package main

import (
	"flag"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/catalog"
	"RocketShoes/internal/config"
	"RocketShoes/pkg/kit"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	service := "catalog"
	cfg, err := config.Load(*configPath)
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	store := catalog.NewStore()
	if cfg.CatalogDSN != "" {
		db, err := catalog.OpenPostgres(cfg.CatalogDSN)
		if err != nil {
			log.Fatal("open catalog db failed", zap.Error(err))
		}
		defer db.Close()
		store = catalog.NewPostgresStore(db)
	}

	s := &catalog.Server{Store: store, Log: log}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(":"+cfg.CatalogPort, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
