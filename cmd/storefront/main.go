package main

import (
	"context"
	"flag"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/config"
	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/internal/storefront"
	"RocketShoes/pkg/kit"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	service := "storefront"
	cfg, err := config.Load(*configPath)
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, err := slot.Open(ctx, cfg.Slot.Driver, cfg.Slot.DSN)
	if err != nil {
		log.Fatal("open slot failed", zap.Error(err), zap.String("driver", cfg.Slot.Driver))
	}

	reg := prometheus.NewRegistry()
	toasts := notify.NewToaster(notify.Options{
		TTL:      cfg.Notify.TTL,
		Capacity: cfg.Notify.Capacity,
		Log:      log.Named("notify"),
	})

	c := cart.New(ctx, cart.Deps{
		Catalog:  cart.NewCatalogClient(cfg.CatalogURL),
		Slot:     store,
		Notifier: toasts,
		Log:      log.Named("cart"),
		Metrics:  kit.NewCartMetrics(reg),
		Timeout:  cfg.Timeout,
	})
	c.LoadCatalog(ctx)

	s := &storefront.Server{
		Cart:   c,
		Toasts: toasts,
		Slot:   store,
		Log:    log,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		RateLimit:      kit.NewIPRateLimiter(cfg.RateLimit, time.Minute),
	})

	closeSlot := func() {
		if err := store.Close(); err != nil {
			log.Warn("close slot failed", zap.Error(err))
		}
	}
	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, closeSlot); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
