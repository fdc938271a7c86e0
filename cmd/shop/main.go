package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ShopAPI/internal/app"
	"ShopAPI/internal/config"
	"ShopAPI/pkg/kit"
)

func main() {
	service := "shop"

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log := kit.NewLogger(service, "info")
		log.Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.Metrics.Enabled && cfg.Metrics.Token == "" {
		log.Warn("metrics enabled without METRICS_TOKEN; /metrics will refuse every scrape")
	}

	ctx := context.Background()

	deps, err := app.BuildDeps(ctx, cfg)
	if err != nil {
		log.Fatal("init dependencies failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := app.NewHandler(deps, app.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		CORSOrigins:    cfg.CORSOrigins,
	})

	log.Info("config loaded",
		zap.String("addr", cfg.Addr()),
		zap.String("upload_backend", cfg.Upload.Backend),
		zap.Bool("protect_products", cfg.Auth.ProtectProducts),
		zap.Bool("seed_data", cfg.SeedData),
	)

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, log, kit.ServerOptions{
		ShutdownTimeout: cfg.ShutdownTimeout,
	}); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
