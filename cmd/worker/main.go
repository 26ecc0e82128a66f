package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"alidayu/internal/engine/gateway"
	"alidayu/internal/engine/webhooks"
	"alidayu/internal/pkg/logger"
	"alidayu/internal/pkg/metrics"
	"alidayu/internal/platform/config"
	"alidayu/internal/platform/database"
	"alidayu/internal/platform/repositories"
	"alidayu/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run a single reconciliation pass and exit")
	metricsAddr := flag.String("metrics-addr", ":9091", "Address for the /metrics endpoint, empty to disable")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "alidayu-worker")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open dispatch database")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsDir, "up"); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate dispatch database")
	}

	gwCfg, err := cfg.Gateway.ClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid gateway config")
	}
	gw, err := gateway.New(gwCfg,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.Gateway.Timeout}),
		gateway.WithLogger(logger.Component("gateway")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway client")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	reconciler := workers.NewReconciler(
		repositories.NewDispatchRepository(db),
		gw,
		m,
		webhooks.NewDispatcher(cfg.Clients, nil, logger.Component("webhooks")),
		cfg.Worker,
		logger.Component("reconciler"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		n, err := reconciler.RunOnce(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("reconciliation failed")
		}
		log.Info().Int("reconciled", n).Msg("reconciliation complete")
		return
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	log.Info().Dur("interval", cfg.Worker.Interval).Msg("starting SMS delivery reconciler")
	reconciler.Run(ctx)
	log.Info().Msg("worker stopped")
}
