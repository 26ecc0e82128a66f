package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"alidayu/internal/api"
	"alidayu/internal/api/handlers"
	"alidayu/internal/api/middleware"
	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/logger"
	"alidayu/internal/pkg/metrics"
	"alidayu/internal/platform/audit"
	"alidayu/internal/platform/auth"
	"alidayu/internal/platform/config"
	"alidayu/internal/platform/database"
	"alidayu/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "alidayu-server")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set")
	}

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

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories and services
	dispatchRepo := repositories.NewDispatchRepository(db)
	recorder := audit.NewRecorder(dispatchRepo, m, logger.Component("dispatch"))
	tokenSvc := auth.NewTokenService(cfg.JWT)
	clients := auth.NewClientStore(cfg.Clients)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, m)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go rateLimiter.Run(stopCleanup)

	router := api.NewRouter(&api.Dependencies{
		TokenHandler:    handlers.NewTokenHandler(clients, tokenSvc),
		GatewayHandler:  handlers.NewGatewayHandler(gw, recorder),
		DispatchHandler: handlers.NewDispatchHandler(dispatchRepo),
		HealthHandler:   handlers.NewHealthHandler(db, gw.BaseURL()),
		MetricsHandler:  handlers.NewMetricsHandler(reg),
		AuthMiddleware:  middleware.NewAuthMiddleware(tokenSvc),
		RateLimiter:     rateLimiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("gateway", gw.BaseURL()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
