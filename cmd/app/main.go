package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-subscription-service/internal/config"
	pg "creator-subscription-service/internal/infra/db/postgres"
	"creator-subscription-service/internal/infra/logging"
	"creator-subscription-service/internal/infra/metrics"
	red "creator-subscription-service/internal/infra/redis"
	"creator-subscription-service/internal/infra/sched"
	"creator-subscription-service/internal/infra/scheduler"
	"creator-subscription-service/internal/infra/web"
	"creator-subscription-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis (optional; without it the sweep lock is in-process only) ----
	var locker red.Locker
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer func() { _ = redisClient.Close() }()
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; sweep runs without a distributed lock")
	}

	// ---- Repositories ----
	planRepo := pg.NewPostgresPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Use cases ----
	planUC := usecase.NewPlanUseCase(planRepo, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, planRepo, txm, logger)
	dashboardUC := usecase.NewDashboardUseCase(subRepo, planRepo, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, logger)
	exportUC := usecase.NewExportUseCase(dashboardUC, logger)

	// ---- Renewal sweep ----
	worker := sched.NewRenewalWorker(subRepo, planRepo, logger)
	crond := scheduler.New(locker, logger)
	if err := crond.Schedule(cfg.Scheduler.SweepCron, worker, cfg.Scheduler.SweepTimeout); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.Scheduler.SweepCron).Msg("invalid sweep cron spec")
	}
	crond.Start()

	// ---- HTTP ----
	auth := web.NewAuthenticator(cfg.Auth.JWTSecret, logger)
	srv := web.NewServer(planUC, subUC, dashboardUC, statsUC, exportUC, auth, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	crond.Stop()
	cancel()
}
