package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folioawards/folio-backend/config"
	"github.com/folioawards/folio-backend/internal/bootstrap"
	"github.com/folioawards/folio-backend/internal/jobs"
)

const serviceName = "folio-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := bootstrap.NewLogger(os.Stdout, cfg.App.Environment, cfg.App.LogLevel)
	slog.SetDefault(logger)
	bootstrap.SetGinMode(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(ctx, &cfg.Database, bootstrap.DBOptions{})
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, continuing degraded", slog.Any("error", err))
	}
	defer rdb.Close()

	svc := bootstrap.NewServices(cfg, logger, db, rdb, nil)

	router, err := bootstrap.BuildRouter(ctx, bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Redis:       rdb,
		Services:    svc,
	})
	if err != nil {
		return err
	}

	if cfg.App.RunSweeperInAPI {
		scheduler := jobs.NewScheduler(logger)
		if err := scheduler.Add(cfg.App.ClaimSweepSchedule, "claim-finalize-sweep", svc.ClaimSweeper.Run); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			scheduler.Stop(sctx)
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.App.Environment),
			slog.String("version", cfg.App.Version),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}
