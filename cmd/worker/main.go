package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folioawards/folio-backend/config"
	"github.com/folioawards/folio-backend/internal/bootstrap"
	"github.com/folioawards/folio-backend/internal/jobs"
	"github.com/folioawards/folio-backend/internal/storage/postgres"
)

const usage = "usage: worker <sweep|sweep-once|migrate>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := bootstrap.NewLogger(os.Stdout, cfg.App.Environment, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "sweep":
		err = runSweeper(ctx, cfg, logger)
	case "sweep-once":
		err = sweepOnce(ctx, cfg, logger)
	case "migrate":
		err = migrate(ctx, cfg)
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}

	if err != nil {
		logger.Error("worker failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func openServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.Services, func(), error) {
	db, err := bootstrap.OpenDB(ctx, &cfg.Database, bootstrap.DBOptions{})
	if err != nil {
		return nil, nil, err
	}
	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		// the sweeper has nothing to read without redis
		db.Close()
		_ = rdb.Close()
		return nil, nil, err
	}
	cleanup := func() {
		_ = rdb.Close()
		db.Close()
	}
	return bootstrap.NewServices(cfg, logger, db, rdb, nil), cleanup, nil
}

func runSweeper(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	svc, cleanup, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Add(cfg.App.ClaimSweepSchedule, "claim-finalize-sweep", svc.ClaimSweeper.Run); err != nil {
		return err
	}
	scheduler.Start()
	logger.Info("worker started", slog.String("schedule", cfg.App.ClaimSweepSchedule))

	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(sctx)
	logger.Info("worker stopped")
	return nil
}

func sweepOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	svc, cleanup, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.ClaimSweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	logger.Info("sweep complete",
		slog.Int("finalized", res.Finalized),
		slog.Int("dropped", res.Dropped),
		slog.Int("failed", res.Failed),
	)
	return nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	dbCfg := cfg.Database
	dbCfg.MigrateOnStart = false

	db, err := bootstrap.OpenDB(ctx, &dbCfg, bootstrap.DBOptions{})
	if err != nil {
		return err
	}
	defer db.Close()
	return postgres.Migrate(ctx, db)
}
