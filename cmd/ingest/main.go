package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/DeadSpoonbill/API-lol-public/internal/app"
	"github.com/DeadSpoonbill/API-lol-public/internal/config"
	"github.com/DeadSpoonbill/API-lol-public/internal/platform/logging"
	"github.com/DeadSpoonbill/API-lol-public/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	service := app.BuildIngestion(db, cfg, logger)

	logger.Info("ingestion starting",
		"target", cfg.Target.GameName+"#"+cfg.Target.TagLine,
		"router", cfg.RiotRouter,
		"count", cfg.Target.Count,
		"queues", cfg.Queues,
	)

	summary, err := service.IngestPlayer(ctx, cfg.Target.GameName, cfg.Target.TagLine, cfg.Target.Count)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			logger.Error("target account does not exist on this router",
				"target", cfg.Target.GameName+"#"+cfg.Target.TagLine,
				"router", cfg.RiotRouter,
			)
		} else {
			logger.Error("ingestion failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("ingestion finished",
		"ingested", summary.MatchesIngested,
		"skipped", summary.MatchesSkipped,
	)
}
