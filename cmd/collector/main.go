package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"options-collector/internal/alpaca"
	"options-collector/internal/collector"
	"options-collector/internal/config"
	"options-collector/internal/database"
	"options-collector/internal/logger"
	"options-collector/internal/storage"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	once     = flag.Bool("once", false, "run a single collection pass and exit")
	interval = flag.Duration("interval", 15*time.Minute, "collection interval for continuous mode")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("configuration error: %v", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	client := alpaca.NewClient(cfg.AlpacaAPIKey, cfg.AlpacaSecretKey, cfg.AlpacaTradingURL, cfg.AlpacaDataURL)
	col := collector.New(client, storage.NewDB(db), cfg.Symbol, cfg.RiskFreeRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		stored, err := col.CollectOnce(ctx)
		if err != nil {
			logrus.Fatalf("collection failed: %v", err)
		}
		logrus.WithField("stored", stored).Info("done")
		os.Exit(0)
	}

	col.RunContinuous(ctx, *interval)
}
