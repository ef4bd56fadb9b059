package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"options-collector/internal/alpaca"
	"options-collector/internal/backfill"
	"options-collector/internal/config"
	"options-collector/internal/database"
	"options-collector/internal/logger"
	"options-collector/internal/storage"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	startDate = flag.String("start-date", "", "start date YYYY-MM-DD (default: 30 days ago)")
	endDate   = flag.String("end-date", "", "end date YYYY-MM-DD (default: today)")
	step      = flag.Int("step", 1, "days to step (1=daily, 7=weekly)")
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

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -30)
	end := now
	if *startDate != "" {
		if start, err = time.Parse("2006-01-02", *startDate); err != nil {
			logrus.Fatalf("invalid start date %q, use YYYY-MM-DD", *startDate)
		}
	}
	if *endDate != "" {
		if end, err = time.Parse("2006-01-02", *endDate); err != nil {
			logrus.Fatalf("invalid end date %q, use YYYY-MM-DD", *endDate)
		}
	}
	if start.After(end) {
		logrus.Fatal("start date must not be after end date")
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	client := alpaca.NewClient(cfg.AlpacaAPIKey, cfg.AlpacaSecretKey, cfg.AlpacaTradingURL, cfg.AlpacaDataURL)
	bf := backfill.New(client, storage.NewDB(db), cfg.Symbol, cfg.RiskFreeRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	total, err := bf.Run(ctx, start, end, *step)
	if err != nil {
		logrus.WithField("total", total).Fatalf("backfill interrupted: %v", err)
	}
	logrus.WithField("total", total).Info("backfill finished")
}
