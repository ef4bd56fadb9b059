package backfill

import (
	"context"
	"time"

	"options-collector/internal/collector"
	"options-collector/internal/models"
	"options-collector/internal/storage"

	"github.com/sirupsen/logrus"
)

// EarliestData is the provider's historical options availability floor.
// Alpaca serves options data from February 2024 onward; earlier start dates
// are clamped up to this, with the adjustment logged.
var EarliestData = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

// HistoricalData is the provider capability for retroactive ingestion: all
// options that traded on the underlying for one past date.
type HistoricalData interface {
	GetOptionsForDate(ctx context.Context, underlying string, date time.Time) ([]models.HistoricalOption, error)
}

// Backfill replays a historical date range through the analytics pipeline.
type Backfill struct {
	provider     HistoricalData
	store        storage.Store
	symbol       string
	riskFreeRate float64
	pause        time.Duration
	sleep        func(time.Duration)
	log          *logrus.Entry
}

func New(provider HistoricalData, store storage.Store, symbol string, riskFreeRate float64) *Backfill {
	return &Backfill{
		provider:     provider,
		store:        store,
		symbol:       symbol,
		riskFreeRate: riskFreeRate,
		pause:        time.Second,
		sleep:        time.Sleep,
		log:          logrus.WithField("component", "backfill"),
	}
}

// Run walks [start, end] by stepDays and returns the total number of newly
// stored analytics records. A failure on one date is logged and the loop
// moves on; a second run over the same range stores nothing thanks to the
// per-day dedup check.
func (b *Backfill) Run(ctx context.Context, start, end time.Time, stepDays int) (int, error) {
	if stepDays < 1 {
		stepDays = 1
	}
	start = midnightUTC(start)
	end = midnightUTC(end)

	if start.Before(EarliestData) {
		b.log.WithFields(logrus.Fields{
			"requested": start.Format("2006-01-02"),
			"adjusted":  EarliestData.Format("2006-01-02"),
		}).Warn("start date precedes provider data availability, adjusting")
		start = EarliestData
	}

	b.log.WithFields(logrus.Fields{
		"symbol": b.symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
		"step":   stepDays,
	}).Info("starting backfill")

	total := 0
	for date := start; !date.After(end); date = date.AddDate(0, 0, stepDays) {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		stored, err := b.processDate(ctx, date)
		if err != nil {
			b.log.WithError(err).WithField("date", date.Format("2006-01-02")).Error("date failed, continuing")
		} else {
			total += stored
			b.log.WithFields(logrus.Fields{"date": date.Format("2006-01-02"), "stored": stored}).Info("date processed")
		}

		// Provider rate limit between dates, whatever the outcome.
		b.sleep(b.pause)
	}

	b.log.WithField("total", total).Info("backfill complete")
	return total, nil
}

func (b *Backfill) processDate(ctx context.Context, date time.Time) (int, error) {
	options, err := b.provider.GetOptionsForDate(ctx, b.symbol, date)
	if err != nil {
		return 0, err
	}
	if len(options) == 0 {
		b.log.WithField("date", date.Format("2006-01-02")).Info("no data for date, skipping")
		return 0, nil
	}

	stored := 0
	for _, opt := range options {
		exists, err := b.store.AnalyticsExistsOnDay(ctx, opt.Contract.UnderlyingSymbol,
			opt.Contract.StrikePrice, opt.Contract.ExpirationDate, opt.Contract.OptionType, date)
		if err != nil {
			b.log.WithError(err).WithField("contract", opt.Contract.Symbol).Error("dedup lookup failed")
			continue
		}
		if exists {
			b.log.WithField("contract", opt.Contract.Symbol).Debug("duplicate for day, skipping")
			continue
		}

		// Canonical observation timestamp: the bar timestamp when the
		// provider supplied one, else the target date itself.
		observedAt := date
		if opt.Timestamp != nil {
			observedAt = *opt.Timestamp
		}

		quote := models.QuoteSnapshot{LastPrice: opt.LastPrice, Timestamp: opt.Timestamp}
		rec := collector.Normalize(opt.Contract, quote, opt.UnderlyingPrice, observedAt)

		// Historical bars carry no bid/ask; the last traded price stands in
		// as the representative price.
		greeks, haveGreeks := collector.ComputeAnalytics(rec, opt.LastPrice, b.riskFreeRate)

		if err := b.store.SaveAnalytics(ctx, rec); err != nil {
			b.log.WithError(err).WithField("contract", opt.Contract.Symbol).Error("failed to store analytics record")
			continue
		}
		stored++

		if haveGreeks {
			if err := b.store.SaveGreeks(ctx, collector.GreeksRecordFor(rec, greeks)); err != nil {
				b.log.WithError(err).WithField("contract", opt.Contract.Symbol).Error("failed to store greeks")
			}
		}
		if rec.ImpliedVolatility != nil {
			if err := b.store.SaveIVPoint(ctx, collector.IVPointFor(rec)); err != nil {
				b.log.WithError(err).WithField("contract", opt.Contract.Symbol).Error("failed to store iv point")
			}
		}
	}

	return stored, nil
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
