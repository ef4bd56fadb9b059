package collector

import (
	"context"
	"time"

	"options-collector/internal/models"
	"options-collector/internal/pricing"
	"options-collector/internal/storage"

	"github.com/sirupsen/logrus"
)

// defaultVolatility is the sigma used for Greeks when the IV search fails.
// The analytics record's implied-volatility column stays empty in that case.
const defaultVolatility = 0.20

// MarketData is the provider capability the collector consumes.
type MarketData interface {
	ListContracts(ctx context.Context, underlying string) ([]models.OptionContract, error)
	GetQuotes(ctx context.Context, underlying string, symbols []string) (map[string]models.QuoteSnapshot, error)
	GetUnderlyingPrice(ctx context.Context, underlying string) (*float64, error)
}

// Collector pulls the full option chain for one underlying, derives
// analytics per contract and persists the results.
type Collector struct {
	provider     MarketData
	store        storage.Store
	symbol       string
	riskFreeRate float64
	log          *logrus.Entry
}

func New(provider MarketData, store storage.Store, symbol string, riskFreeRate float64) *Collector {
	return &Collector{
		provider:     provider,
		store:        store,
		symbol:       symbol,
		riskFreeRate: riskFreeRate,
		log:          logrus.WithField("component", "collector"),
	}
}

// CollectOnce runs a single collection pass and returns the number of
// analytics records stored. A failure on one contract is logged and skipped;
// it never aborts the rest of the chain.
func (c *Collector) CollectOnce(ctx context.Context) (int, error) {
	c.log.WithField("symbol", c.symbol).Info("starting collection pass")

	contracts, err := c.provider.ListContracts(ctx, c.symbol)
	if err != nil {
		return 0, err
	}
	if len(contracts) == 0 {
		c.log.WithField("symbol", c.symbol).Warn("no option contracts found")
		return 0, nil
	}

	underlyingPrice, err := c.provider.GetUnderlyingPrice(ctx, c.symbol)
	if err != nil {
		c.log.WithError(err).Warn("underlying price unavailable")
		underlyingPrice = nil
	}

	symbols := make([]string, 0, len(contracts))
	for _, ct := range contracts {
		symbols = append(symbols, ct.Symbol)
	}
	quotes, err := c.provider.GetQuotes(ctx, c.symbol, symbols)
	if err != nil {
		c.log.WithError(err).Warn("quote snapshots unavailable")
		quotes = map[string]models.QuoteSnapshot{}
	}

	asOf := time.Now().UTC()
	stored := 0
	for _, contract := range contracts {
		if ctx.Err() != nil {
			return stored, ctx.Err()
		}

		rec := Normalize(contract, quotes[contract.Symbol], underlyingPrice, asOf)
		greeks, haveGreeks := ComputeAnalytics(rec, RepresentativePrice(rec), c.riskFreeRate)

		if err := c.store.SaveAnalytics(ctx, rec); err != nil {
			c.log.WithError(err).WithField("contract", contract.Symbol).Error("failed to store analytics record")
			continue
		}
		stored++

		if haveGreeks {
			if err := c.store.SaveGreeks(ctx, GreeksRecordFor(rec, greeks)); err != nil {
				c.log.WithError(err).WithField("contract", contract.Symbol).Error("failed to store greeks")
			}
		}
		if rec.ImpliedVolatility != nil {
			if err := c.store.SaveIVPoint(ctx, IVPointFor(rec)); err != nil {
				c.log.WithError(err).WithField("contract", contract.Symbol).Error("failed to store iv point")
			}
		}
	}

	c.log.WithFields(logrus.Fields{"symbol": c.symbol, "stored": stored}).Info("collection pass complete")
	return stored, nil
}

// ComputeAnalytics solves for implied volatility and computes the Greeks for
// a normalized record. The record's ImpliedVolatility is set only when the
// solver converged; the Greeks fall back to defaultVolatility otherwise.
// Returns false when any required input (underlying price, time to maturity,
// market price) is missing, in which case nothing was computed.
func ComputeAnalytics(rec *models.OptionRecord, marketPrice *float64, riskFreeRate float64) (pricing.Greeks, bool) {
	if rec.UnderlyingPrice == nil || rec.TimeToMaturity == nil || marketPrice == nil {
		return pricing.Greeks{}, false
	}

	sigma := defaultVolatility
	iv, ok := pricing.ImpliedVolatility(*marketPrice, *rec.UnderlyingPrice, rec.StrikePrice, *rec.TimeToMaturity, riskFreeRate, rec.OptionType)
	if ok {
		sigma = iv
		rec.ImpliedVolatility = &iv
	}

	return pricing.BlackScholes(*rec.UnderlyingPrice, rec.StrikePrice, *rec.TimeToMaturity, riskFreeRate, sigma, rec.OptionType), true
}

// GreeksRecordFor builds the persisted Greeks row for a stored analytics
// record, carrying its foreign key and observation timestamp.
func GreeksRecordFor(rec *models.OptionRecord, g pricing.Greeks) *models.GreeksRecord {
	return &models.GreeksRecord{
		OptionID:       rec.ID,
		Symbol:         rec.Symbol,
		StrikePrice:    rec.StrikePrice,
		ExpirationDate: rec.ExpirationDate,
		OptionType:     rec.OptionType,
		Delta:          g.Delta,
		Gamma:          g.Gamma,
		Theta:          g.Theta,
		Vega:           g.Vega,
		Rho:            g.Rho,
		CreatedAt:      rec.CreatedAt,
	}
}

// IVPointFor builds the IV-evolution row for a record whose solve converged.
func IVPointFor(rec *models.OptionRecord) *models.IVPoint {
	return &models.IVPoint{
		Symbol:            rec.Symbol,
		StrikePrice:       rec.StrikePrice,
		ExpirationDate:    rec.ExpirationDate,
		OptionType:        rec.OptionType,
		ImpliedVolatility: *rec.ImpliedVolatility,
		TimeToMaturity:    rec.TimeToMaturity,
		RecordedAt:        rec.CreatedAt,
	}
}
