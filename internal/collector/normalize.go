package collector

import (
	"time"

	"options-collector/internal/models"
)

// Normalize folds a contract, its quote snapshot and the underlying price
// into a draft analytics record observed at asOf. The record's CreatedAt is
// always set explicitly; it is never left for the database to default.
func Normalize(contract models.OptionContract, quote models.QuoteSnapshot, underlyingPrice *float64, asOf time.Time) *models.OptionRecord {
	rec := &models.OptionRecord{
		Symbol:          contract.UnderlyingSymbol,
		OptionType:      contract.OptionType,
		StrikePrice:     contract.StrikePrice,
		ExpirationDate:  contract.ExpirationDate,
		BidPrice:        quote.BidPrice,
		AskPrice:        quote.AskPrice,
		LastPrice:       quote.LastPrice,
		UnderlyingPrice: underlyingPrice,
		CreatedAt:       asOf,
	}

	if !contract.ExpirationDate.IsZero() {
		days := int(contract.ExpirationDate.Sub(asOf).Hours() / 24)
		ttm := float64(days) / 365.0
		rec.TimeToMaturity = &ttm
	}

	return rec
}

// RepresentativePrice is the single market price fed to the IV solver: the
// bid/ask mid when both sides are quoted, otherwise the last trade price,
// otherwise nothing. Never bid or ask alone.
func RepresentativePrice(rec *models.OptionRecord) *float64 {
	if rec.BidPrice != nil && rec.AskPrice != nil {
		mid := (*rec.BidPrice + *rec.AskPrice) / 2
		return &mid
	}
	if rec.LastPrice != nil {
		return rec.LastPrice
	}
	return nil
}
