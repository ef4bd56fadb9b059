package models

import "time"

// OptionContract identifies one tradable contract as listed by the provider.
// Immutable once fetched.
type OptionContract struct {
	Symbol           string    // contract identifier, e.g. SPY240621C00450000
	UnderlyingSymbol string    // e.g. SPY
	OptionType       string    // Call or Put
	StrikePrice      float64   // positive
	ExpirationDate   time.Time // calendar date, midnight UTC
}

// QuoteSnapshot is the provider's latest view of a contract. Any subset of
// the prices may be absent.
type QuoteSnapshot struct {
	BidPrice  *float64
	AskPrice  *float64
	LastPrice *float64
	Timestamp *time.Time
}

// HistoricalOption couples a contract with its daily bar for one past date.
// Historical bars carry no bid/ask, only a traded close.
type HistoricalOption struct {
	Contract        OptionContract
	LastPrice       *float64
	UnderlyingPrice *float64
	Timestamp       *time.Time // bar timestamp when the provider supplied one
}
