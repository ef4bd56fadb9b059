package alpaca

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"options-collector/internal/models"
)

type contractsResponse struct {
	OptionContracts []contractJSON `json:"option_contracts"`
	NextPageToken   *string        `json:"next_page_token"`
}

// contractJSON mirrors the trading API's contract shape. Strike prices come
// back as decimal strings.
type contractJSON struct {
	Symbol           string `json:"symbol"`
	UnderlyingSymbol string `json:"underlying_symbol"`
	Type             string `json:"type"`
	StrikePrice      string `json:"strike_price"`
	ExpirationDate   string `json:"expiration_date"`
}

func (c contractJSON) toContract() (models.OptionContract, error) {
	if c.Symbol == "" || c.UnderlyingSymbol == "" {
		return models.OptionContract{}, fmt.Errorf("contract missing symbol")
	}
	if c.Type != models.Call && c.Type != models.Put {
		return models.OptionContract{}, fmt.Errorf("contract %s: bad type %q", c.Symbol, c.Type)
	}
	strike, err := strconv.ParseFloat(c.StrikePrice, 64)
	if err != nil || strike <= 0 {
		return models.OptionContract{}, fmt.Errorf("contract %s: bad strike %q", c.Symbol, c.StrikePrice)
	}
	expiration, err := time.Parse("2006-01-02", c.ExpirationDate)
	if err != nil {
		return models.OptionContract{}, fmt.Errorf("contract %s: bad expiration %q", c.Symbol, c.ExpirationDate)
	}
	return models.OptionContract{
		Symbol:           c.Symbol,
		UnderlyingSymbol: c.UnderlyingSymbol,
		OptionType:       c.Type,
		StrikePrice:      strike,
		ExpirationDate:   expiration,
	}, nil
}

type snapshotsResponse struct {
	Snapshots     map[string]snapshotJSON `json:"snapshots"`
	NextPageToken *string                 `json:"next_page_token"`
}

type snapshotJSON struct {
	LatestQuote *struct {
		BidPrice  float64   `json:"bp"`
		AskPrice  float64   `json:"ap"`
		Timestamp time.Time `json:"t"`
	} `json:"latestQuote"`
	LatestTrade *struct {
		Price     float64   `json:"p"`
		Timestamp time.Time `json:"t"`
	} `json:"latestTrade"`
}

func (s snapshotJSON) toQuote() models.QuoteSnapshot {
	var q models.QuoteSnapshot
	if s.LatestQuote != nil {
		if s.LatestQuote.BidPrice > 0 {
			bid := s.LatestQuote.BidPrice
			q.BidPrice = &bid
		}
		if s.LatestQuote.AskPrice > 0 {
			ask := s.LatestQuote.AskPrice
			q.AskPrice = &ask
		}
		ts := s.LatestQuote.Timestamp
		q.Timestamp = &ts
	}
	if s.LatestTrade != nil {
		if s.LatestTrade.Price > 0 {
			last := s.LatestTrade.Price
			q.LastPrice = &last
		}
		if q.Timestamp == nil {
			ts := s.LatestTrade.Timestamp
			q.Timestamp = &ts
		}
	}
	return q
}

type barJSON struct {
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    float64   `json:"v"`
	Timestamp time.Time `json:"t"`
}

type latestBarResponse struct {
	Symbol string   `json:"symbol"`
	Bar    *barJSON `json:"bar"`
}

type stockBarsResponse struct {
	Symbol        string    `json:"symbol"`
	Bars          []barJSON `json:"bars"`
	NextPageToken *string   `json:"next_page_token"`
}

type optionBarsResponse struct {
	Bars          map[string][]barJSON `json:"bars"`
	NextPageToken *string              `json:"next_page_token"`
}

func joinSymbols(symbols []string) string {
	return strings.Join(symbols, ",")
}
