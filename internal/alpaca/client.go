package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"options-collector/internal/models"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	contractsPageLimit = 500
	barsChunkSize      = 100
)

// Client talks to the Alpaca trading API (contract listings) and market-data
// API (snapshots and bars). All requests share one rate limiter sized for the
// free-tier 200 requests/minute budget.
type Client struct {
	trading *resty.Client
	data    *resty.Client
	limiter *rate.Limiter
}

func NewClient(apiKey, apiSecret, tradingURL, dataURL string) *Client {
	newAPI := func(baseURL string) *resty.Client {
		c := resty.New()
		c.SetBaseURL(baseURL)
		c.SetTimeout(30 * time.Second)
		c.SetHeader("APCA-API-KEY-ID", apiKey)
		c.SetHeader("APCA-API-SECRET-KEY", apiSecret)
		return c
	}
	return &Client{
		trading: newAPI(tradingURL),
		data:    newAPI(dataURL),
		limiter: rate.NewLimiter(rate.Limit(200.0/60.0), 10),
	}
}

// ListContracts fetches every active option contract on the underlying,
// following pagination. Contracts the API returns malformed are dropped here
// so the core never sees an invalid record.
func (c *Client) ListContracts(ctx context.Context, underlying string) ([]models.OptionContract, error) {
	return c.listContracts(ctx, underlying, nil)
}

func (c *Client) listContracts(ctx context.Context, underlying string, expirationGTE *time.Time) ([]models.OptionContract, error) {
	var contracts []models.OptionContract
	pageToken := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req := c.trading.R().SetContext(ctx).
			SetQueryParam("underlying_symbols", underlying).
			SetQueryParam("limit", fmt.Sprintf("%d", contractsPageLimit))
		if expirationGTE != nil {
			req.SetQueryParam("expiration_date_gte", expirationGTE.Format("2006-01-02"))
		}
		if pageToken != "" {
			req.SetQueryParam("page_token", pageToken)
		}

		resp, err := req.Get("/v2/options/contracts")
		if err != nil {
			return nil, fmt.Errorf("list contracts: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("list contracts: %s: %s", resp.Status(), resp.Body())
		}

		var page contractsResponse
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, fmt.Errorf("list contracts: decode: %w", err)
		}

		for _, raw := range page.OptionContracts {
			ct, err := raw.toContract()
			if err != nil {
				continue
			}
			contracts = append(contracts, ct)
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	return contracts, nil
}

// GetQuotes returns the latest quote/trade snapshot for each contract on the
// underlying's chain, keyed by contract symbol. When symbols is non-empty the
// result is filtered to those contracts. Zero prices from the feed mean "no
// quote" and come back absent.
func (c *Client) GetQuotes(ctx context.Context, underlying string, symbols []string) (map[string]models.QuoteSnapshot, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	quotes := make(map[string]models.QuoteSnapshot)
	pageToken := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req := c.data.R().SetContext(ctx).
			SetQueryParam("feed", "indicative").
			SetQueryParam("limit", "1000")
		if pageToken != "" {
			req.SetQueryParam("page_token", pageToken)
		}

		resp, err := req.Get("/v1beta1/options/snapshots/" + underlying)
		if err != nil {
			return nil, fmt.Errorf("option snapshots: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("option snapshots: %s: %s", resp.Status(), resp.Body())
		}

		var page snapshotsResponse
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, fmt.Errorf("option snapshots: decode: %w", err)
		}

		for symbol, snap := range page.Snapshots {
			if len(wanted) > 0 && !wanted[symbol] {
				continue
			}
			quotes[symbol] = snap.toQuote()
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	return quotes, nil
}

// GetUnderlyingPrice returns the latest daily-bar close of the underlying,
// or nil when no bar is available.
func (c *Client) GetUnderlyingPrice(ctx context.Context, underlying string) (*float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.data.R().SetContext(ctx).Get("/v2/stocks/" + underlying + "/bars/latest")
	if err != nil {
		return nil, fmt.Errorf("underlying price: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("underlying price: %s: %s", resp.Status(), resp.Body())
	}

	var out latestBarResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("underlying price: decode: %w", err)
	}
	if out.Bar == nil || out.Bar.Close == 0 {
		return nil, nil
	}
	return &out.Bar.Close, nil
}

// GetOptionsForDate assembles the historical view for one past date: every
// contract that was listed and traded that day, with its daily close and the
// underlying's close. Contracts without a bar for the date are omitted.
func (c *Client) GetOptionsForDate(ctx context.Context, underlying string, date time.Time) ([]models.HistoricalOption, error) {
	contracts, err := c.listContracts(ctx, underlying, &date)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, nil
	}

	underlyingClose, err := c.underlyingCloseOn(ctx, underlying, date)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(contracts))
	for _, ct := range contracts {
		symbols = append(symbols, ct.Symbol)
	}
	bars, err := c.optionBarsOn(ctx, symbols, date)
	if err != nil {
		return nil, err
	}

	var options []models.HistoricalOption
	for _, ct := range contracts {
		bar, ok := bars[ct.Symbol]
		if !ok {
			continue
		}
		closePrice := bar.Close
		ts := bar.Timestamp
		options = append(options, models.HistoricalOption{
			Contract:        ct,
			LastPrice:       &closePrice,
			UnderlyingPrice: underlyingClose,
			Timestamp:       &ts,
		})
	}

	return options, nil
}

func (c *Client) underlyingCloseOn(ctx context.Context, underlying string, date time.Time) (*float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.data.R().SetContext(ctx).
		SetQueryParam("timeframe", "1Day").
		SetQueryParam("start", date.Format("2006-01-02")).
		SetQueryParam("end", date.AddDate(0, 0, 1).Format("2006-01-02")).
		SetQueryParam("limit", "1").
		Get("/v2/stocks/" + underlying + "/bars")
	if err != nil {
		return nil, fmt.Errorf("underlying bars: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("underlying bars: %s: %s", resp.Status(), resp.Body())
	}

	var out stockBarsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("underlying bars: decode: %w", err)
	}
	if len(out.Bars) == 0 {
		return nil, nil
	}
	return &out.Bars[0].Close, nil
}

func (c *Client) optionBarsOn(ctx context.Context, symbols []string, date time.Time) (map[string]barJSON, error) {
	bars := make(map[string]barJSON)

	for start := 0; start < len(symbols); start += barsChunkSize {
		end := start + barsChunkSize
		if end > len(symbols) {
			end = len(symbols)
		}

		pageToken := ""
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}

			req := c.data.R().SetContext(ctx).
				SetQueryParam("symbols", joinSymbols(symbols[start:end])).
				SetQueryParam("timeframe", "1Day").
				SetQueryParam("start", date.Format("2006-01-02")).
				SetQueryParam("end", date.AddDate(0, 0, 1).Format("2006-01-02"))
			if pageToken != "" {
				req.SetQueryParam("page_token", pageToken)
			}

			resp, err := req.Get("/v1beta1/options/bars")
			if err != nil {
				return nil, fmt.Errorf("option bars: %w", err)
			}
			if resp.IsError() {
				return nil, fmt.Errorf("option bars: %s: %s", resp.Status(), resp.Body())
			}

			var page optionBarsResponse
			if err := json.Unmarshal(resp.Body(), &page); err != nil {
				return nil, fmt.Errorf("option bars: decode: %w", err)
			}

			for symbol, symbolBars := range page.Bars {
				if len(symbolBars) > 0 {
					bars[symbol] = symbolBars[0]
				}
			}

			if page.NextPageToken == nil || *page.NextPageToken == "" {
				break
			}
			pageToken = *page.NextPageToken
		}
	}

	return bars, nil
}
