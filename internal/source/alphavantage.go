package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// AlphaVantage is the primary data source. It requests the weekly
// adjusted time series; errors often arrive inside a 200 response as
// "Error Message", "Note" or "Information" fields.
type AlphaVantage struct {
	apiKey string
	client *resty.Client
}

// NewAlphaVantage builds the primary source client. baseURL is
// overridable for tests; empty means the public endpoint.
func NewAlphaVantage(apiKey, baseURL string) *AlphaVantage {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(RequestTimeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		})
	return &AlphaVantage{apiKey: apiKey, client: client}
}

func (a *AlphaVantage) Name() string { return string(model.OriginPrimary) }

func (a *AlphaVantage) Fetch(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function":   "TIME_SERIES_WEEKLY_ADJUSTED",
			"symbol":     symbol,
			"apikey":     a.apiKey,
			"outputsize": "full",
		}).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("alphavantage: status %d", resp.StatusCode())
	}

	var raw struct {
		ErrorMessage string                       `json:"Error Message"`
		Note         string                       `json:"Note"`
		Information  string                       `json:"Information"`
		Weekly       map[string]map[string]string `json:"Weekly Adjusted Time Series"`
	}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if raw.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage: %s", raw.ErrorMessage)
	}
	// Note/Information fields carry rate-limit messages in a 200 body.
	if raw.Note != "" || raw.Information != "" {
		return nil, fmt.Errorf("%w: %s%s", ErrRateLimited, raw.Note, raw.Information)
	}
	if len(raw.Weekly) == 0 {
		return nil, fmt.Errorf("%w: empty weekly time series for %s", ErrNoData, symbol)
	}

	series := &model.PriceSeries{
		Symbol:    symbol,
		Origin:    model.OriginPrimary,
		FetchedAt: time.Now(),
	}
	for dateStr, fields := range raw.Weekly {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(fields["5. adjusted close"]), 64)
		if err != nil || price <= 0 {
			continue
		}
		volume, _ := strconv.ParseInt(strings.TrimSpace(fields["6. volume"]), 10, 64)
		series.Points = append(series.Points, model.PricePoint{Date: date, Price: price, Volume: volume})
	}
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("%w: no parseable points for %s", ErrNoData, symbol)
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series, nil
}

// Search checks the SYMBOL_SEARCH endpoint for an exact, case-insensitive
// symbol match. Used by the symbol validator.
func (a *AlphaVantage) Search(ctx context.Context, symbol string) (bool, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "SYMBOL_SEARCH",
			"keywords": symbol,
			"apikey":   a.apiKey,
		}).
		Get("/query")
	if err != nil {
		return false, fmt.Errorf("symbol search: %w", err)
	}
	if !resp.IsSuccess() {
		return false, fmt.Errorf("symbol search: status %d", resp.StatusCode())
	}

	var raw struct {
		BestMatches []map[string]string `json:"bestMatches"`
	}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return false, fmt.Errorf("symbol search decode: %w", err)
	}
	for _, match := range raw.BestMatches {
		if strings.EqualFold(match["1. symbol"], symbol) {
			return true, nil
		}
	}
	return false, nil
}
