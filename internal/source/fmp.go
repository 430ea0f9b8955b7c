package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// FMP is the first backup source (Financial Modeling Prep). It returns
// daily records; the frequency-aware annualization downstream handles
// the denser sampling.
type FMP struct {
	apiKey string
	client *resty.Client
}

func NewFMP(apiKey, baseURL string) *FMP {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com/api/v3"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(RequestTimeout).
		SetHeader("Accept", "application/json")
	return &FMP{apiKey: apiKey, client: client}
}

func (f *FMP) Name() string { return string(model.OriginBackup1) }

func (f *FMP) Fetch(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	now := time.Now()
	from := now.AddDate(-1, 0, 0)

	var raw struct {
		Historical []struct {
			Date     string  `json:"date"`
			AdjClose float64 `json:"adjClose"`
			Volume   int64   `json:"volume"`
		} `json:"historical"`
	}
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"from":   from.Format("2006-01-02"),
			"to":     now.Format("2006-01-02"),
			"apikey": f.apiKey,
		}).
		Get("/historical-price-full/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("fmp request: %w", err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("%w: fmp status 429", ErrRateLimited)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fmp: status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("fmp decode: %w", err)
	}
	if len(raw.Historical) == 0 {
		return nil, fmt.Errorf("%w: empty historical payload for %s", ErrNoData, symbol)
	}

	series := &model.PriceSeries{
		Symbol:    symbol,
		Origin:    model.OriginBackup1,
		FetchedAt: time.Now(),
	}
	for _, rec := range raw.Historical {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil || rec.AdjClose <= 0 {
			continue
		}
		series.Points = append(series.Points, model.PricePoint{
			Date:   date,
			Price:  rec.AdjClose,
			Volume: rec.Volume,
		})
	}
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("%w: no parseable points for %s", ErrNoData, symbol)
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series, nil
}
