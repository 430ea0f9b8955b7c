package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// Yahoo is the second backup source, reading the v8 chart endpoint.
// Close/volume arrays can contain nulls for market holidays; those bars
// are skipped.
type Yahoo struct {
	client *resty.Client
}

func NewYahoo(baseURL string) *Yahoo {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(RequestTimeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		})
	return &Yahoo{client: client}
}

func (y *Yahoo) Name() string { return string(model.OriginBackup2) }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) Fetch(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	now := time.Now()
	from := now.AddDate(-1, 0, 0)

	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(from.Unix(), 10),
			"period2":  strconv.FormatInt(now.Unix(), 10),
			"interval": "1wk",
			"events":   "div,split",
		}).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo request: %w", err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("%w: yahoo status 429", ErrRateLimited)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode())
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: empty chart result for %s", ErrNoData, symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	series := &model.PriceSeries{
		Symbol:    symbol,
		Origin:    model.OriginBackup2,
		FetchedAt: time.Now(),
	}
	for i, ts := range result.Timestamp {
		// Prefer adjusted close when the parallel array is present.
		var price float64
		if adjClose != nil && i < len(adjClose) && adjClose[i] != nil {
			price = *adjClose[i]
		} else if i < len(quote.Close) && quote.Close[i] != nil {
			price = *quote.Close[i]
		}
		if price <= 0 {
			continue
		}
		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		series.Points = append(series.Points, model.PricePoint{
			Date:   time.Unix(ts, 0).UTC(),
			Price:  price,
			Volume: volume,
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
