package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAlphaVantage_ParsesWeeklySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "TIME_SERIES_WEEKLY_ADJUSTED" {
			t.Errorf("unexpected function param: %s", got)
		}
		fmt.Fprint(w, `{
			"Weekly Adjusted Time Series": {
				"2024-05-10": {"5. adjusted close": "182.25", "6. volume": "54000000"},
				"2024-05-03": {"5. adjusted close": "180.10", "6. volume": "51000000"},
				"2024-04-26": {"5. adjusted close": "178.50", "6. volume": "49000000"}
			}
		}`)
	}))
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	s, err := av.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", s.Len())
	}
	if !s.First().Date.Before(s.Last().Date) {
		t.Error("series must be sorted ascending by date")
	}
	if s.Last().Price != 182.25 {
		t.Errorf("expected last price 182.25, got %.2f", s.Last().Price)
	}
	if s.Last().Volume != 54000000 {
		t.Errorf("expected volume 54000000, got %d", s.Last().Volume)
	}
}

func TestAlphaVantage_RateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	}))
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.Fetch(context.Background(), "AAPL")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestAlphaVantage_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call."}`)
	}))
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.Fetch(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected an error for an API error message")
	}
	if errors.Is(err, ErrNoData) || errors.Is(err, ErrRateLimited) {
		t.Errorf("API error should be a plain source failure, got %v", err)
	}
}

func TestAlphaVantage_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bestMatches": [
			{"1. symbol": "SHOP", "2. name": "Shopify Inc"},
			{"1. symbol": "SHOP.TRT", "2. name": "Shopify Inc TSX"}
		]}`)
	}))
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	found, err := av.Search(context.Background(), "shop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("expected a case-insensitive exact match for SHOP")
	}

	found, err = av.Search(context.Background(), "SHO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("prefix matches must not validate a symbol")
	}
}

func TestFMP_ParsesHistorical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol": "MSFT", "historical": [
			{"date": "2024-05-10", "adjClose": 407.54, "volume": 18000000},
			{"date": "2024-05-09", "adjClose": 405.12, "volume": 17000000},
			{"date": "2024-05-08", "adjClose": 0, "volume": 0},
			{"date": "2024-05-07", "adjClose": 403.88, "volume": 16500000}
		]}`)
	}))
	defer srv.Close()

	f := NewFMP("demo", srv.URL)
	s, err := f.Fetch(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 valid points (zero price dropped), got %d", s.Len())
	}
	if s.Last().Price != 407.54 {
		t.Errorf("expected last price 407.54, got %.2f", s.Last().Price)
	}
}

func TestFMP_EmptyPayloadIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	f := NewFMP("demo", srv.URL)
	_, err := f.Fetch(context.Background(), "NOPE")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestYahoo_ParsesChartWithNulls(t *testing.T) {
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	ts1 := base.Unix()
	ts2 := base.AddDate(0, 0, 7).Unix()
	ts3 := base.AddDate(0, 0, 14).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart": {"result": [{
			"timestamp": [%d, %d, %d],
			"indicators": {
				"quote": [{"close": [100.5, null, 104.2], "volume": [1000000, null, 1200000]}],
				"adjclose": [{"adjclose": [99.8, null, 103.9]}]
			}
		}], "error": null}}`, ts1, ts2, ts3)
	}))
	defer srv.Close()

	y := NewYahoo(srv.URL)
	s, err := y.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 points (null bar skipped), got %d", s.Len())
	}
	// Adjusted close preferred over raw close.
	if s.First().Price != 99.8 {
		t.Errorf("expected adjclose 99.8, got %.2f", s.First().Price)
	}
}

func TestYahoo_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	y := NewYahoo(srv.URL)
	_, err := y.Fetch(context.Background(), "GONE")
	if err == nil {
		t.Fatal("expected an error for a chart-level error payload")
	}
}
