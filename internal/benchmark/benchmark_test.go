package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PikaChewey/Sharpey/internal/model"
)

type mockResolver struct {
	resolve func(symbol string) (*model.PriceSeries, error)
}

func (m *mockResolver) Resolve(_ context.Context, symbol string, _ bool) (*model.PriceSeries, error) {
	return m.resolve(symbol)
}

func risingSeries(symbol string) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: symbol, Origin: model.OriginPrimary}
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 52; i++ {
		s.Points = append(s.Points, model.PricePoint{
			Date:  start.AddDate(0, 0, 7*i),
			Price: 100 * (1 + 0.003*float64(i)),
		})
	}
	return s
}

func TestBenchmarks_StaticDefaults(t *testing.T) {
	tr := NewTracker(nil)
	marks := tr.Benchmarks()
	if len(marks) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(marks))
	}

	want := map[string]float64{"SPY": 0.42, "QQQ": 0.46, "DIA": 0.39}
	for _, b := range marks {
		if b.Live {
			t.Errorf("%s must start static", b.Ticker)
		}
		if want[b.Ticker] != b.SharpeRatio {
			t.Errorf("%s: expected static Sharpe %.2f, got %.2f", b.Ticker, want[b.Ticker], b.SharpeRatio)
		}
	}
}

func TestRefresh_GoesLiveOnRealData(t *testing.T) {
	tr := NewTracker(&mockResolver{resolve: func(symbol string) (*model.PriceSeries, error) {
		return risingSeries(symbol), nil
	}})

	tr.Refresh(context.Background())

	for _, b := range tr.Benchmarks() {
		if !b.Live {
			t.Errorf("%s should be live after a successful refresh", b.Ticker)
		}
		if b.SharpeRatio == 0 {
			t.Errorf("%s: expected a recomputed Sharpe ratio", b.Ticker)
		}
	}
}

func TestRefresh_KeepsStaticOnFailure(t *testing.T) {
	tr := NewTracker(&mockResolver{resolve: func(string) (*model.PriceSeries, error) {
		return nil, errors.New("all sources down")
	}})

	tr.Refresh(context.Background())

	for _, b := range tr.Benchmarks() {
		if b.Live {
			t.Errorf("%s must stay static when the refresh fails", b.Ticker)
		}
	}
}

func TestRefresh_IgnoresSyntheticData(t *testing.T) {
	tr := NewTracker(&mockResolver{resolve: func(symbol string) (*model.PriceSeries, error) {
		s := risingSeries(symbol)
		s.Origin = model.OriginSynthetic
		s.IsFallback = true
		return s, nil
	}})

	tr.Refresh(context.Background())

	want := map[string]float64{"SPY": 0.42, "QQQ": 0.46, "DIA": 0.39}
	for _, b := range tr.Benchmarks() {
		if b.Live {
			t.Errorf("%s must not go live on synthetic data", b.Ticker)
		}
		if b.SharpeRatio != want[b.Ticker] {
			t.Errorf("%s: static figure must be preserved, got %.2f", b.Ticker, b.SharpeRatio)
		}
	}
}

func TestRefresh_PartialFailure(t *testing.T) {
	tr := NewTracker(&mockResolver{resolve: func(symbol string) (*model.PriceSeries, error) {
		if symbol == "QQQ" {
			return nil, errors.New("rate limited")
		}
		return risingSeries(symbol), nil
	}})

	tr.Refresh(context.Background())

	for _, b := range tr.Benchmarks() {
		if b.Ticker == "QQQ" {
			if b.Live || b.SharpeRatio != 0.46 {
				t.Errorf("QQQ must keep its static figure: %+v", b)
			}
		} else if !b.Live {
			t.Errorf("%s should be live", b.Ticker)
		}
	}
}
