package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/PikaChewey/Sharpey/internal/model"
)

func weeklySeries(symbol string, start time.Time, prices []float64) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: symbol}
	for i, p := range prices {
		s.Points = append(s.Points, model.PricePoint{
			Date:   start.AddDate(0, 0, 7*i),
			Price:  p,
			Volume: 1000000,
		})
	}
	return s
}

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAnnualizedReturn_OneYearTwoPoints(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{
		Symbol: "AAPL",
		Points: []model.PricePoint{
			{Date: start, Price: 100},
			{Date: start.AddDate(1, 0, 0), Price: 110},
		},
	}
	got := AnnualizedReturn(s)
	if !almostEqual(got, 0.10, 0.001) {
		t.Errorf("expected ~0.10 for 100->110 over one year, got %.4f", got)
	}
}

func TestAnnualizedReturn_Degenerate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		series *model.PriceSeries
	}{
		{"nil", nil},
		{"empty", &model.PriceSeries{}},
		{"single point", weeklySeries("X", start, []float64{100})},
		{"zero elapsed time", &model.PriceSeries{Points: []model.PricePoint{
			{Date: start, Price: 100},
			{Date: start, Price: 120},
		}}},
	}
	for _, tt := range tests {
		if got := AnnualizedReturn(tt.series); got != 0 {
			t.Errorf("%s: expected 0, got %.4f", tt.name, got)
		}
	}
}

func TestAnnualizedVolatility_ConstantSeriesReturnsFloor(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := weeklySeries("KO", start, []float64{50, 50, 50, 50, 50, 50})
	got := AnnualizedVolatility(s)
	if got != VolatilityFloor {
		t.Errorf("expected floor %.2f for constant series, got %.4f", VolatilityFloor, got)
	}
}

func TestAnnualizedVolatility_WeeklyAnnualization(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Alternating +10% / ~-9.09% weekly returns.
	s := weeklySeries("X", start, []float64{100, 110, 100, 110, 100, 110, 100})
	got := AnnualizedVolatility(s)

	// Period returns alternate between 0.1 and -1/11; population stddev
	// of that sequence annualized by sqrt(52).
	returns := []float64{0.1, -1.0 / 11, 0.1, -1.0 / 11, 0.1, -1.0 / 11}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= 6
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= 6
	want := math.Sqrt(variance) * math.Sqrt(52)

	if !almostEqual(got, want, 1e-9) {
		t.Errorf("expected %.6f, got %.6f", want, got)
	}
}

func TestPeriodsPerYear_GapBands(t *testing.T) {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	series := func(gapDays, n int) *model.PriceSeries {
		s := &model.PriceSeries{}
		for i := 0; i < n; i++ {
			s.Points = append(s.Points, model.PricePoint{
				Date:  start.AddDate(0, 0, gapDays*i),
				Price: 100,
			})
		}
		return s
	}

	tests := []struct {
		name    string
		gapDays int
		want    int
	}{
		{"daily", 1, 252},
		{"weekly", 7, 52},
		// Gaps past two weeks annualize as monthly, including the
		// 15-24 day band.
		{"biweekly-ish", 16, 12},
		{"monthly", 30, 12},
	}
	for _, tt := range tests {
		if got := periodsPerYear(series(tt.gapDays, 10)); got != tt.want {
			t.Errorf("%s: expected %d periods/year, got %d", tt.name, tt.want, got)
		}
	}
}

func TestSharpeRatio(t *testing.T) {
	tests := []struct {
		name       string
		returns    float64
		volatility float64
		want       float64
	}{
		{"zero volatility", 0.10, 0, 0},
		{"basic", 0.12, 0.20, 0.5},
		{"negative excess return", 0.01, 0.10, -0.1},
	}
	for _, tt := range tests {
		got := SharpeRatio(tt.returns, tt.volatility)
		if !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("%s: expected %.4f, got %.4f", tt.name, tt.want, got)
		}
	}
}

func TestCorrelation_IdenticalSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := weeklySeries("A", start, []float64{100, 105, 98, 110, 102, 115})
	b := weeklySeries("B", start, []float64{100, 105, 98, 110, 102, 115})
	got := Correlation(a, b)
	if !almostEqual(got, 1.0, 1e-9) {
		t.Errorf("expected correlation 1.0 for identical series, got %.6f", got)
	}
}

func TestCorrelation_DegenerateFallsBackToDefault(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	flat := weeklySeries("A", start, []float64{100, 100, 100, 100})
	moving := weeklySeries("B", start, []float64{100, 105, 95, 110})
	short := weeklySeries("C", start, []float64{100})

	tests := []struct {
		name string
		a, b *model.PriceSeries
	}{
		{"zero variance", flat, moving},
		{"both zero variance", flat, flat},
		{"unequal lengths", moving, weeklySeries("D", start, []float64{100, 101, 102, 103, 104})},
		{"too short", short, short},
		{"nil", nil, moving},
	}
	for _, tt := range tests {
		got := Correlation(tt.a, tt.b)
		if math.IsNaN(got) {
			t.Fatalf("%s: correlation must never be NaN", tt.name)
		}
		if got != DefaultCorrelation {
			t.Errorf("%s: expected default %.1f, got %.6f", tt.name, DefaultCorrelation, got)
		}
	}
}

func TestCorrelation_InverseSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := weeklySeries("A", start, []float64{100, 110, 100, 110, 100})
	b := weeklySeries("B", start, []float64{110, 100, 110, 100, 110})
	got := Correlation(a, b)
	if got >= 0 {
		t.Errorf("expected negative correlation for inverse series, got %.4f", got)
	}
}

func TestPortfolioVolatility_SingleAssetDegenerate(t *testing.T) {
	got := PortfolioVolatility(1, 0, 0.25, 0.40, 0.5)
	if got != 0.25 {
		t.Errorf("with weight1=100%% portfolio volatility must equal asset1 volatility, got %.4f", got)
	}
}

func TestPortfolioVolatility_PerfectCorrelation(t *testing.T) {
	// With correlation 1 the volatility is the weighted sum.
	got := PortfolioVolatility(0.6, 0.4, 0.20, 0.30, 1.0)
	want := 0.6*0.20 + 0.4*0.30
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
}

func TestPortfolio_ReturnIsLinearBlend(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	a := weeklySeries("AAPL", start, rampPrices(100, 120, 52))
	b := weeklySeries("MSFT", start, rampPrices(200, 230, 52))

	pm := Portfolio(a, b, 60)

	r1 := AnnualizedReturn(a)
	r2 := AnnualizedReturn(b)
	want := 0.6*r1 + 0.4*r2
	if !almostEqual(pm.PortfolioReturn, want, 1e-12) {
		t.Errorf("portfolio return must be the exact 0.6/0.4 blend: want %.8f, got %.8f", want, pm.PortfolioReturn)
	}
	if pm.Stock1 != "AAPL" || pm.Stock2 != "MSFT" {
		t.Errorf("unexpected symbols %q %q", pm.Stock1, pm.Stock2)
	}
	if pm.Weight1 != 60 {
		t.Errorf("expected weight 60, got %.0f", pm.Weight1)
	}
}

func TestPortfolio_SortinoFallsBackToSharpe(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	// Strictly rising prices: no negative returns, so no downside deviation.
	a := weeklySeries("A", start, rampPrices(100, 150, 20))
	b := weeklySeries("B", start, rampPrices(50, 80, 20))

	pm := Portfolio(a, b, 50)
	if pm.PortfolioSortinoRatio != pm.PortfolioSharpeRatio {
		t.Errorf("sortino should equal sharpe with zero downside: %.4f vs %.4f",
			pm.PortfolioSortinoRatio, pm.PortfolioSharpeRatio)
	}
}

func TestAsset_NeverProducesNaN(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []*model.PriceSeries{
		nil,
		{},
		weeklySeries("X", start, []float64{100}),
		weeklySeries("Y", start, []float64{100, 100, 100}),
	}
	for i, s := range series {
		m := Asset(s)
		if math.IsNaN(m.AnnualizedReturn) || math.IsNaN(m.AnnualizedVolatility) || math.IsNaN(m.SharpeRatio) {
			t.Errorf("case %d: metrics contain NaN: %+v", i, m)
		}
		if m.AnnualizedVolatility <= 0 {
			t.Errorf("case %d: volatility must be strictly positive, got %.4f", i, m.AnnualizedVolatility)
		}
	}
}

// rampPrices interpolates linearly from first to last over n points.
func rampPrices(first, last float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = first + (last-first)*float64(i)/float64(n-1)
	}
	return out
}
