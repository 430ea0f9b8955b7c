package metrics

import (
	"math"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// RiskFreeRate is the fixed annual risk-free rate used for Sharpe ratios.
const RiskFreeRate = 0.02

// VolatilityFloor replaces a computed volatility of exactly zero so that
// downstream ratios stay finite.
const VolatilityFloor = 0.01

// DefaultCorrelation is used whenever a correlation cannot be computed
// from the two series (unequal lengths, zero variance, NaN).
const DefaultCorrelation = 0.5

const hoursPerYear = 24 * 365

// AnnualizedReturn computes the simple total return from the first to the
// last price and annualizes it by the elapsed calendar time. Returns 0
// for series shorter than two points or with no elapsed time.
func AnnualizedReturn(s *model.PriceSeries) float64 {
	if s == nil || s.Len() < 2 || s.First().Price <= 0 {
		return 0
	}
	totalReturn := s.Last().Price/s.First().Price - 1
	years := s.Last().Date.Sub(s.First().Date).Hours() / hoursPerYear
	if years <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}

// AnnualizedVolatility computes the population standard deviation of the
// per-period returns and scales it by the square root of the inferred
// periods per year. A result of exactly zero is replaced by
// VolatilityFloor.
func AnnualizedVolatility(s *model.PriceSeries) float64 {
	if s == nil || s.Len() < 2 {
		return VolatilityFloor
	}
	returns := periodReturns(s.Prices())
	if len(returns) == 0 {
		return VolatilityFloor
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	vol := math.Sqrt(variance) * math.Sqrt(float64(periodsPerYear(s)))
	if vol == 0 {
		return VolatilityFloor
	}
	return vol
}

// periodsPerYear infers the sampling frequency from the average gap
// between observations: daily (252), weekly (52), otherwise monthly (12).
func periodsPerYear(s *model.PriceSeries) int {
	if s.Len() < 2 {
		return 12
	}
	span := s.Last().Date.Sub(s.First().Date)
	avgGapDays := span.Hours() / 24 / float64(s.Len()-1)
	switch {
	case avgGapDays <= 3:
		return 252
	case avgGapDays <= 14:
		return 52
	default:
		return 12
	}
}

// SharpeRatio is (returns - RiskFreeRate) / volatility, or 0 when the
// volatility is zero.
func SharpeRatio(returns, volatility float64) float64 {
	if volatility == 0 {
		return 0
	}
	return (returns - RiskFreeRate) / volatility
}

// Correlation computes the Pearson correlation of the per-period return
// series of a and b. Falls back to DefaultCorrelation when the series
// have different lengths, fewer than two points, zero variance, or the
// result is not a number in [-1, 1].
func Correlation(a, b *model.PriceSeries) float64 {
	if a == nil || b == nil || a.Len() != b.Len() || a.Len() < 2 {
		return DefaultCorrelation
	}
	ra := periodReturns(a.Prices())
	rb := periodReturns(b.Prices())

	var meanA, meanB float64
	for i := range ra {
		meanA += ra[i]
		meanB += rb[i]
	}
	meanA /= float64(len(ra))
	meanB /= float64(len(rb))

	var num, denomA, denomB float64
	for i := range ra {
		da := ra[i] - meanA
		db := rb[i] - meanB
		num += da * db
		denomA += da * da
		denomB += db * db
	}
	if denomA <= 0 || denomB <= 0 {
		return DefaultCorrelation
	}
	corr := num / (math.Sqrt(denomA) * math.Sqrt(denomB))
	if math.IsNaN(corr) || corr < -1 || corr > 1 {
		return DefaultCorrelation
	}
	return corr
}

// PortfolioVolatility applies the standard two-asset variance formula.
// Weights are fractions (w1 + w2 = 1).
func PortfolioVolatility(w1, w2, vol1, vol2, correlation float64) float64 {
	return math.Sqrt(w1*w1*vol1*vol1 + w2*w2*vol2*vol2 + 2*w1*w2*vol1*vol2*correlation)
}

// Asset derives the per-asset statistics from a series.
func Asset(s *model.PriceSeries) model.AssetMetrics {
	ret := AnnualizedReturn(s)
	vol := AnnualizedVolatility(s)
	return model.AssetMetrics{
		AnnualizedReturn:     ret,
		AnnualizedVolatility: vol,
		SharpeRatio:          SharpeRatio(ret, vol),
	}
}

// Portfolio blends two assets under a weight split. weight1 is the
// percentage (0..100) allocated to a; the remainder goes to b.
func Portfolio(a, b *model.PriceSeries, weight1 float64) model.PortfolioMetrics {
	w1 := weight1 / 100
	w2 := 1 - w1

	m1 := Asset(a)
	m2 := Asset(b)

	corr := Correlation(a, b)
	ret := w1*m1.AnnualizedReturn + w2*m2.AnnualizedReturn
	vol := PortfolioVolatility(w1, w2, m1.AnnualizedVolatility, m2.AnnualizedVolatility, corr)
	sharpe := SharpeRatio(ret, vol)

	pm := model.PortfolioMetrics{
		Weight1:               weight1,
		Asset1:                m1,
		Asset2:                m2,
		Correlation:           corr,
		PortfolioReturn:       ret,
		PortfolioVolatility:   vol,
		PortfolioSharpeRatio:  sharpe,
		PortfolioSortinoRatio: sortino(a, b, w1, w2, ret, sharpe),
	}
	if a != nil {
		pm.Stock1 = a.Symbol
	}
	if b != nil {
		pm.Stock2 = b.Symbol
	}
	return pm
}

// sortino computes the downside-only ratio from the negative per-period
// returns of each asset, weighted and annualized by sqrt(12). Falls back
// to the Sharpe ratio when no downside deviation exists.
//
// The sqrt(12) factor is applied regardless of sampling frequency, which
// mirrors the historical behavior of this calculation even though the
// volatility annualization above is frequency-aware.
func sortino(a, b *model.PriceSeries, w1, w2, portfolioReturn, sharpe float64) float64 {
	if a == nil || b == nil || a.Len() < 2 || b.Len() < 2 {
		return sharpe
	}
	avgNegative := w1*meanNegativeReturn(a.Prices()) + w2*meanNegativeReturn(b.Prices())
	downside := math.Abs(avgNegative) * math.Sqrt(12)
	if downside == 0 {
		return sharpe
	}
	return portfolioReturn / downside
}

func meanNegativeReturn(prices []float64) float64 {
	var sum float64
	var n int
	for _, r := range periodReturns(prices) {
		if r < 0 {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func periodReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, prices[i]/prices[i-1]-1)
	}
	return out
}
