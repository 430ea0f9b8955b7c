package model

import "time"

// Origin identifies which data source produced a series.
type Origin string

const (
	OriginPrimary   Origin = "alphavantage"
	OriginBackup1   Origin = "fmp"
	OriginBackup2   Origin = "yahoo"
	OriginSynthetic Origin = "synthetic"
)

// PricePoint is a single weekly observation: adjusted close plus volume.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"`
}

// PriceSeries holds up to one year of price history for a symbol,
// sorted ascending by date.
type PriceSeries struct {
	Symbol     string       `json:"symbol"`
	Points     []PricePoint `json:"points"`
	Origin     Origin       `json:"origin"`
	IsFallback bool         `json:"isFallback"`
	FetchedAt  time.Time    `json:"fetchedAt"`
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Points) }

// First returns the earliest point. Callers must check Len first.
func (s *PriceSeries) First() PricePoint { return s.Points[0] }

// Last returns the most recent point. Callers must check Len first.
func (s *PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Prices returns the price column.
func (s *PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// SpanMonths returns the calendar span between the first and last
// observation in whole months.
func (s *PriceSeries) SpanMonths() int {
	if len(s.Points) < 2 {
		return 0
	}
	first, last := s.First().Date, s.Last().Date
	return (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
}

// MinMaxPrice scans the series for its lowest and highest prices.
func (s *PriceSeries) MinMaxPrice() (min, max float64) {
	if len(s.Points) == 0 {
		return 0, 0
	}
	min, max = s.Points[0].Price, s.Points[0].Price
	for _, p := range s.Points[1:] {
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	return min, max
}

// PercentChange returns the total price change over the series in percent.
func (s *PriceSeries) PercentChange() float64 {
	if len(s.Points) < 2 || s.First().Price == 0 {
		return 0
	}
	return (s.Last().Price/s.First().Price - 1) * 100
}

// ContentHash is a cheap debug fingerprint (sum of price x position) used
// to verify that two sources did not hand back identical payloads.
func (s *PriceSeries) ContentHash() float64 {
	var h float64
	for i, p := range s.Points {
		h += p.Price * float64(i+1)
	}
	return h
}
