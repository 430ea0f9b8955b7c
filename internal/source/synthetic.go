package source

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// currentPrices holds known last prices (May 2024) used to anchor
// synthetic series. Symbols not listed default to 100.
var currentPrices = map[string]float64{
	"AAPL": 182.25, "MSFT": 407.54, "GOOG": 168.95, "GOOGL": 167.30, "AMZN": 179.62,
	"META": 475.30, "TSLA": 177.58, "NVDA": 121.67, "AMD": 154.15, "INTC": 30.28,
	"JPM": 193.57, "BAC": 38.46, "WFC": 59.04, "GS": 440.24, "V": 274.58, "MA": 455.79,
	"PYPL": 62.14, "PFE": 27.88, "JNJ": 147.60, "UNH": 481.76,
	"PG": 165.97, "KO": 61.95, "PEP": 172.19, "MCD": 254.85, "SBUX": 75.48, "DIS": 113.87,
	"NFLX": 623.37, "T": 17.94, "VZ": 39.81,
	"HD": 342.09, "LOW": 232.11, "TGT": 149.32, "WMT": 61.27, "COST": 731.31,
	"XOM": 113.49, "CVX": 157.36, "BP": 36.09, "SHEL": 69.33,
	"SPY": 516.64, "QQQ": 432.95, "DIA": 382.69, "IWM": 204.65,
}

// KnownPrice returns the anchor price for a symbol, or the default of 100.
func KnownPrice(symbol string) float64 {
	if p, ok := currentPrices[symbol]; ok {
		return p
	}
	return 100
}

// shockShape selects how a historical event perturbs the series.
type shockShape int

const (
	// shockDip is an abrupt drop that tapers off linearly over TaperDays.
	shockDip shockShape = iota
	// shockTrough is a sine-shaped decline across the whole event window.
	shockTrough
)

// marketEvent describes one historical shock window. Kept as data so the
// event set can be reviewed and tested independently of the generator.
type marketEvent struct {
	Start     time.Time
	End       time.Time
	Shape     shockShape
	Magnitude float64 // fractional price impact at peak, negative for drops
	TaperDays float64 // dip only: days until the shock fades out
}

var marketEvents = []marketEvent{
	{
		// COVID crash, March 2020.
		Start:     time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		Shape:     shockDip,
		Magnitude: -0.25,
		TaperDays: 30,
	},
	{
		// 2022 rate-hike decline.
		Start:     time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2022, 10, 15, 0, 0, 0, 0, time.UTC),
		Shape:     shockTrough,
		Magnitude: -0.15,
	},
}

func (e marketEvent) apply(date time.Time, price float64) float64 {
	if date.Before(e.Start) || date.After(e.End) {
		return price
	}
	switch e.Shape {
	case shockDip:
		days := date.Sub(e.Start).Hours() / 24
		if days < e.TaperDays {
			return price + e.Magnitude*price*(1-days/e.TaperDays)
		}
	case shockTrough:
		progress := date.Sub(e.Start).Hours() / e.End.Sub(e.Start).Hours()
		return price * (1 + math.Sin(progress*math.Pi)*e.Magnitude)
	}
	return price
}

// Synthetic generates a plausible one-year weekly series anchored on the
// known current price. It makes no claim of market accuracy; it exists so
// the UI always has something to render when every remote source fails.
type Synthetic struct {
	now func() time.Time
}

func NewSynthetic() *Synthetic { return &Synthetic{now: time.Now} }

// NewSyntheticAt pins the generator's clock, for tests.
func NewSyntheticAt(now func() time.Time) *Synthetic { return &Synthetic{now: now} }

func (g *Synthetic) Name() string { return string(model.OriginSynthetic) }

// Fetch never fails; it satisfies Source so the generator can sit at the
// end of the resolver's strategy list.
func (g *Synthetic) Fetch(_ context.Context, symbol string) (*model.PriceSeries, error) {
	return g.Generate(symbol), nil
}

const syntheticWeeks = 52

// Generate synthesizes 52 weekly points interpolating from an assumed
// price one year ago (current x 0.88, a 12% annual-gain baseline) up to
// the known current price, with weekly noise, a cyclical sine term, and
// any overlapping historical-event shocks. Output is deterministic per
// symbol: the noise generator is seeded from the symbol itself.
func (g *Synthetic) Generate(symbol string) *model.PriceSeries {
	currentPrice := KnownPrice(symbol)
	startingPrice := currentPrice * 0.88

	// Anchor on the first of the current month so dates line up with
	// weekly observations from real sources.
	now := g.now()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(-1, 0, 0)

	rng := rand.New(rand.NewSource(seed(symbol)))

	series := &model.PriceSeries{
		Symbol:     symbol,
		Origin:     model.OriginSynthetic,
		IsFallback: true,
		FetchedAt:  now,
	}

	_, known := currentPrices[symbol]
	baseVolume := 5000000.0
	if known {
		baseVolume = 10000000.0
	}

	date := start
	for week := 0; week < syntheticWeeks && !date.After(end); week++ {
		progress := float64(week) / syntheticWeeks

		price := startingPrice + (currentPrice-startingPrice)*progress

		noise := (rng.Float64()*2 - 1) * 0.005 * price
		cycle := math.Sin(progress*math.Pi*3) * 0.05 * price

		for _, event := range marketEvents {
			price = event.apply(date, price)
		}
		price += noise + cycle
		if price < 0.1 {
			price = 0.1
		}

		// Volume swells with the size of the week's move.
		volumeScale := 1 + math.Abs(noise/price)*10
		series.Points = append(series.Points, model.PricePoint{
			Date:   date,
			Price:  price,
			Volume: int64(baseVolume * volumeScale),
		})

		date = date.AddDate(0, 0, 7)
	}
	return series
}

func seed(symbol string) int64 {
	var h int64
	for _, c := range symbol {
		h = h*31 + int64(c)
	}
	return h
}
