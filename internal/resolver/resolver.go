package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PikaChewey/Sharpey/internal/model"
	"github.com/PikaChewey/Sharpey/internal/source"
)

// Cache TTLs. Error results expire at half the normal TTL so a failed
// symbol is retried sooner than a success is re-validated.
const (
	CacheTTL      = 30 * time.Minute
	ErrorCacheTTL = CacheTTL / 2
)

// Sufficiency thresholds: a usable series needs at least this many
// points covering at least this many calendar months, otherwise the
// resolver falls through to the next source.
const (
	minPoints     = 5
	minSpanMonths = 10
)

var tickerRe = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]+)?$`)

// Error kinds, mirroring the failure taxonomy surfaced to callers.
const (
	KindInvalidSymbol = "invalid_symbol"
	KindExhausted     = "all_sources_exhausted"
)

// Error is the tagged failure value returned by Resolve. No source
// error escapes the resolver's boundary untyped.
type Error struct {
	Kind   string `json:"kind"`
	Symbol string `json:"symbol"`
	Msg    string `json:"error"`
}

func (e *Error) Error() string { return e.Msg }

// Resolver walks an ordered list of source strategies, consulting a
// shared cache and failure registry, and falls back to the synthetic
// generator when every remote source fails.
type Resolver struct {
	sources  []source.Source
	fallback *source.Synthetic
	cache    Cache
	failures *FailureRegistry
	timeout  time.Duration
	now      func() time.Time
}

func New(sources []source.Source, fallback *source.Synthetic, cache Cache, failures *FailureRegistry) *Resolver {
	return &Resolver{
		sources:  sources,
		fallback: fallback,
		cache:    cache,
		failures: failures,
		timeout:  source.RequestTimeout,
		now:      time.Now,
	}
}

// WithClock pins the resolver's clock, for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// WithTimeout overrides the per-call timeout, for tests.
func (r *Resolver) WithTimeout(d time.Duration) *Resolver {
	r.timeout = d
	return r
}

func unifiedKey(symbol string) string { return "stock_" + symbol }

// Resolve returns a populated price series for the symbol or a tagged
// *Error. Sources are attempted in priority order; each is skipped while
// its failure streak is fresh, and the synthetic generator serves as the
// terminal fallback when allowed.
func (r *Resolver) Resolve(ctx context.Context, symbol string, allowFallback bool) (*model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if cached, ok := r.cache.Get(unifiedKey(symbol)); ok {
		switch v := cached.(type) {
		case *model.PriceSeries:
			log.Printf("[INFO] %s: serving cached series (origin=%s)", symbol, v.Origin)
			return v, nil
		case *Error:
			return nil, v
		}
	}

	common := source.IsCommon(symbol)
	if !common && !tickerRe.MatchString(symbol) {
		resErr := &Error{Kind: KindInvalidSymbol, Symbol: symbol, Msg: fmt.Sprintf("invalid stock symbol: %s", symbol)}
		r.cache.Set(unifiedKey(symbol), resErr, ErrorCacheTTL)
		return nil, resErr
	}

	// Common symbols get their fallback pre-generated so a total remote
	// outage adds no extra latency.
	var eager *model.PriceSeries
	if common {
		eager = r.fallback.Generate(symbol)
	}

	to := r.now()
	from := to.AddDate(-1, 0, 0)

	for _, src := range r.sources {
		name := src.Name()

		if r.failures.ShouldSkip(name, symbol) {
			log.Printf("[WARN] %s: skipping %s, failure backoff engaged", symbol, name)
			continue
		}

		if cached, ok := r.cache.Get(name + "_" + symbol); ok {
			if series, ok := cached.(*model.PriceSeries); ok {
				log.Printf("[INFO] %s: serving %s series from per-source cache", symbol, name)
				r.cache.Set(unifiedKey(symbol), series, CacheTTL)
				return series, nil
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		series, err := src.Fetch(fetchCtx, symbol)
		cancel()
		if err != nil {
			if errors.Is(err, source.ErrNoData) {
				// A clean "nothing there" answer is not a source outage.
				log.Printf("[WARN] %s: %s returned no data: %v", symbol, name, err)
			} else {
				r.failures.Record(name, symbol)
				log.Printf("[WARN] %s: %s failed: %v", symbol, name, err)
			}
			continue
		}

		series = clampWindow(series, from, to)
		if series.Len() < minPoints || series.SpanMonths() < minSpanMonths {
			log.Printf("[WARN] %s: insufficient data from %s (%d points, %d months), trying next source",
				symbol, name, series.Len(), series.SpanMonths())
			continue
		}

		r.failures.Reset(name, symbol)
		checkKnownPrice(series)
		log.Printf("[INFO] %s: %d points from %s (hash=%.2f)", symbol, series.Len(), name, series.ContentHash())

		r.cache.Set(name+"_"+symbol, series, CacheTTL)
		r.cache.Set(unifiedKey(symbol), series, CacheTTL)
		return series, nil
	}

	if allowFallback || common {
		fb := eager
		if fb == nil {
			fb = r.fallback.Generate(symbol)
		}
		log.Printf("[INFO] %s: all remote sources failed, using synthetic data", symbol)

		// A fallback forced only by allowlist membership expires sooner,
		// like an error entry, so real data is retried promptly.
		ttl := CacheTTL
		if !allowFallback {
			ttl = ErrorCacheTTL
		}
		r.cache.Set(unifiedKey(symbol), fb, ttl)
		return fb, nil
	}

	resErr := &Error{
		Kind:   KindExhausted,
		Symbol: symbol,
		Msg:    fmt.Sprintf("could not retrieve data for %s from any source", symbol),
	}
	r.cache.Set(unifiedKey(symbol), resErr, ErrorCacheTTL)
	return nil, resErr
}

// Outcome is one branch of a settle-all pair resolve.
type Outcome struct {
	Series *model.PriceSeries
	Err    error
}

// ResolvePair fetches two symbols concurrently and waits for both;
// one branch failing never cancels the other's request.
func (r *Resolver) ResolvePair(ctx context.Context, sym1, sym2 string, allowFallback bool) (Outcome, Outcome) {
	var out1, out2 Outcome
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out1.Series, out1.Err = r.Resolve(ctx, sym1, allowFallback)
	}()
	go func() {
		defer wg.Done()
		out2.Series, out2.Err = r.Resolve(ctx, sym2, allowFallback)
	}()
	wg.Wait()
	return out1, out2
}

// clampWindow drops points outside [from, to] and duplicate dates,
// preserving ascending order.
func clampWindow(s *model.PriceSeries, from, to time.Time) *model.PriceSeries {
	out := &model.PriceSeries{
		Symbol:     s.Symbol,
		Origin:     s.Origin,
		IsFallback: s.IsFallback,
		FetchedAt:  s.FetchedAt,
	}
	var last time.Time
	for _, p := range s.Points {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		if !last.IsZero() && p.Date.Equal(last) {
			continue
		}
		out.Points = append(out.Points, p)
		last = p.Date
	}
	return out
}

// checkKnownPrice logs when a source's last price strays far from the
// known anchor. The data is kept either way.
func checkKnownPrice(s *model.PriceSeries) {
	if s.Len() == 0 || !source.IsCommon(s.Symbol) {
		return
	}
	known := source.KnownPrice(s.Symbol)
	last := s.Last().Price
	if last > known*1.5 || last < known*0.5 {
		log.Printf("[WARN] %s: last price %.2f differs significantly from known price %.2f",
			s.Symbol, last, known)
	}
}
