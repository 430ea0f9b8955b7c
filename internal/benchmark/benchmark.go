// Package benchmark tracks the Sharpe ratios of the market indices shown
// alongside the leaderboard. Static estimates serve until a live refresh
// succeeds.
package benchmark

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/PikaChewey/Sharpey/internal/metrics"
	"github.com/PikaChewey/Sharpey/internal/model"
)

// RefreshCron refreshes live figures hourly.
const RefreshCron = "0 0 * * * *"

// defaults are the static estimates shipped with the game.
func defaults() []model.Benchmark {
	return []model.Benchmark{
		{Name: "S&P 500", Ticker: "SPY", SharpeRatio: 0.42},
		{Name: "NASDAQ 100", Ticker: "QQQ", SharpeRatio: 0.46},
		{Name: "Dow Jones", Ticker: "DIA", SharpeRatio: 0.39},
	}
}

// SeriesResolver is the slice of the resolver the tracker needs.
type SeriesResolver interface {
	Resolve(ctx context.Context, symbol string, allowFallback bool) (*model.PriceSeries, error)
}

// Tracker holds the current benchmark figures and refreshes them on a
// cron schedule.
type Tracker struct {
	mu       sync.RWMutex
	cron     *cron.Cron
	resolver SeriesResolver
	marks    []model.Benchmark
}

func NewTracker(r SeriesResolver) *Tracker {
	return &Tracker{
		cron:     cron.New(cron.WithSeconds()),
		resolver: r,
		marks:    defaults(),
	}
}

// Benchmarks returns a snapshot of the current figures.
func (t *Tracker) Benchmarks() []model.Benchmark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Benchmark, len(t.marks))
	copy(out, t.marks)
	return out
}

// Refresh attempts a live update of every index concurrently and waits
// for all of them. An index whose fetch fails, or that only synthetic
// data could serve, keeps its previous figure.
func (t *Tracker) Refresh(ctx context.Context) {
	t.mu.RLock()
	marks := make([]model.Benchmark, len(t.marks))
	copy(marks, t.marks)
	t.mu.RUnlock()

	var wg sync.WaitGroup
	for i := range marks {
		wg.Add(1)
		go func(b *model.Benchmark) {
			defer wg.Done()

			series, err := t.resolver.Resolve(ctx, b.Ticker, false)
			if err != nil {
				log.Printf("[WARN] benchmark %s: refresh failed: %v", b.Ticker, err)
				return
			}
			if series.IsFallback {
				log.Printf("[WARN] benchmark %s: only synthetic data available, keeping static figure", b.Ticker)
				return
			}

			asset := metrics.Asset(series)
			b.SharpeRatio = asset.SharpeRatio
			b.Live = true
			log.Printf("[INFO] benchmark %s: live Sharpe ratio %.2f", b.Ticker, b.SharpeRatio)
		}(&marks[i])
	}
	wg.Wait()

	t.mu.Lock()
	t.marks = marks
	t.mu.Unlock()
}

// StartSchedule registers the periodic refresh and starts the cron. An
// initial refresh runs in the background immediately.
func (t *Tracker) StartSchedule(ctx context.Context) error {
	if _, err := t.cron.AddFunc(RefreshCron, func() { t.Refresh(ctx) }); err != nil {
		return fmt.Errorf("register benchmark refresh: %w", err)
	}
	t.cron.Start()
	go t.Refresh(ctx)
	log.Println("[INFO] benchmark refresh scheduled")
	return nil
}

// Stop stops the cron scheduler.
func (t *Tracker) Stop() {
	t.cron.Stop()
}
