package resolver

import (
	"sync"
	"time"
)

// Defaults for the transient-failure backoff.
const (
	// FailureWindow is how long a failure streak stays relevant.
	FailureWindow = 10 * time.Minute
	// FailureThreshold is the streak length that engages the skip: after
	// three recorded failures the next attempt bypasses the source.
	FailureThreshold = 3
)

type failureRecord struct {
	at    time.Time
	count int
}

// FailureRegistry tracks consecutive failures per (source, symbol) pair
// so a rate-limited or unreachable API is not hammered while other
// sources can still serve the request.
type FailureRegistry struct {
	mu        sync.Mutex
	records   map[string]failureRecord
	window    time.Duration
	threshold int
	now       func() time.Time
}

func NewFailureRegistry() *FailureRegistry {
	return &FailureRegistry{
		records:   make(map[string]failureRecord),
		window:    FailureWindow,
		threshold: FailureThreshold,
		now:       time.Now,
	}
}

// NewFailureRegistryAt pins the registry's clock, for tests.
func NewFailureRegistryAt(now func() time.Time) *FailureRegistry {
	r := NewFailureRegistry()
	r.now = now
	return r
}

func (f *FailureRegistry) key(sourceName, symbol string) string {
	return sourceName + "_" + symbol
}

// Record notes one more failure for the pair. A streak that lapsed out
// of the window restarts at one.
func (f *FailureRegistry) Record(sourceName, symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	key := f.key(sourceName, symbol)
	rec := f.records[key]
	if now.Sub(rec.at) > f.window {
		rec.count = 0
	}
	rec.count++
	rec.at = now
	f.records[key] = rec
}

// Reset clears the streak after a success.
func (f *FailureRegistry) Reset(sourceName, symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, f.key(sourceName, symbol))
}

// ShouldSkip reports whether the pair's failure streak is fresh and long
// enough that the source should not even be attempted.
func (f *FailureRegistry) ShouldSkip(sourceName, symbol string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[f.key(sourceName, symbol)]
	if !ok {
		return false
	}
	if f.now().Sub(rec.at) > f.window {
		return false
	}
	return rec.count >= f.threshold
}
