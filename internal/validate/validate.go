// Package validate decides whether a ticker symbol may enter the data
// pipeline at all: format screen first, then the well-known allowlist,
// then a remote symbol search as the slow path.
package validate

import (
	"context"
	"log"
	"regexp"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/PikaChewey/Sharpey/internal/source"
)

var tickerRe = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]+)?$`)

// Searcher is the remote lookup used for symbols the fast paths cannot
// settle. *source.AlphaVantage satisfies it.
type Searcher interface {
	Search(ctx context.Context, symbol string) (bool, error)
}

// Validator caches verdicts for the lifetime of the process. Symbols do
// not come into or go out of existence mid-session, so entries never
// expire.
type Validator struct {
	searcher Searcher
	valid    *gocache.Cache
	invalid  *gocache.Cache
}

func New(searcher Searcher) *Validator {
	return &Validator{
		searcher: searcher,
		valid:    gocache.New(gocache.NoExpiration, 0),
		invalid:  gocache.New(gocache.NoExpiration, 0),
	}
}

// IsValid reports whether the symbol is a plausible, tradable ticker.
// The remote search is consulted only for unknown symbols that pass the
// format screen; if the search itself fails, only allowlisted symbols
// are accepted.
func (v *Validator) IsValid(ctx context.Context, symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false
	}

	if _, ok := v.valid.Get(symbol); ok {
		return true
	}
	if _, ok := v.invalid.Get(symbol); ok {
		return false
	}

	verdict := v.check(ctx, symbol)
	if verdict {
		v.valid.Set(symbol, true, gocache.NoExpiration)
	} else {
		v.invalid.Set(symbol, true, gocache.NoExpiration)
	}
	return verdict
}

func (v *Validator) check(ctx context.Context, symbol string) bool {
	if !tickerRe.MatchString(symbol) {
		return false
	}
	if source.IsCommon(symbol) {
		return true
	}
	if v.searcher == nil {
		return false
	}

	found, err := v.searcher.Search(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] %s: symbol search failed, rejecting unknown symbol: %v", symbol, err)
		return false
	}
	return found
}
