package source

import (
	"context"
	"errors"
	"time"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// Source fetches roughly one year of weekly price history for a symbol.
// Implementations parse and sort their payload but leave window filtering
// and sufficiency checks to the caller, so every source is screened the
// same way.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*model.PriceSeries, error)
}

var (
	// ErrRateLimited signals a source-specific throttling response. It is
	// treated like any other source failure for fallthrough purposes but
	// kept distinct for logs.
	ErrRateLimited = errors.New("source rate limited")

	// ErrNoData signals a well-formed response that carried no usable
	// price history. Unlike transport failures it does not count against
	// the source's failure budget.
	ErrNoData = errors.New("no usable price data")
)

// RequestTimeout bounds every remote call. A source that cannot answer
// within this window is treated as failed and the resolver moves on.
const RequestTimeout = 10 * time.Second
