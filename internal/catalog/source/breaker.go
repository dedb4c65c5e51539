package source

import (
	"context"
	"errors"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/sony/gobreaker/v2"
)

// BreakerSource fails fast while the wrapped source keeps failing.
// It never retries; every Fetch is a single attempt or an immediate rejection.
type BreakerSource struct {
	next Source
	cb   *gobreaker.CircuitBreaker[[]catalog.Product]
}

// NewBreakerSource opens the circuit after consecutiveFailures failed fetches and
// lets one probe through after openTimeout.
func NewBreakerSource(next Source, name string, consecutiveFailures uint32, openTimeout time.Duration) *BreakerSource {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// a cancelled load says nothing about the upstream
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerSource{next: next, cb: gobreaker.NewCircuitBreaker[[]catalog.Product](st)}
}

func (b *BreakerSource) Fetch(ctx context.Context) ([]catalog.Product, error) {
	return b.cb.Execute(func() ([]catalog.Product, error) {
		return b.next.Fetch(ctx)
	})
}

// State reports the breaker state, e.g. "closed" or "open".
func (b *BreakerSource) State() string {
	return b.cb.State().String()
}
