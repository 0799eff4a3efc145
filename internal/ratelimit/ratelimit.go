package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter paces outgoing requests so a crawl does not hammer the news sites.
// A nil *HostLimiter never blocks.
type HostLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	requests int
	waited   time.Duration
}

// NewHostLimiter returns a limiter allowing rps requests per second with the given burst.
// rps <= 0 disables limiting and returns nil.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the next request is allowed or ctx is done.
func (hl *HostLimiter) Wait(ctx context.Context) error {
	if hl == nil {
		return nil
	}

	start := time.Now()
	if err := hl.limiter.Wait(ctx); err != nil {
		return err
	}

	hl.mu.Lock()
	hl.requests++
	hl.waited += time.Since(start)
	hl.mu.Unlock()
	return nil
}

// GetStats reports how many requests passed through the limiter and the total time spent waiting.
func (hl *HostLimiter) GetStats() map[string]interface{} {
	if hl == nil {
		return map[string]interface{}{"enabled": false}
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	return map[string]interface{}{
		"enabled":   true,
		"requests":  hl.requests,
		"waited_ms": hl.waited.Milliseconds(),
	}
}
