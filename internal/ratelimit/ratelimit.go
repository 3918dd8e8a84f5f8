package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deusflow/thainews/internal/logger"
)

// ErrBudgetExhausted is returned once the per-run request budget is spent.
var ErrBudgetExhausted = errors.New("translation budget exhausted")

// Limiter paces translation requests and caps how many one run may issue.
type Limiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	used     int
	maxTotal int
}

// New creates a limiter. maxTotal <= 0 means no cap; interval <= 0 means no pacing.
func New(maxTotal int, interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		limiter:  rate.NewLimiter(limit, 1),
		maxTotal: maxTotal,
	}
}

// Acquire reserves one request, waiting for pacing if needed.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.maxTotal > 0 && l.used >= l.maxTotal {
		l.mu.Unlock()
		return ErrBudgetExhausted
	}
	l.used++
	used := l.used
	l.mu.Unlock()

	if err := l.limiter.Wait(ctx); err != nil {
		// No request goes out, so the slot is given back.
		l.mu.Lock()
		l.used--
		l.mu.Unlock()
		return err
	}

	if l.maxTotal > 0 {
		logger.Debug("translation budget", "used", used, "limit", l.maxTotal)
	}
	return nil
}

// Used reports how many requests were granted.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}
