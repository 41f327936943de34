// Package ratelimit throttles requests to model providers.
package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Config holds rate limiting configuration for a provider.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero or less disables throttling.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultBackoff is used when a 429 response carries no usable Retry-After.
const DefaultBackoff = 20 * time.Second

// DefaultLimits provides conservative defaults per provider.
// Local providers are not throttled.
var DefaultLimits = map[domain.AIProvider]Config{
	domain.AIProviderOpenAI:    {RequestsPerSecond: 5.0, BurstSize: 10},
	domain.AIProviderAnthropic: {RequestsPerSecond: 2.0, BurstSize: 5},
	domain.AIProviderOllama:    {},
}

// Limiter is a token bucket with a backoff window set after 429 responses.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter with the provider's default configuration.
func New(provider domain.AIProvider) *Limiter {
	cfg, ok := DefaultLimits[provider]
	if !ok {
		cfg = Config{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a limiter with custom configuration.
func NewWithConfig(cfg Config) *Limiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request may be sent, honouring any backoff window.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may be sent right now.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// RecordRateLimitError opens a backoff window after a 429 response.
func (l *Limiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if until := time.Now().Add(retryAfter); until.After(l.retryAt) {
		l.retryAt = until
	}
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
// Returns zero when the header is absent or unparseable.
func ParseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := time.Parse(time.RFC1123, header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
