package policy

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/llmcomms/llmcomms/llm"
)

const (
	// DefaultMaxRetries is the default number of retries after the first
	// attempt (spec §4.10).
	DefaultMaxRetries = 2
	// DefaultBaseDelay is the decorrelated-jitter floor.
	DefaultBaseDelay = 250 * time.Millisecond
	// DefaultCap is the decorrelated-jitter ceiling.
	DefaultCap = 4 * time.Second
)

// RetryPolicy retries an action up to MaxRetries times using decorrelated
// jitter backoff: delay_next = min(cap, uniform(base, previous*3)). The
// first retry's "previous" is seeded to BaseDelay (per spec §9's open
// question), so the first sleep is uniform(base, 3*base).
//
// Retryable kinds: rate_limited, provider_unavailable, and generic network
// I/O failures (anything satisfying net.Error). Non-retryable: validation,
// authorization, permission_denied, quota_exceeded, and any other kind.
//
// Sleep is injectable for deterministic tests; it defaults to a
// context-respecting real sleep, mirroring agent/rate_limit.go's
// WaitForRetry.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Cap        time.Duration

	// Rand supplies the uniform(0,1) sample for jitter; defaults to
	// math/rand's package-level source.
	Rand func() float64
	// Sleep pauses for d, returning early with an error if ctx is
	// cancelled first.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy constructs a RetryPolicy with the documented defaults.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Cap:        DefaultCap,
	}
}

func (p *RetryPolicy) rand() float64 {
	if p.Rand != nil {
		return p.Rand()
	}
	return rand.Float64() //nolint:gosec // jitter, not security-sensitive
}

func (p *RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *RetryPolicy) nextDelay(err error, previous time.Duration) time.Duration {
	if llm.KindOf(err) == llm.ErrorKindRateLimited {
		if retryAfter := llm.ExtractRetryAfter(err); retryAfter != nil {
			return *retryAfter
		}
	}

	upper := previous * 3
	sample := p.BaseDelay + time.Duration(p.rand()*float64(upper-p.BaseDelay))
	if sample < p.BaseDelay {
		sample = p.BaseDelay
	}
	if sample > p.Cap {
		sample = p.Cap
	}
	return sample
}

func isRetryable(err error) bool {
	if llm.IsRetryable(err) {
		return true
	}
	if llm.KindOf(err) != "" {
		// A typed llm.Error of a non-retryable kind (validation,
		// authorization, permission_denied, quota_exceeded, ...).
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

func (p *RetryPolicy) Execute(ctx *llm.ExecutionContext, action Action) (*llm.Response, error) {
	previous := p.BaseDelay
	var lastErr error

	for attempt := 0; ; attempt++ {
		resp, err := action(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= p.MaxRetries || !isRetryable(err) {
			return nil, lastErr
		}

		delay := p.nextDelay(err, previous)
		previous = delay

		if sleepErr := p.sleep(ctx.Context, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

func (p *RetryPolicy) ExecuteStream(ctx *llm.ExecutionContext, action StreamAction) (llm.Stream, error) {
	previous := p.BaseDelay
	var lastErr error

	for attempt := 0; ; attempt++ {
		stream, err := action(ctx)
		if err == nil {
			return stream, nil
		}
		lastErr = err

		if attempt >= p.MaxRetries || !isRetryable(err) {
			return nil, lastErr
		}

		delay := p.nextDelay(err, previous)
		previous = delay

		if sleepErr := p.sleep(ctx.Context, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}
