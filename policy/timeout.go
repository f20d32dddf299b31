package policy

import (
	"context"
	"errors"
	"time"

	"github.com/llmcomms/llmcomms/llm"
)

// TimeoutPolicy wraps an action with a deadline. On deadline-triggered
// cancellation it fails with error kind timeout, preserving the original
// request id; user-initiated cancellation of the parent context re-surfaces
// as cancellation, not timeout.
type TimeoutPolicy struct {
	Duration time.Duration
}

// NewTimeoutPolicy constructs a TimeoutPolicy with the given duration.
func NewTimeoutPolicy(d time.Duration) *TimeoutPolicy {
	return &TimeoutPolicy{Duration: d}
}

func (p *TimeoutPolicy) Execute(ctx *llm.ExecutionContext, action Action) (*llm.Response, error) {
	child, cancel := context.WithTimeout(ctx.Context, p.Duration)
	defer cancel()

	resp, err := action(ctx.WithContext(child))
	if err != nil {
		if timeoutErr := p.classify(ctx, child, err); timeoutErr != nil {
			return nil, timeoutErr
		}
	}
	return resp, err
}

func (p *TimeoutPolicy) ExecuteStream(ctx *llm.ExecutionContext, action StreamAction) (llm.Stream, error) {
	child, cancel := context.WithTimeout(ctx.Context, p.Duration)

	stream, err := action(ctx.WithContext(child))
	if err != nil {
		cancel()
		if timeoutErr := p.classify(ctx, child, err); timeoutErr != nil {
			return nil, timeoutErr
		}
		return nil, err
	}
	return &cancelOnCloseStream{Stream: stream, cancel: cancel}, nil
}

// classify distinguishes a deadline-triggered failure from a user-initiated
// cancellation of the parent context: only the former is reported as a
// timeout error.
func (p *TimeoutPolicy) classify(ctx *llm.ExecutionContext, child context.Context, err error) *llm.Error {
	if !errors.Is(child.Err(), context.DeadlineExceeded) {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return llm.NewTimeoutError("request exceeded timeout", err).WithRequestID(ctx.RequestID())
}

// cancelOnCloseStream releases the derived timeout context's resources when
// the stream is closed, since streaming holds the deadline open for the
// lifetime of iteration rather than a single call. Exhausting the stream
// without calling Close leaves the deadline running until it expires.
type cancelOnCloseStream struct {
	llm.Stream
	cancel context.CancelFunc
}

func (s *cancelOnCloseStream) Close() error {
	defer s.cancel()
	return s.Stream.Close()
}
