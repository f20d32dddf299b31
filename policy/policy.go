// Package policy implements the resilience policies of the request
// execution engine: timeout, decorrelated-jitter retry, and composition
// (spec §4.10). Grounded on agent/rate_limit.go's cenkalti/backoff-based
// RateLimitHandler, scoped down from one-backoff-per-agent to one
// decorrelated-jitter sequence per invocation.
package policy

import "github.com/llmcomms/llmcomms/llm"

// Action performs the unary terminal call (or the next policy in a
// Composite chain).
type Action func(ctx *llm.ExecutionContext) (*llm.Response, error)

// StreamAction performs the streaming terminal call (or the next policy in
// a Composite chain).
type StreamAction func(ctx *llm.ExecutionContext) (llm.Stream, error)

// Policy wraps an Action/StreamAction with a resilience behavior.
type Policy interface {
	Execute(ctx *llm.ExecutionContext, action Action) (*llm.Response, error)
	ExecuteStream(ctx *llm.ExecutionContext, action StreamAction) (llm.Stream, error)
}

// Composite chains policies outer-first: Composite(Retry, Timeout) means
// each retry attempt runs inside its own fresh Timeout, because Retry is
// outermost (loops over attempts) and Timeout is innermost (wraps one
// attempt).
func Composite(policies ...Policy) Policy {
	return &compositePolicy{policies: policies}
}

type compositePolicy struct {
	policies []Policy
}

func (c *compositePolicy) Execute(ctx *llm.ExecutionContext, action Action) (*llm.Response, error) {
	wrapped := action
	for i := len(c.policies) - 1; i >= 0; i-- {
		p := c.policies[i]
		inner := wrapped
		wrapped = func(ctx *llm.ExecutionContext) (*llm.Response, error) {
			return p.Execute(ctx, inner)
		}
	}
	return wrapped(ctx)
}

func (c *compositePolicy) ExecuteStream(ctx *llm.ExecutionContext, action StreamAction) (llm.Stream, error) {
	wrapped := action
	for i := len(c.policies) - 1; i >= 0; i-- {
		p := c.policies[i]
		inner := wrapped
		wrapped = func(ctx *llm.ExecutionContext) (llm.Stream, error) {
			return p.ExecuteStream(ctx, inner)
		}
	}
	return wrapped(ctx)
}
