package middleware

import (
	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/policy"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// TerminalMiddleware is the fixed leaf of every chain (spec §4.8): it has
// no continuation of its own, calling the provider adapter through the
// configured resilience policy and passing the result through unchanged.
type TerminalMiddleware struct {
	Adapter provideradapter.Adapter
	Policy  policy.Policy
}

// NewTerminalMiddleware constructs a TerminalMiddleware. pol may be nil,
// in which case the adapter is called directly with no retry/timeout.
func NewTerminalMiddleware(adapter provideradapter.Adapter, pol policy.Policy) *TerminalMiddleware {
	return &TerminalMiddleware{Adapter: adapter, Policy: pol}
}

// Handle implements Middleware. next is ignored: Terminal is the seed of
// the right-fold, not a link in it.
func (m *TerminalMiddleware) Handle(ctx *llm.ExecutionContext, _ Next) (*llm.Response, error) {
	action := policy.Action(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return m.Adapter.Send(ctx.Context, ctx.Model, ctx.Request, ctx.CallContext)
	})
	if m.Policy == nil {
		return action(ctx)
	}
	return m.Policy.Execute(ctx, action)
}

// HandleStream implements Middleware.
func (m *TerminalMiddleware) HandleStream(ctx *llm.ExecutionContext, _ StreamNext) (llm.Stream, error) {
	action := policy.StreamAction(func(ctx *llm.ExecutionContext) (llm.Stream, error) {
		return m.Adapter.Stream(ctx.Context, ctx.Model, ctx.Request, ctx.CallContext)
	})
	if m.Policy == nil {
		return action(ctx)
	}
	return m.Policy.ExecuteStream(ctx, action)
}
