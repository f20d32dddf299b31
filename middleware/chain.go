// Package middleware implements the request execution engine's middleware
// pipeline: an ordered list of interceptors terminating in exactly one
// terminal leaf (spec §4.1). Grounded on llm/interfaces.go's
// WrapWithMiddleware/clientWithMiddleware closures, generalized from that
// Before/After/OnError hook trio to a continuation-passing "next" shape —
// required so the cache middleware can short-circuit the chain entirely on
// a hit, which a hook-based model can't express without special-casing.
package middleware

import "github.com/llmcomms/llmcomms/llm"

// Next is the continuation a non-terminal middleware calls at most once to
// invoke the remainder of the chain.
type Next func(ctx *llm.ExecutionContext) (*llm.Response, error)

// StreamNext is Next's streaming counterpart.
type StreamNext func(ctx *llm.ExecutionContext) (llm.Stream, error)

// Middleware observes, transforms, or short-circuits one layer of the
// pipeline. Implementations must be re-entrant and hold no per-invocation
// state outside the passed ExecutionContext (spec §5).
type Middleware interface {
	Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error)
	HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error)
}

// Chain is a fully assembled, ready-to-invoke pipeline.
type Chain struct {
	execute       Next
	executeStream StreamNext
}

// Execute runs the unary pipeline.
func (c Chain) Execute(ctx *llm.ExecutionContext) (*llm.Response, error) {
	return c.execute(ctx)
}

// ExecuteStream runs the streaming pipeline.
func (c Chain) ExecuteStream(ctx *llm.ExecutionContext) (llm.Stream, error) {
	return c.executeStream(ctx)
}

// Builder accumulates middlewares in registration order plus a designated
// terminal, then right-folds them into a Chain: the terminal is the seed,
// and each middleware in reverse registration order wraps the accumulator
// (spec §9, "Pipeline composition via closures").
type Builder struct {
	middlewares []Middleware
	terminal    Middleware
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Use appends mw to the registration order.
func (b *Builder) Use(mw Middleware) *Builder {
	b.middlewares = append(b.middlewares, mw)
	return b
}

// WithTerminal sets (replacing any prior) the terminal middleware.
func (b *Builder) WithTerminal(mw Middleware) *Builder {
	b.terminal = mw
	return b
}

// Build right-folds the registered middlewares around the terminal into a
// callable Chain. Panics if no terminal was set, since a pipeline with no
// leaf has nothing to invoke — this is a construction-time programmer
// error, not a runtime condition.
func (b *Builder) Build() Chain {
	if b.terminal == nil {
		panic("middleware: Builder.Build called without a terminal")
	}

	terminal := b.terminal
	execute := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return terminal.Handle(ctx, nil)
	})
	executeStream := StreamNext(func(ctx *llm.ExecutionContext) (llm.Stream, error) {
		return terminal.HandleStream(ctx, nil)
	})

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		mw := b.middlewares[i]
		innerExecute := execute
		innerStream := executeStream
		execute = func(ctx *llm.ExecutionContext) (*llm.Response, error) {
			return mw.Handle(ctx, innerExecute)
		}
		executeStream = func(ctx *llm.ExecutionContext) (llm.Stream, error) {
			return mw.HandleStream(ctx, innerStream)
		}
	}

	return Chain{execute: execute, executeStream: executeStream}
}
