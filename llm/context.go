package llm

import (
	"context"
	"sync"
)

// ProviderCallContext carries the request id and a mutable sideband item
// bag used by middlewares to publish/consume artifacts (redaction preview,
// cache hit flags, validation annotations). Lifetime is one invocation.
type ProviderCallContext struct {
	RequestID string

	mu    sync.RWMutex
	items map[string]interface{}
}

// NewProviderCallContext returns a context seeded with the given request id.
func NewProviderCallContext(requestID string) *ProviderCallContext {
	return &ProviderCallContext{
		RequestID: requestID,
		items:     make(map[string]interface{}),
	}
}

// SetItem publishes a sideband item.
func (c *ProviderCallContext) SetItem(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Item retrieves a sideband item.
func (c *ProviderCallContext) Item(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Well-known context item keys (spec §6).
const (
	ItemRedactedMessages = "llm.redacted.messages"
	ItemRedactedPreview  = "llm.redacted.preview"
	ItemCacheHit         = "llm.cache.hit"
	ItemCacheStored      = "llm.cache.stored"
	ItemValidationJSON   = "llm.validation.json_invalid"
	ItemValidationTool   = "llm.validation.tool_mismatch"
)

// ExecutionContext (the "LLMContext") threads provider/model/request/
// options and cancellation through the middleware chain. It is passed by
// reference; middlewares may replace its Request field with a derived copy
// but must not swap out CallContext or Options.
type ExecutionContext struct {
	context.Context

	Provider    string
	Model       string
	Request     *Request
	CallContext *ProviderCallContext
	Options     ClientOptions
}

// WithRequest returns the same ExecutionContext with Request replaced by a
// derived copy, leaving the original Request (and the caller's reference
// to it) untouched.
func (c *ExecutionContext) WithRequest(req *Request) *ExecutionContext {
	next := *c
	next.Request = req
	return &next
}

// WithContext returns the same ExecutionContext with its embedded
// context.Context (the cancellation signal) replaced — used by resilience
// policies to derive a child deadline/cancellation without disturbing
// Provider/Model/Request/CallContext/Options.
func (c *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	next := *c
	next.Context = ctx
	return &next
}

// RequestID returns the call context's request id, or "" if none is set.
func (c *ExecutionContext) RequestID() string {
	if c == nil || c.CallContext == nil {
		return ""
	}
	return c.CallContext.RequestID
}
