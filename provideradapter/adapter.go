// Package provideradapter specifies the provider-adapter contract (spec
// §4.11) and the shaping/mapping rules shared by every concrete adapter
// under provider/. Grounded on llm/openai, llm/ollama, and llm/anthropic's
// respective Client types, generalized behind one interface so the
// terminal middleware and resilience policies never need vendor-specific
// branches.
package provideradapter

import (
	"context"

	"github.com/llmcomms/llmcomms/llm"
)

// Adapter translates the abstract Request/Response/StreamEvent contracts
// to and from one vendor's wire format. Implementations own any per-model
// client-handle caching internally (spec §9, "Provider caching of
// per-model handles").
type Adapter interface {
	// Name is a short, lowercase, stable identifier (e.g. "openai").
	Name() string

	// Capabilities advertises what this adapter supports.
	Capabilities() llm.ProviderCapabilities

	// Send performs one unary call and returns a normalized Response.
	Send(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (*llm.Response, error)

	// Stream performs one streaming call. If Capabilities().SupportsStreaming
	// is false, implementations MUST fail with error kind not_supported
	// without contacting transport (invariant I8).
	Stream(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (llm.Stream, error)
}
