// Package transport defines the abstract send/receive port adapters could
// route provider calls through. It is specified as a single operation with
// fixed request/response shapes (spec §6); this module exposes the contract
// only — the concrete adapters in provider/ call vendor SDKs directly, the
// same way the teacher's own provider clients wrap *http.Client rather than
// a reflected, dynamically-shaped transport object (see
// lucky-mandator-gocode-router/internal/provider/factory, grounded in
// DESIGN.md). A future HTTP-backed Transport can implement this interface
// without touching any adapter that chooses to use it.
package transport

import "context"

// Request is everything a Transport needs to issue one send.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
}

// Response is what a Transport returns for one send. Streaming bodies are
// delivered as a single string containing vendor-specific delimiters (SSE
// "data:" frames, or newline-delimited JSON); parsing those belongs to the
// adapter that requested the stream, not to Transport.
type Response struct {
	StatusCode int
	Headers    map[string][]string
	Body       string
}

// Transport sends one request and returns its response. Method defaults to
// POST when Request.Method is empty. Implementations must honor ctx
// cancellation for the duration of the call.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}
