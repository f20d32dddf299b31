// Package client assembles the middleware chain around a provider adapter
// and exposes the two entry points a caller invokes per request
// (Synchronous, Stream), grounded on llm/interfaces.go's Client interface
// and clientWithMiddleware, generalized from that hook-based wrapper to
// drive the middleware.Chain this module builds instead.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llmcomms/llmcomms/cachestore"
	"github.com/llmcomms/llmcomms/idgen"
	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/middleware"
	"github.com/llmcomms/llmcomms/policy"
	"github.com/llmcomms/llmcomms/provideradapter"
	"github.com/llmcomms/llmcomms/util"
)

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *middleware.Metrics
)

// defaultMetricsInstance returns the process-wide Metrics instance shared by
// every Client that doesn't supply its own, per spec §5's "metrics meter and
// its instruments are process-global."
func defaultMetricsInstance() *middleware.Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = middleware.NewMetrics()
	})
	return defaultMetrics
}

// Config wires the collaborators New assembles into a chain. Only Adapter
// and Model are required; everything else has a documented default.
type Config struct {
	// Adapter is the provider adapter the terminal middleware calls.
	Adapter provideradapter.Adapter
	// Model is the provider-specific model id passed to every call.
	Model string

	// Logger backs tracing and request-lifecycle logging. Defaults to
	// zerolog.Nop() (silent) when left unset.
	Logger zerolog.Logger
	// Debug enables the logging middleware's redaction-preview debug event.
	Debug bool

	// Tracer overrides the default ZerologTracer built from Logger.
	Tracer middleware.Tracer
	// Metrics overrides the default process-global Metrics instance.
	Metrics *middleware.Metrics

	// Cache overrides the default in-process InMemoryCache.
	Cache cachestore.Cache
	// CacheTTL overrides the cache middleware's default TTL (used when a
	// request carries neither cache_ttl_seconds nor cache_ttl).
	CacheTTL time.Duration

	// Retry, when set, wraps every call in this decorrelated-jitter retry
	// policy; a nil Retry means no retries. A nil Retry combined with a zero
	// Timeout disables resilience entirely.
	Retry *policy.RetryPolicy
	// Timeout, when positive, wraps every call in a TimeoutPolicy with this
	// duration. Zero disables the timeout policy.
	Timeout time.Duration

	// Custom middlewares are inserted between Metrics and Validator, in the
	// order given (spec §4.1's resolved open question).
	Custom []middleware.Middleware
}

// Client is a constructed, ready-to-call request pipeline for one
// provider/model pair.
type Client struct {
	provider     string
	model        string
	capabilities llm.ProviderCapabilities
	chain        middleware.Chain
	options      llm.ClientOptions
}

// New builds a Client: wires Config's collaborators (falling back to
// documented defaults for anything left unset) into the spec-mandated
// middleware order, builds the chain exactly once, and snapshots
// ClientOptions so later mutation of the Option values passed here has no
// effect on this Client (spec §4.13).
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("client: Adapter is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("client: Model is required")
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = middleware.NewZerologTracer(cfg.Logger)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = defaultMetricsInstance()
	}

	cache := cfg.Cache
	if cache == nil {
		cache = cachestore.NewInMemoryCache()
	}

	var resiliencePolicies []policy.Policy
	if cfg.Retry != nil {
		resiliencePolicies = append(resiliencePolicies, cfg.Retry)
	}
	if cfg.Timeout > 0 {
		resiliencePolicies = append(resiliencePolicies, policy.NewTimeoutPolicy(cfg.Timeout))
	}
	var resilience policy.Policy
	if len(resiliencePolicies) > 0 {
		resilience = policy.Composite(resiliencePolicies...)
	}

	components := middleware.DefaultComponents{
		Tracing:   middleware.NewTracingMiddleware(tracer),
		Redaction: middleware.NewRedactionMiddleware(),
		Logging:   middleware.NewLoggingMiddleware(cfg.Logger, cfg.Debug),
		Metrics:   middleware.NewMetricsMiddleware(metrics),
		Validator: middleware.NewValidatorMiddleware(),
		Cache:     middleware.NewCacheMiddleware(cache, cfg.CacheTTL),
		Terminal:  middleware.NewTerminalMiddleware(cfg.Adapter, resilience),
		Custom:    cfg.Custom,
	}

	return &Client{
		provider:     cfg.Adapter.Name(),
		model:        cfg.Model,
		capabilities: cfg.Adapter.Capabilities(),
		chain:        middleware.DefaultBuilder(components).Build(),
		options:      buildOptions(opts),
	}, nil
}

// newExecutionContext generates a fresh request id, applies
// DefaultMaxOutputTokens to a Request that omits MaxOutputTokens, and
// materializes the ExecutionContext every invocation threads through the
// chain (spec §4.13).
func (c *Client) newExecutionContext(ctx context.Context, req *llm.Request) *llm.ExecutionContext {
	cloned := req.Clone()
	if cloned.MaxOutputTokens == nil && c.options.DefaultMaxOutputTokens > 0 {
		v := c.options.DefaultMaxOutputTokens
		cloned.MaxOutputTokens = &v
	}

	return &llm.ExecutionContext{
		Context:     ctx,
		Provider:    c.provider,
		Model:       c.model,
		Request:     cloned,
		CallContext: llm.NewProviderCallContext(idgen.NewRequestID()),
		Options:     c.options,
	}
}

// validateToolNames rejects a Request whose declared ToolCollection
// carries a duplicate name, per ToolCollection's "unique names
// (case-sensitive)" invariant.
func validateToolNames(req *llm.Request) error {
	if req == nil || util.UniqueToolNames(req.Tools) {
		return nil
	}
	return llm.NewValidationError(fmt.Sprintf("request declares duplicate tool names: %v", req.Tools.Names()), nil)
}

// Synchronous sends req and returns a complete Response.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if err := validateToolNames(req); err != nil {
		return nil, err
	}
	return c.chain.Execute(c.newExecutionContext(ctx, req))
}

// Stream sends req and returns a Stream of incremental events. It rejects at
// the entry boundary, before materializing any ExecutionContext, when the
// adapter does not advertise SupportsStreaming (spec §4.13, invariant I8).
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if !c.capabilities.SupportsStreaming {
		return nil, llm.NewNotSupportedError(fmt.Sprintf("%s: provider does not support streaming", c.provider))
	}
	if err := validateToolNames(req); err != nil {
		return nil, err
	}
	stream, err := c.chain.ExecuteStream(c.newExecutionContext(ctx, req))
	if err != nil {
		return nil, err
	}
	if c.options.CoalesceFinalStreamText {
		stream = newCoalesceStream(stream)
	}
	return stream, nil
}

// Options returns the ClientOptions snapshot this Client was built with.
func (c *Client) Options() llm.ClientOptions {
	return c.options
}
