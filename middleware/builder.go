package middleware

// DefaultComponents bundles the constructed built-in middlewares needed to
// assemble the default pipeline order.
type DefaultComponents struct {
	Tracing   *TracingMiddleware
	Redaction *RedactionMiddleware
	Logging   *LoggingMiddleware
	Metrics   *MetricsMiddleware
	Validator *ValidatorMiddleware
	Cache     *CacheMiddleware
	Terminal  *TerminalMiddleware
	// Custom middlewares are inserted immediately after Metrics and before
	// Validator/Cache, in registration order (spec §4.1's open question,
	// resolved in DESIGN.md).
	Custom []Middleware
}

// DefaultBuilder assembles the spec-mandated default order: Tracing →
// Redaction → Logging → Metrics → [custom...] → Cache → Validator →
// Terminal. Cache sits outer of Validator so a strict validation failure
// propagates up through Cache without a store: Validator sees (and may
// annotate) the response before Cache stores it, and Cache only
// short-circuits once Validator has confirmed a usable result.
func DefaultBuilder(c DefaultComponents) *Builder {
	b := NewBuilder().
		Use(c.Tracing).
		Use(c.Redaction).
		Use(c.Logging).
		Use(c.Metrics)

	for _, mw := range c.Custom {
		b.Use(mw)
	}

	return b.
		Use(c.Cache).
		Use(c.Validator).
		WithTerminal(c.Terminal)
}
