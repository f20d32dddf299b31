package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llmcomms/llmcomms/llm"
)

// Outcome classifies an invocation's terminal state for metrics/logging
// tags (spec §4.5).
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeWarning Outcome = "warning"
)

// Metrics bundles the five Prometheus collectors under the LlmComms meter
// name (spec §4.5). Grounded on
// grewanderer-animus-coder/internal/observability/metrics.go's own-registry,
// *Vec-per-instrument shape; metric names are translated from the spec's
// dotted form (`llm.requests.total`) to Prometheus's underscore convention
// (dots aren't a legal character in a metric name).
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	tokensPrompt     *prometheus.HistogramVec
	tokensCompletion *prometheus.HistogramVec
	tokensTotal      *prometheus.HistogramVec
}

// NewMetrics constructs a Metrics bundle with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	labels := []string{"provider", "model", "streaming", "outcome", "finish_reason", "error_type"}

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmcomms",
		Name:      "requests_total",
		Help:      "Total client invocations.",
	}, labels)

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmcomms",
		Name:      "request_duration_ms",
		Help:      "Invocation duration in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
	}, labels)

	tokensPrompt := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmcomms",
		Name:      "tokens_prompt",
		Help:      "Prompt token counts.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	}, labels)

	tokensCompletion := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmcomms",
		Name:      "tokens_completion",
		Help:      "Completion token counts.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	}, labels)

	tokensTotal := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llmcomms",
		Name:      "tokens_total",
		Help:      "Total token counts.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	}, labels)

	reg.MustRegister(requestsTotal, requestDuration, tokensPrompt, tokensCompletion, tokensTotal)

	return &Metrics{
		registry:         reg,
		requestsTotal:    requestsTotal,
		requestDuration:  requestDuration,
		tokensPrompt:     tokensPrompt,
		tokensCompletion: tokensCompletion,
		tokensTotal:      tokensTotal,
	}
}

// Registry returns the underlying Prometheus registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type measurement struct {
	provider     string
	model        string
	streaming    bool
	outcome      Outcome
	finishReason string
	errorType    string
}

func (m *Metrics) record(meas measurement, durationMS float64, usage llm.Usage, enableTokenEvents bool) {
	labels := prometheus.Labels{
		"provider":      meas.provider,
		"model":         meas.model,
		"streaming":     boolLabel(meas.streaming),
		"outcome":       string(meas.outcome),
		"finish_reason": meas.finishReason,
		"error_type":    meas.errorType,
	}

	m.requestsTotal.With(labels).Inc()
	m.requestDuration.With(labels).Observe(durationMS)

	if !enableTokenEvents {
		return
	}
	if usage.PromptTokens > 0 {
		m.tokensPrompt.With(labels).Observe(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		m.tokensCompletion.With(labels).Observe(float64(usage.CompletionTokens))
	}
	if usage.TotalTokens > 0 {
		m.tokensTotal.With(labels).Observe(float64(usage.TotalTokens))
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// MetricsMiddleware records exactly one request and one duration sample
// per invocation, plus token histograms when the corresponding count is
// positive (spec §4.5, invariant I6).
type MetricsMiddleware struct {
	Metrics *Metrics
}

// NewMetricsMiddleware constructs a MetricsMiddleware.
func NewMetricsMiddleware(metrics *Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{Metrics: metrics}
}

// Handle implements Middleware.
func (m *MetricsMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	start := time.Now()
	resp, err := next(ctx)
	durationMS := float64(time.Since(start).Milliseconds())

	meas := measurement{provider: ctx.Provider, model: ctx.Model, streaming: false}
	if err != nil {
		meas.outcome = OutcomeFailure
		meas.errorType = string(llm.KindOf(err))
		m.Metrics.record(meas, durationMS, llm.Usage{}, false)
		return nil, err
	}

	meas.outcome = OutcomeSuccess
	meas.finishReason = string(resp.FinishReason)
	m.Metrics.record(meas, durationMS, resp.Usage, ctx.Options.EnableTokenUsageEvents)
	return resp, nil
}

// HandleStream implements Middleware.
func (m *MetricsMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	start := time.Now()
	stream, err := next(ctx)
	if err != nil {
		meas := measurement{provider: ctx.Provider, model: ctx.Model, streaming: true, outcome: OutcomeFailure, errorType: string(llm.KindOf(err))}
		m.Metrics.record(meas, float64(time.Since(start).Milliseconds()), llm.Usage{}, false)
		return nil, err
	}

	return &metricsStream{Stream: stream, mw: m, ctx: ctx, start: start}, nil
}

type metricsStream struct {
	llm.Stream
	mw           *MetricsMiddleware
	ctx          *llm.ExecutionContext
	start        time.Time
	usage        llm.Usage
	finishReason llm.FinishReason
	sawError     bool
	errorType    string
	finished     bool
}

func (s *metricsStream) Next() bool {
	ok := s.Stream.Next()
	if !ok {
		s.finalize()
		return false
	}
	if ev := s.Stream.Event(); ev != nil {
		switch ev.Kind {
		case llm.StreamEventComplete:
			if ev.Usage != nil {
				s.usage = s.usage.Add(*ev.Usage)
			}
			// StreamEvent carries no vendor finish reason yet, so a
			// truncated or tool-call-ending stream is recorded as "stop"
			// too; threading the real reason through needs a field on
			// StreamEvent plus all three providers populating it.
			s.finishReason = llm.FinishReasonStop
		case llm.StreamEventError:
			s.sawError = true
			if ev.Err != nil {
				s.errorType = string(llm.KindOf(ev.Err))
			}
		}
	}
	return true
}

func (s *metricsStream) Close() error {
	s.finalize()
	return s.Stream.Close()
}

func (s *metricsStream) finalize() {
	if s.finished {
		return
	}
	s.finished = true

	meas := measurement{provider: s.ctx.Provider, model: s.ctx.Model, streaming: true}
	if err := s.Stream.Err(); err != nil {
		meas.outcome = OutcomeFailure
		meas.errorType = string(llm.KindOf(err))
	} else if s.sawError {
		meas.outcome = OutcomeWarning
		meas.errorType = s.errorType
		meas.finishReason = string(s.finishReason)
	} else {
		meas.outcome = OutcomeSuccess
		meas.finishReason = string(s.finishReason)
	}

	s.mw.Metrics.record(meas, float64(time.Since(s.start).Milliseconds()), s.usage, s.ctx.Options.EnableTokenUsageEvents)
}
