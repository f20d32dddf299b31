package middleware

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llmcomms/llmcomms/llm"
)

// SpanStatus is the terminal status tagged on a Span.
type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "ok"
	SpanStatusError SpanStatus = "error"
)

// Span accumulates tags for one invocation, ended exactly once.
type Span interface {
	SetTag(key string, value interface{})
	SetStatus(status SpanStatus)
	End()
}

// Tracer starts spans. No tracing/span library appears anywhere in the
// corpus this module was grounded on, so this is a small hand-rolled
// abstraction backed by structured log events rather than a pulled-in
// OpenTelemetry-style dependency.
type Tracer interface {
	StartSpan(name string) Span
}

// ZerologTracer emits one debug-level log event per span, at End().
type ZerologTracer struct {
	Logger zerolog.Logger
}

// NewZerologTracer returns a Tracer backed by logger.
func NewZerologTracer(logger zerolog.Logger) *ZerologTracer {
	return &ZerologTracer{Logger: logger}
}

// StartSpan implements Tracer.
func (t *ZerologTracer) StartSpan(name string) Span {
	return &zerologSpan{
		logger: t.Logger,
		name:   name,
		tags:   make(map[string]interface{}),
		status: SpanStatusOK,
	}
}

type zerologSpan struct {
	logger zerolog.Logger
	name   string
	tags   map[string]interface{}
	status SpanStatus
	ended  bool
}

func (s *zerologSpan) SetTag(key string, value interface{}) {
	s.tags[key] = value
}

func (s *zerologSpan) SetStatus(status SpanStatus) {
	s.status = status
}

func (s *zerologSpan) End() {
	if s.ended {
		return
	}
	s.ended = true
	evt := s.logger.Debug().Str("span", s.name).Str("status", string(s.status))
	for k, v := range s.tags {
		evt = evt.Interface(k, v)
	}
	evt.Msg("span.end")
}

// TracingMiddleware wraps every invocation in a span named
// llm.<provider>.<model> per spec §4.2.
type TracingMiddleware struct {
	Tracer Tracer
}

// NewTracingMiddleware constructs a TracingMiddleware.
func NewTracingMiddleware(tracer Tracer) *TracingMiddleware {
	return &TracingMiddleware{Tracer: tracer}
}

func spanName(ctx *llm.ExecutionContext) string {
	return fmt.Sprintf("llm.%s.%s", ctx.Provider, ctx.Model)
}

func baseTags(ctx *llm.ExecutionContext, span Span, streaming bool) {
	span.SetTag("provider", ctx.Provider)
	span.SetTag("model", ctx.Model)
	span.SetTag("request_id", ctx.RequestID())
	span.SetTag("streaming", streaming)
	if ctx.Request != nil {
		if ctx.Request.Temperature != nil {
			span.SetTag("temperature", *ctx.Request.Temperature)
		}
		if ctx.Request.MaxOutputTokens != nil {
			span.SetTag("max_output_tokens", *ctx.Request.MaxOutputTokens)
		}
	}
}

// Handle implements Middleware.
func (m *TracingMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	span := m.Tracer.StartSpan(spanName(ctx))
	defer span.End()
	baseTags(ctx, span, false)

	resp, err := next(ctx)
	if err != nil {
		span.SetTag("error_kind", string(llm.KindOf(err)))
		span.SetTag("error_message", err.Error())
		span.SetStatus(SpanStatusError)
		return nil, err
	}

	span.SetTag("finish_reason", string(resp.FinishReason))
	span.SetTag("prompt_tokens", resp.Usage.PromptTokens)
	span.SetTag("completion_tokens", resp.Usage.CompletionTokens)
	span.SetTag("total_tokens", resp.Usage.TotalTokens)
	span.SetStatus(SpanStatusOK)
	return resp, nil
}

// HandleStream implements Middleware. Usage is accumulated across
// `complete` events and the span is finalized when the stream ends or is
// closed, whichever comes first.
func (m *TracingMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	span := m.Tracer.StartSpan(spanName(ctx))
	baseTags(ctx, span, true)

	stream, err := next(ctx)
	if err != nil {
		span.SetTag("error_kind", string(llm.KindOf(err)))
		span.SetTag("error_message", err.Error())
		span.SetStatus(SpanStatusError)
		span.End()
		return nil, err
	}

	return &tracingStream{Stream: stream, span: span}, nil
}

type tracingStream struct {
	llm.Stream
	span     Span
	usage    llm.Usage
	sawError bool
	finished bool
}

func (s *tracingStream) Next() bool {
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
		case llm.StreamEventError:
			s.sawError = true
		}
	}
	return true
}

func (s *tracingStream) Close() error {
	s.finalize()
	return s.Stream.Close()
}

func (s *tracingStream) finalize() {
	if s.finished {
		return
	}
	s.finished = true
	if s.sawError || s.Stream.Err() != nil {
		s.span.SetStatus(SpanStatusError)
	} else {
		s.span.SetTag("prompt_tokens", s.usage.PromptTokens)
		s.span.SetTag("completion_tokens", s.usage.CompletionTokens)
		s.span.SetTag("total_tokens", s.usage.TotalTokens)
		s.span.SetStatus(SpanStatusOK)
	}
	s.span.End()
}
