package middleware

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/util"
)

// Event ids are stable integers chosen once per event kind so downstream
// log consumers can filter without string matching (spec §4.4).
const (
	EventRequestStart   = 1000
	EventRequestPreview = 1001
	EventRequestSuccess = 1002
	EventRequestFailure = 1003
	EventRequestWarning = 1004
)

// LoggingMiddleware emits structured request lifecycle events via zerolog.
type LoggingMiddleware struct {
	Logger zerolog.Logger
	// Debug, when true, emits the one-line redaction-preview debug event
	// at invocation start (spec §4.4).
	Debug bool
}

// NewLoggingMiddleware constructs a LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger, debug bool) *LoggingMiddleware {
	return &LoggingMiddleware{Logger: logger, Debug: debug}
}

func (m *LoggingMiddleware) logStart(ctx *llm.ExecutionContext, streaming bool) {
	evt := m.Logger.Info().
		Int("event_id", EventRequestStart).
		Str("event", "request.start").
		Str("request_id", ctx.RequestID()).
		Str("provider", ctx.Provider).
		Str("model", ctx.Model).
		Bool("streaming", streaming)
	if ctx.Request != nil {
		evt = evt.Int("message_count", len(ctx.Request.Messages))
		if hash, err := util.Hash(ctx.Request); err == nil {
			evt = evt.Str("request_hash", hash)
		}
	}
	evt.Msg("request.start")

	if !m.Debug || ctx.CallContext == nil {
		return
	}
	if preview, ok := ctx.CallContext.Item(llm.ItemRedactedPreview); ok {
		m.Logger.Debug().
			Int("event_id", EventRequestPreview).
			Str("request_id", ctx.RequestID()).
			Interface("preview", preview).
			Msg("request.preview")
	}
}

func (m *LoggingMiddleware) logSuccess(ctx *llm.ExecutionContext, durationMS int64, finishReason llm.FinishReason, usage llm.Usage) {
	m.Logger.Info().
		Int("event_id", EventRequestSuccess).
		Str("event", "request.success").
		Str("request_id", ctx.RequestID()).
		Int64("duration_ms", durationMS).
		Str("finish_reason", string(finishReason)).
		Int64("prompt_tokens", usage.PromptTokens).
		Int64("completion_tokens", usage.CompletionTokens).
		Int64("total_tokens", usage.TotalTokens).
		Msg("request.success")
}

func (m *LoggingMiddleware) logStreamSuccess(ctx *llm.ExecutionContext, durationMS int64, usage llm.Usage, observedTerminal bool) {
	m.Logger.Info().
		Int("event_id", EventRequestSuccess).
		Str("event", "request.success").
		Str("request_id", ctx.RequestID()).
		Int64("duration_ms", durationMS).
		Int64("prompt_tokens", usage.PromptTokens).
		Int64("completion_tokens", usage.CompletionTokens).
		Int64("total_tokens", usage.TotalTokens).
		Bool("observed_terminal", observedTerminal).
		Msg("request.success")
}

func (m *LoggingMiddleware) logFailure(ctx *llm.ExecutionContext, durationMS int64, err error) {
	m.Logger.Error().
		Int("event_id", EventRequestFailure).
		Str("event", "request.failure").
		Str("request_id", ctx.RequestID()).
		Int64("duration_ms", durationMS).
		Str("error_kind", string(llm.KindOf(err))).
		Err(err).
		Msg("request.failure")
}

func (m *LoggingMiddleware) logWarning(ctx *llm.ExecutionContext, durationMS int64, usage llm.Usage, observedTerminal bool) {
	m.Logger.Warn().
		Int("event_id", EventRequestWarning).
		Str("event", "request.warning").
		Str("request_id", ctx.RequestID()).
		Int64("duration_ms", durationMS).
		Int64("prompt_tokens", usage.PromptTokens).
		Int64("completion_tokens", usage.CompletionTokens).
		Int64("total_tokens", usage.TotalTokens).
		Bool("observed_terminal", observedTerminal).
		Msg("request.warning")
}

// Handle implements Middleware.
func (m *LoggingMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	m.logStart(ctx, false)
	start := time.Now()

	resp, err := next(ctx)
	durationMS := time.Since(start).Milliseconds()
	if err != nil {
		m.logFailure(ctx, durationMS, err)
		return nil, err
	}
	m.logSuccess(ctx, durationMS, resp.FinishReason, resp.Usage)
	return resp, nil
}

// HandleStream implements Middleware.
func (m *LoggingMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	m.logStart(ctx, true)
	start := time.Now()

	stream, err := next(ctx)
	if err != nil {
		m.logFailure(ctx, time.Since(start).Milliseconds(), err)
		return nil, err
	}

	return &loggingStream{Stream: stream, mw: m, ctx: ctx, start: start}, nil
}

type loggingStream struct {
	llm.Stream
	mw               *LoggingMiddleware
	ctx              *llm.ExecutionContext
	start            time.Time
	usage            llm.Usage
	sawError         bool
	observedTerminal bool
	finished         bool
}

func (s *loggingStream) Next() bool {
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
			if ev.IsTerminal {
				s.observedTerminal = true
			}
		case llm.StreamEventError:
			s.sawError = true
		}
	}
	return true
}

func (s *loggingStream) Close() error {
	s.finalize()
	return s.Stream.Close()
}

func (s *loggingStream) finalize() {
	if s.finished {
		return
	}
	s.finished = true
	durationMS := time.Since(s.start).Milliseconds()

	if err := s.Stream.Err(); err != nil {
		s.mw.logFailure(s.ctx, durationMS, err)
		return
	}
	if s.sawError {
		s.mw.logWarning(s.ctx, durationMS, s.usage, s.observedTerminal)
		return
	}
	s.mw.logStreamSuccess(s.ctx, durationMS, s.usage, s.observedTerminal)
}
