package openai

import (
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// partialToolCall accumulates a tool call's name/arguments across the
// index-keyed delta fragments OpenAI's SSE stream emits.
type partialToolCall struct {
	name string
	args []byte
}

// chatStream adapts an OpenAI ChatCompletionStream to llm.Stream, queuing
// zero or more llm.StreamEvents per underlying Recv call (a single SSE
// chunk can carry both a text delta and a tool-call fragment).
type chatStream struct {
	inner     *openai.ChatCompletionStream
	requestID string

	pending []llm.StreamEvent
	pos     int

	toolCalls    map[int]*partialToolCall
	toolOrder    []int
	usage        llm.Usage
	haveTerminal bool
	err          error
	closed       bool
}

// NewStream wraps an OpenAI streaming response, per spec §4.11's streaming
// parse/synthesize rules.
func NewStream(inner *openai.ChatCompletionStream, requestID string) llm.Stream {
	return &chatStream{inner: inner, requestID: requestID, toolCalls: make(map[int]*partialToolCall)}
}

func (s *chatStream) Next() bool {
	if s.pos+1 < len(s.pending) {
		s.pos++
		return true
	}
	if s.err != nil || s.closed {
		return false
	}
	s.pending = nil
	s.pos = -1

	for len(s.pending) == 0 {
		chunk, err := s.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.flushPending(true)
				break
			}
			s.err = TranslateError(err, s.requestID)
			s.pending = append(s.pending, llm.StreamEvent{Kind: llm.StreamEventError, Err: s.err})
			break
		}
		s.consumeChunk(chunk)
	}

	if len(s.pending) == 0 {
		return false
	}
	s.pos = 0
	return true
}

func (s *chatStream) consumeChunk(chunk openai.ChatCompletionStreamResponse) {
	if chunk.Usage != nil {
		s.usage = provideradapter.ComputeUsage(int64(chunk.Usage.PromptTokens), int64(chunk.Usage.CompletionTokens), ptrInt64(int64(chunk.Usage.TotalTokens)))
	}
	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		s.pending = append(s.pending, llm.StreamEvent{Kind: llm.StreamEventDelta, TextDelta: choice.Delta.Content})
	}

	for _, tc := range choice.Delta.ToolCalls {
		idx := 0
		if tc.Index != nil {
			idx = *tc.Index
		}
		pt, ok := s.toolCalls[idx]
		if !ok {
			pt = &partialToolCall{}
			s.toolCalls[idx] = pt
			s.toolOrder = append(s.toolOrder, idx)
		}
		if tc.Function.Name != "" {
			pt.name = tc.Function.Name
		}
		if tc.Function.Arguments != "" {
			pt.args = append(pt.args, []byte(tc.Function.Arguments)...)
		}
	}

	if choice.FinishReason != "" {
		// Tool calls are complete once a finish reason arrives, but the
		// terminal event waits for stream exhaustion: OpenAI sends the
		// usage-only chunk (when stream_options.include_usage is set)
		// after the finish-reason chunk, not before it.
		s.flushToolCalls()
	}
}

func (s *chatStream) flushToolCalls() {
	for _, idx := range s.toolOrder {
		pt := s.toolCalls[idx]
		if pt == nil || pt.name == "" {
			continue
		}
		call := llm.ToolCall{Name: pt.name, ArgumentsJSON: string(pt.args)}
		s.pending = append(s.pending, llm.StreamEvent{Kind: llm.StreamEventToolCall, ToolCall: &call})
	}
	s.toolCalls = make(map[int]*partialToolCall)
	s.toolOrder = nil
}

func (s *chatStream) flushPending(terminal bool) {
	if terminal && !s.haveTerminal {
		s.haveTerminal = true
		s.pending = provideradapter.EnsureTerminalEvent(s.pending, s.usage)
	}
}

func (s *chatStream) Event() *llm.StreamEvent {
	if s.pos < 0 || s.pos >= len(s.pending) {
		return nil
	}
	return &s.pending[s.pos]
}

func (s *chatStream) Err() error { return s.err }

func (s *chatStream) Close() error {
	s.closed = true
	return s.inner.Close()
}

func ptrInt64(v int64) *int64 { return &v }
