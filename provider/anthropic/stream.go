package anthropic

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// pendingToolCall accumulates a tool_use block's name and streamed JSON
// input fragments across ContentBlockStartEvent/ContentBlockDeltaEvent pairs.
type pendingToolCall struct {
	name string
	args []byte
}

// messageStream adapts Anthropic's ssestream.Stream[MessageStreamEventUnion]
// to llm.Stream. Grounded on the teacher's anthropicStream (condition
// variable over the same event union), simplified to the pull-based
// queue pattern used by this module's other stream wrappers since the
// underlying SDK stream is itself pull-based (no background goroutine
// needed).
type messageStream struct {
	inner     *ssestream.Stream[anthropic.MessageStreamEventUnion]
	requestID string

	pending []llm.StreamEvent
	pos     int

	currentTool  *pendingToolCall
	usage        llm.Usage
	haveTerminal bool
	err          error
	closed       bool
}

// NewStream wraps an Anthropic streaming response.
func NewStream(inner *ssestream.Stream[anthropic.MessageStreamEventUnion], requestID string) llm.Stream {
	return &messageStream{inner: inner, requestID: requestID}
}

func (s *messageStream) Next() bool {
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
		if !s.inner.Next() {
			if err := s.inner.Err(); err != nil {
				s.err = TranslateError(err, s.requestID)
				s.pending = append(s.pending, llm.StreamEvent{Kind: llm.StreamEventError, Err: s.err})
				break
			}
			s.flushTerminal()
			break
		}
		s.consumeEvent(s.inner.Current())
	}

	if len(s.pending) == 0 {
		return false
	}
	s.pos = 0
	return true
}

func (s *messageStream) consumeEvent(event anthropic.MessageStreamEventUnion) {
	switch evt := event.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		if tb, ok := evt.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
			s.currentTool = &pendingToolCall{name: tb.Name}
		}
	case anthropic.ContentBlockDeltaEvent:
		switch delta := evt.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			if delta.Text != "" {
				s.pending = append(s.pending, llm.StreamEvent{Kind: llm.StreamEventDelta, TextDelta: delta.Text})
			}
		case anthropic.InputJSONDelta:
			if s.currentTool != nil {
				s.currentTool.args = append(s.currentTool.args, []byte(delta.PartialJSON)...)
			}
		}
	case anthropic.ContentBlockStopEvent:
		if s.currentTool != nil {
			argsJSON := "{}"
			if len(s.currentTool.args) > 0 {
				argsJSON = string(s.currentTool.args)
			}
			call := llm.ToolCall{Name: s.currentTool.name, ArgumentsJSON: argsJSON}
			s.pending = append(s.pending, llm.StreamEvent{Kind: llm.StreamEventToolCall, ToolCall: &call})
			s.currentTool = nil
		}
	case anthropic.MessageDeltaEvent:
		total := evt.Usage.InputTokens + evt.Usage.OutputTokens
		s.usage = provideradapter.ComputeUsage(evt.Usage.InputTokens, evt.Usage.OutputTokens, &total)
	case anthropic.MessageStopEvent:
		s.flushTerminal()
	}
}

func (s *messageStream) flushTerminal() {
	if s.haveTerminal {
		return
	}
	s.haveTerminal = true
	s.pending = provideradapter.EnsureTerminalEvent(s.pending, s.usage)
}

func (s *messageStream) Event() *llm.StreamEvent {
	if s.pos < 0 || s.pos >= len(s.pending) {
		return nil
	}
	return &s.pending[s.pos]
}

func (s *messageStream) Err() error { return s.err }

func (s *messageStream) Close() error {
	s.closed = true
	return s.inner.Close()
}
