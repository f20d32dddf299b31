package client

import (
	"strings"

	"github.com/llmcomms/llmcomms/llm"
)

// coalesceStream decorates a Stream so the terminal Complete event carries
// the concatenation of every Delta's TextDelta in its Text field, per spec's
// ClientOptions.CoalesceFinalStreamText ("client concatenates stream text
// into one final event"). Grounded on middleware.validatorStream's
// accumulate-then-annotate-on-terminal shape.
type coalesceStream struct {
	llm.Stream
	buf strings.Builder
	cur *llm.StreamEvent
}

func newCoalesceStream(s llm.Stream) llm.Stream {
	return &coalesceStream{Stream: s}
}

func (s *coalesceStream) Next() bool {
	if !s.Stream.Next() {
		s.cur = nil
		return false
	}
	ev := s.Stream.Event()
	if ev == nil {
		s.cur = nil
		return true
	}
	if ev.Kind == llm.StreamEventDelta {
		s.buf.WriteString(ev.TextDelta)
	}
	out := *ev
	if ev.Kind == llm.StreamEventComplete {
		out.Text = s.buf.String()
	}
	s.cur = &out
	return true
}

func (s *coalesceStream) Event() *llm.StreamEvent {
	return s.cur
}
