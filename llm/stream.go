package llm

// StreamEventKind tags the payload carried by a StreamEvent.
type StreamEventKind string

const (
	StreamEventDelta     StreamEventKind = "delta"
	StreamEventToolCall  StreamEventKind = "tool_call"
	StreamEventReasoning StreamEventKind = "reasoning"
	StreamEventComplete  StreamEventKind = "complete"
	StreamEventError     StreamEventKind = "error"
)

// StreamEvent is a single item in an ordered streaming sequence. Exactly
// one terminal event (Complete or Error, IsTerminal=true) is emitted on
// graceful completion; delivery order must match provider emission order.
type StreamEvent struct {
	Kind       StreamEventKind
	TextDelta  string    // for Delta
	ToolCall   *ToolCall // for ToolCall (partial or complete, provider-dependent)
	Reasoning  string    // for Reasoning, and optionally coalesced on Complete
	Text       string    // coalesced concatenation of every Delta's TextDelta, set on Complete when ClientOptions.CoalesceFinalStreamText is enabled
	Usage      *Usage    // for Complete
	Err        error     // for Error
	IsTerminal bool
}

// Stream represents a streaming response. Callers read until Next returns
// false, then check Err.
type Stream interface {
	// Next advances to the next event. Returns false when the stream is
	// exhausted or an error occurred.
	Next() bool

	// Event returns the current event. Valid only after Next returns true.
	Event() *StreamEvent

	// Err returns any error encountered while streaming.
	Err() error

	// Close releases resources held by the stream.
	Close() error
}

// SliceStream adapts a pre-built []StreamEvent into a Stream, useful for
// middlewares and tests that need to replay a fixed sequence.
type SliceStream struct {
	events []StreamEvent
	pos    int
	cur    *StreamEvent
	err    error
}

// NewSliceStream returns a Stream that replays events in order.
func NewSliceStream(events []StreamEvent) *SliceStream {
	return &SliceStream{events: events, pos: -1}
}

// Next implements Stream.
func (s *SliceStream) Next() bool {
	if s.pos+1 >= len(s.events) {
		return false
	}
	s.pos++
	s.cur = &s.events[s.pos]
	if s.cur.Kind == StreamEventError {
		s.err = s.cur.Err
	}
	return true
}

// Event implements Stream.
func (s *SliceStream) Event() *StreamEvent { return s.cur }

// Err implements Stream.
func (s *SliceStream) Err() error { return s.err }

// Close implements Stream.
func (s *SliceStream) Close() error { return nil }
