package ollama

import (
	"context"

	"github.com/ollama/ollama/api"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// chatStream adapts Ollama's callback-based Chat call to llm.Stream. The
// underlying request runs in a background goroutine (grounded on the
// teacher's condition-variable-driven ollamaStream, simplified here to a
// channel since this package's Stream consumers only need strict in-order
// delivery, not random access).
type chatStream struct {
	cancel  context.CancelFunc
	events  chan llm.StreamEvent
	cur     *llm.StreamEvent
	err     error
	started bool
}

func newChatStream(ctx context.Context, client *api.Client, req *api.ChatRequest, requestID string) *chatStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &chatStream{cancel: cancel, events: make(chan llm.StreamEvent, 16)}

	go func() {
		defer close(s.events)
		var haveTerminal bool
		err := client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				s.events <- llm.StreamEvent{Kind: llm.StreamEventDelta, TextDelta: resp.Message.Content}
			}
			for _, tc := range toolCallsFrom(resp.Message.ToolCalls) {
				call := tc
				s.events <- llm.StreamEvent{Kind: llm.StreamEventToolCall, ToolCall: &call}
			}
			if resp.Done {
				usage := provideradapter.ComputeUsage(int64(resp.PromptEvalCount), int64(resp.EvalCount), nil)
				for _, ev := range provideradapter.EnsureTerminalEvent(nil, usage) {
					s.events <- ev
				}
				haveTerminal = true
			}
			return nil
		})
		if err != nil {
			s.err = translateError(err, requestID)
			s.events <- llm.StreamEvent{Kind: llm.StreamEventError, Err: s.err}
			return
		}
		if !haveTerminal {
			for _, ev := range provideradapter.EnsureTerminalEvent(nil, llm.Usage{}) {
				s.events <- ev
			}
		}
	}()

	return s
}

func (s *chatStream) Next() bool {
	ev, ok := <-s.events
	if !ok {
		return false
	}
	s.cur = &ev
	return true
}

func (s *chatStream) Event() *llm.StreamEvent { return s.cur }

func (s *chatStream) Err() error { return s.err }

func (s *chatStream) Close() error {
	s.cancel()
	for range s.events {
		// drain until the producing goroutine observes cancellation and exits
	}
	return nil
}
