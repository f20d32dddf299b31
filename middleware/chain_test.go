package middleware

import (
	"context"
	"testing"

	"github.com/llmcomms/llmcomms/llm"
)

type recordingMiddleware struct {
	name   string
	trail  *[]string
	result *llm.Response
}

func (m *recordingMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	*m.trail = append(*m.trail, m.name+":enter")
	resp, err := next(ctx)
	*m.trail = append(*m.trail, m.name+":exit")
	return resp, err
}

func (m *recordingMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	return next(ctx)
}

type fakeTerminal struct {
	trail  *[]string
	result *llm.Response
	err    error
}

func (t *fakeTerminal) Handle(ctx *llm.ExecutionContext, _ Next) (*llm.Response, error) {
	*t.trail = append(*t.trail, "terminal")
	return t.result, t.err
}

func (t *fakeTerminal) HandleStream(ctx *llm.ExecutionContext, _ StreamNext) (llm.Stream, error) {
	*t.trail = append(*t.trail, "terminal")
	return nil, t.err
}

func TestChainLIFOOrdering(t *testing.T) {
	var trail []string
	resp := &llm.Response{}

	chain := NewBuilder().
		Use(&recordingMiddleware{name: "a", trail: &trail}).
		Use(&recordingMiddleware{name: "b", trail: &trail}).
		WithTerminal(&fakeTerminal{trail: &trail, result: resp}).
		Build()

	got, err := chain.Execute(testCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != resp {
		t.Error("expected terminal's response to bubble unchanged")
	}

	want := []string{"a:enter", "b:enter", "terminal", "b:exit", "a:exit"}
	if len(trail) != len(want) {
		t.Fatalf("trail = %v, want %v", trail, want)
	}
	for i := range want {
		if trail[i] != want[i] {
			t.Errorf("trail[%d] = %q, want %q", i, trail[i], want[i])
		}
	}
}

type shortCircuitMiddleware struct {
	resp *llm.Response
}

func (m *shortCircuitMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	return m.resp, nil
}

func (m *shortCircuitMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	return nil, nil
}

func TestChainShortCircuitSkipsTerminal(t *testing.T) {
	var trail []string
	shortCircuited := &llm.Response{Message: llm.NewMessage(llm.RoleAssistant, "cached")}

	chain := NewBuilder().
		Use(&shortCircuitMiddleware{resp: shortCircuited}).
		WithTerminal(&fakeTerminal{trail: &trail, result: &llm.Response{}}).
		Build()

	got, err := chain.Execute(testCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != shortCircuited {
		t.Error("expected short-circuited response")
	}
	if len(trail) != 0 {
		t.Error("expected terminal to never be called")
	}
}

func testCtx() *llm.ExecutionContext {
	return &llm.ExecutionContext{
		Context:     context.Background(),
		Provider:    "fake",
		Model:       "fake-model",
		Request:     &llm.Request{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")}},
		CallContext: llm.NewProviderCallContext("req-1"),
		Options:     llm.DefaultClientOptions(),
	}
}
