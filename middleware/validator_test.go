package middleware

import (
	"strings"
	"testing"

	"github.com/llmcomms/llmcomms/llm"
)

func TestValidatorStrictJSONFailure(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.ResponseFormat = llm.ResponseFormatJSONObject
	ctx.Options.ThrowOnInvalidJSON = true

	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{Message: llm.NewMessage(llm.RoleAssistant, "{not json")}, nil
	})

	_, err := mw.Handle(ctx, next)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if llm.KindOf(err) != llm.ErrorKindValidation {
		t.Errorf("expected validation kind, got %v", llm.KindOf(err))
	}
	if !strings.Contains(err.Error(), "valid JSON") {
		t.Errorf("expected message to mention valid JSON, got %q", err.Error())
	}
}

func TestValidatorLenientJSONAnnotates(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.ResponseFormat = llm.ResponseFormatJSONObject
	ctx.Options.ThrowOnInvalidJSON = false

	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{Message: llm.NewMessage(llm.RoleAssistant, "{not json")}, nil
	})

	resp, err := mw.Handle(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag, _ := resp.Raw["json_invalid"].(bool); !flag {
		t.Error("expected json_invalid flag set")
	}
}

func TestValidatorValidJSONPassesThrough(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.ResponseFormat = llm.ResponseFormatJSONObject

	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{Message: llm.NewMessage(llm.RoleAssistant, `{"status":"ok"}`)}, nil
	})

	resp, err := mw.Handle(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Raw != nil {
		t.Error("expected no annotation for valid JSON")
	}
}

func TestValidatorToolNameNotDeclared(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.Tools = llm.ToolCollection{{Name: "weather"}}
	ctx.Options.ThrowOnInvalidJSON = true

	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{ToolCalls: []llm.ToolCall{{Name: "calendar", ArgumentsJSON: "{}"}}}, nil
	})

	_, err := mw.Handle(ctx, next)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "not part of the declared tool collection") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestValidatorToolMissingRequiredArgument(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.Tools = llm.ToolCollection{{
		Name:       "weather",
		Parameters: llm.ToolSchema{"required": []string{"city"}},
	}}
	ctx.Options.ThrowOnInvalidJSON = true

	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{ToolCalls: []llm.ToolCall{{Name: "weather", ArgumentsJSON: "{}"}}}, nil
	})

	_, err := mw.Handle(ctx, next)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "city") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestValidatorStreamLenientPublishesContextItem(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.ResponseFormat = llm.ResponseFormatJSONObject
	ctx.Options.ThrowOnInvalidJSON = false

	events := []llm.StreamEvent{
		{Kind: llm.StreamEventDelta, TextDelta: "not json"},
		{Kind: llm.StreamEventComplete, IsTerminal: true},
	}
	next := StreamNext(func(ctx *llm.ExecutionContext) (llm.Stream, error) {
		return llm.NewSliceStream(events), nil
	})

	stream, err := mw.HandleStream(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for stream.Next() {
	}
	if err := stream.Err(); err != nil {
		t.Errorf("expected no error in lenient mode, got %v", err)
	}
	if _, ok := ctx.CallContext.Item(llm.ItemValidationJSON); !ok {
		t.Error("expected json_invalid context item published")
	}
}

func TestValidatorStreamStrictFailsAtTerminal(t *testing.T) {
	mw := NewValidatorMiddleware()
	ctx := testCtx()
	ctx.Request.ResponseFormat = llm.ResponseFormatJSONObject
	ctx.Options.ThrowOnInvalidJSON = true

	events := []llm.StreamEvent{
		{Kind: llm.StreamEventDelta, TextDelta: "not json"},
		{Kind: llm.StreamEventComplete, IsTerminal: true},
	}
	next := StreamNext(func(ctx *llm.ExecutionContext) (llm.Stream, error) {
		return llm.NewSliceStream(events), nil
	})

	stream, err := mw.HandleStream(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for stream.Next() {
	}
	if llm.KindOf(stream.Err()) != llm.ErrorKindValidation {
		t.Errorf("expected validation error at terminal, got %v", stream.Err())
	}
}
