package middleware

import (
	"strings"
	"testing"

	"github.com/llmcomms/llmcomms/llm"
)

func TestBuildPreviewTrimsAndJoins(t *testing.T) {
	messages := []llm.Message{
		llm.NewMessage(llm.RoleUser, "first message, irrelevant"),
		llm.NewMessage(llm.RoleUser, "second\nmessage   with   whitespace"),
		llm.NewMessage(llm.RoleAssistant, "third message"),
	}
	preview := buildPreview(messages)
	if strings.Contains(preview, "first message") {
		t.Error("expected only the last two messages in the preview")
	}
	if !strings.Contains(preview, "second message with whitespace") {
		t.Errorf("expected normalized whitespace, got %q", preview)
	}
	if !strings.Contains(preview, "third message") {
		t.Errorf("expected last message included, got %q", preview)
	}
}

func TestBuildPreviewTruncates(t *testing.T) {
	long := strings.Repeat("a", 500)
	preview := buildPreview([]llm.Message{llm.NewMessage(llm.RoleUser, long)})
	if len(preview) != previewMaxLen {
		t.Errorf("expected preview truncated to %d chars, got %d", previewMaxLen, len(preview))
	}
}

func TestMaskContentRules(t *testing.T) {
	masked := maskContent("contact me at jane@example.com or call 5551234567")
	if strings.Contains(masked, "jane@example.com") {
		t.Error("expected email to be masked")
	}
	if !strings.Contains(masked, emailSentinel) {
		t.Error("expected email sentinel present")
	}
	if strings.Contains(masked, "5551234567") {
		t.Error("expected long digit run to be masked")
	}
}

func TestRedactionNeverMutatesOriginalRequest(t *testing.T) {
	original := &llm.Request{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "email me at a@b.com")}}
	ctx := &llm.ExecutionContext{
		Request:     original,
		CallContext: llm.NewProviderCallContext("req-1"),
		Options:     llm.ClientOptions{EnableRedaction: true},
	}

	mw := NewRedactionMiddleware()
	_, _ = mw.Handle(ctx, func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{}, nil
	})

	if original.Messages[0].Content != "email me at a@b.com" {
		t.Errorf("original request was mutated: %q", original.Messages[0].Content)
	}

	masked, ok := ctx.CallContext.Item(llm.ItemRedactedMessages)
	if !ok {
		t.Fatal("expected redacted messages to be published")
	}
	maskedMsgs := masked.([]llm.Message)
	if strings.Contains(maskedMsgs[0].Content, "a@b.com") {
		t.Error("expected published copy to be masked")
	}
}

func TestRedactionAlwaysPublishesPreviewRegardlessOfFlag(t *testing.T) {
	ctx := &llm.ExecutionContext{
		Request:     &llm.Request{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hello")}},
		CallContext: llm.NewProviderCallContext("req-1"),
		Options:     llm.ClientOptions{EnableRedaction: false},
	}

	mw := NewRedactionMiddleware()
	_, _ = mw.Handle(ctx, func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{}, nil
	})

	if _, ok := ctx.CallContext.Item(llm.ItemRedactedPreview); !ok {
		t.Error("expected preview to be published even with redaction disabled")
	}
	if _, ok := ctx.CallContext.Item(llm.ItemRedactedMessages); ok {
		t.Error("expected no masked copy when redaction disabled")
	}
}
