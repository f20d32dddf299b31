package middleware

import (
	"testing"
	"time"

	"github.com/llmcomms/llmcomms/cachestore"
	"github.com/llmcomms/llmcomms/llm"
)

func TestCacheMissThenHit(t *testing.T) {
	cache := cachestore.NewInMemoryCache()
	mw := NewCacheMiddleware(cache, time.Minute)

	calls := 0
	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		calls++
		return &llm.Response{Message: llm.NewMessage(llm.RoleAssistant, "fresh")}, nil
	})

	ctx := testCtx()
	resp, err := mw.Handle(ctx, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message.Content != "fresh" {
		t.Errorf("unexpected content: %q", resp.Message.Content)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call on miss, got %d", calls)
	}
	if _, stored := ctx.CallContext.Item(llm.ItemCacheStored); !stored {
		t.Error("expected cache.stored item on miss+store")
	}

	ctx2 := testCtx()
	resp2, err := mw.Handle(ctx2, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected next to not be called again on hit, got %d calls", calls)
	}
	if resp2.Message.Content != "fresh" {
		t.Errorf("unexpected cached content: %q", resp2.Message.Content)
	}
	if _, hit := ctx2.CallContext.Item(llm.ItemCacheHit); !hit {
		t.Error("expected cache.hit item on hit")
	}
}

func TestCacheBypassedByNoCacheHint(t *testing.T) {
	cache := cachestore.NewInMemoryCache()
	mw := NewCacheMiddleware(cache, time.Minute)

	calls := 0
	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		calls++
		return &llm.Response{}, nil
	})

	ctx := testCtx()
	ctx.Request.ProviderHints = map[string]interface{}{"no_cache": true}

	if _, err := mw.Handle(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := mw.Handle(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected bypass to call next every time, got %d calls", calls)
	}
	if _, ok := ctx.CallContext.Item(llm.ItemCacheHit); ok {
		t.Error("expected no cache.hit item when bypassed")
	}
}

func TestCacheDoesNotStoreResponsesWithToolCalls(t *testing.T) {
	cache := cachestore.NewInMemoryCache()
	mw := NewCacheMiddleware(cache, time.Minute)

	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{ToolCalls: []llm.ToolCall{{Name: "weather", ArgumentsJSON: "{}"}}}, nil
	})

	ctx := testCtx()
	if _, err := mw.Handle(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ctx.CallContext.Item(llm.ItemCacheStored); ok {
		t.Error("expected responses with tool calls to not be cached")
	}
	if cache.Len() != 0 {
		t.Errorf("expected no entries stored, got %d", cache.Len())
	}
}

func TestCacheTTLHintPrecedence(t *testing.T) {
	mw := NewCacheMiddleware(cachestore.NewInMemoryCache(), time.Hour)

	req := &llm.Request{ProviderHints: map[string]interface{}{
		"cache_ttl_seconds": float64(30),
		"cache_ttl":         float64(60),
	}}
	if got := mw.resolveTTL(req); got != 30*time.Second {
		t.Errorf("expected cache_ttl_seconds to take precedence, got %v", got)
	}

	req2 := &llm.Request{ProviderHints: map[string]interface{}{"cache_ttl": float64(60)}}
	if got := mw.resolveTTL(req2); got != 60*time.Second {
		t.Errorf("expected cache_ttl fallback, got %v", got)
	}

	req3 := &llm.Request{}
	if got := mw.resolveTTL(req3); got != time.Hour {
		t.Errorf("expected construction-time default, got %v", got)
	}
}

func TestCacheStreamIsPassthrough(t *testing.T) {
	mw := NewCacheMiddleware(cachestore.NewInMemoryCache(), time.Minute)
	called := false
	next := StreamNext(func(ctx *llm.ExecutionContext) (llm.Stream, error) {
		called = true
		return llm.NewSliceStream(nil), nil
	})

	if _, err := mw.HandleStream(testCtx(), next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected streaming path to always call next")
	}
}
