package util

import (
	"net/http"
	"testing"

	"github.com/llmcomms/llmcomms/llm"
)

func TestMapRoleIdempotentAndTotal(t *testing.T) {
	cases := []struct {
		role llm.MessageRole
		want VendorRole
	}{
		{llm.RoleSystem, VendorRoleSystem},
		{llm.RoleUser, VendorRoleUser},
		{llm.RoleAssistant, VendorRoleAssistant},
		{llm.RoleFunction, VendorRoleTool},
		{llm.MessageRole("bogus"), VendorRoleUser},
	}
	for _, c := range cases {
		if got := MapRole(c.role); got != c.want {
			t.Errorf("MapRole(%v) = %v, want %v", c.role, got, c.want)
		}
	}
}

func TestNormalizeStripsProviderHintsOnly(t *testing.T) {
	temp := 0.5
	req := &llm.Request{
		Messages:      []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Temperature:   &temp,
		ProviderHints: map[string]interface{}{"no_cache": true},
	}

	normalized := Normalize(req)
	if normalized.ProviderHints != nil {
		t.Error("expected ProviderHints to be stripped")
	}
	if normalized.Temperature == nil || *normalized.Temperature != temp {
		t.Error("expected Temperature to be preserved")
	}
	if len(normalized.Messages) != 1 || normalized.Messages[0].Content != "hi" {
		t.Error("expected Messages to be preserved")
	}
	if req.ProviderHints == nil {
		t.Error("original request must not be mutated")
	}
}

func TestHashStableAcrossProviderHints(t *testing.T) {
	base := &llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hello"}}}
	withHints := base.Clone()
	withHints.ProviderHints = map[string]interface{}{"no_cache": true}

	h1, err := Hash(base)
	if err != nil {
		t.Fatalf("Hash(base): %v", err)
	}
	h2, err := Hash(withHints)
	if err != nil {
		t.Fatalf("Hash(withHints): %v", err)
	}
	if h1 != h2 {
		t.Errorf("expected equal hashes, got %q and %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(h1))
	}
}

func TestHashDiffersOnContent(t *testing.T) {
	a := &llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hello"}}}
	b := &llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "goodbye"}}}

	ha, _ := Hash(a)
	hb, _ := Hash(b)
	if ha == hb {
		t.Error("expected different hashes for different content")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	req := &llm.Request{
		Messages:      []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		ProviderHints: map[string]interface{}{"x": 1},
	}
	once := Normalize(req)
	twice := Normalize(once)

	h1, _ := Hash(once)
	h2, _ := Hash(twice)
	if h1 != h2 {
		t.Error("expected normalize to be idempotent under hashing")
	}
}

func TestStatusToErrorTotal(t *testing.T) {
	cases := []struct {
		status int
		kind   llm.ErrorKind
	}{
		{http.StatusBadRequest, llm.ErrorKindValidation},
		{http.StatusUnprocessableEntity, llm.ErrorKindValidation},
		{http.StatusUnauthorized, llm.ErrorKindAuthorization},
		{http.StatusForbidden, llm.ErrorKindPermissionDenied},
		{http.StatusPaymentRequired, llm.ErrorKindQuotaExceeded},
		{http.StatusNotFound, llm.ErrorKindProviderUnknown},
		{http.StatusRequestTimeout, llm.ErrorKindTimeout},
		{http.StatusConflict, llm.ErrorKindProviderUnavailable},
		{http.StatusTooManyRequests, llm.ErrorKindRateLimited},
		{http.StatusInternalServerError, llm.ErrorKindProviderUnavailable},
		{http.StatusBadGateway, llm.ErrorKindProviderUnavailable},
		{http.StatusTeapot, llm.ErrorKindLLM}, // arbitrary unknown status falls through
	}
	for _, c := range cases {
		err := StatusToError(c.status, "boom", "req-1", nil)
		if err.Kind != c.kind {
			t.Errorf("status %d: got kind %v, want %v", c.status, err.Kind, c.kind)
		}
		if err.RequestID != "req-1" {
			t.Errorf("status %d: expected request id to be set", c.status)
		}
	}
}

func TestUniqueToolNames(t *testing.T) {
	unique := llm.ToolCollection{{Name: "a"}, {Name: "b"}}
	if !UniqueToolNames(unique) {
		t.Error("expected unique names to pass")
	}

	dup := llm.ToolCollection{{Name: "a"}, {Name: "a"}}
	if UniqueToolNames(dup) {
		t.Error("expected duplicate names to fail")
	}
}
