package ollama

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ollama/ollama/api"

	"github.com/llmcomms/llmcomms/llm"
)

// TestStreamDeliversDeltasThenOneTerminalEvent exercises the adapter against
// a fake Ollama server emitting newline-delimited JSON, the exact sequence
// spec §8 scenario S5 names.
func TestStreamDeliversDeltasThenOneTerminalEvent(t *testing.T) {
	lines := []string{
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":" world"},"done":false}`,
		`{"done":true,"done_reason":"stop","prompt_eval_count":5,"eval_count":3}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}))
	defer srv.Close()

	base, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	adapter := &Adapter{client: api.NewClient(base, srv.Client())}

	req := &llm.Request{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")}}
	stream, err := adapter.Stream(t.Context(), "llama3", req, llm.NewProviderCallContext("req-s5"))
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	defer stream.Close()

	var deltas []string
	var terminals int
	for stream.Next() {
		ev := stream.Event()
		switch ev.Kind {
		case llm.StreamEventDelta:
			deltas = append(deltas, ev.TextDelta)
		case llm.StreamEventComplete:
			terminals++
			if !ev.IsTerminal {
				t.Error("complete event must be terminal")
			}
			if ev.Usage == nil || ev.Usage.PromptTokens != 5 || ev.Usage.CompletionTokens != 3 || ev.Usage.TotalTokens != 8 {
				t.Errorf("Usage = %+v, want (5,3,8)", ev.Usage)
			}
		}
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if got := strings.Join(deltas, ""); got != "Hello world" {
		t.Errorf("deltas joined = %q, want %q", got, "Hello world")
	}
	if terminals != 1 {
		t.Errorf("terminal events = %d, want exactly 1", terminals)
	}
}
