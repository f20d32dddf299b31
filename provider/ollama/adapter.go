// Package ollama implements provideradapter.Adapter against a local or
// remote Ollama server, grounded on the teacher's llm/ollama package
// (ToOllamaMessages/ToOllamaTools/FromOllamaToolCall and the api.Client
// callback-based Chat call), generalized to this module's provider-neutral
// types.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// Config configures an Adapter.
type Config struct {
	// Host is the Ollama server address, e.g. "http://localhost:11434". If
	// empty, the client is built from the OLLAMA_HOST environment variable
	// (api.ClientFromEnvironment's default).
	Host string
}

// Adapter implements provideradapter.Adapter against Ollama.
type Adapter struct {
	client *api.Client
}

// NewAdapter constructs an Adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama: %w", err)
		}
		return &Adapter{client: client}, nil
	}

	host := cfg.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid host: %w", err)
	}
	return &Adapter{client: api.NewClient(base, http.DefaultClient)}, nil
}

// Name implements provideradapter.Adapter.
func (a *Adapter) Name() string { return "ollama" }

// Capabilities implements provideradapter.Adapter.
func (a *Adapter) Capabilities() llm.ProviderCapabilities {
	return llm.ProviderCapabilities{
		SupportsStreaming: true,
		SupportsJSONMode:  true,
		SupportsTools:     true,
	}
}

// Send implements provideradapter.Adapter.
func (a *Adapter) Send(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (*llm.Response, error) {
	falseVal := false
	chatReq := buildChatRequest(a.Name(), modelID, req, &falseVal)

	var final api.ChatResponse
	err := a.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		return nil, translateError(err, requestIDOf(callCtx))
	}
	return mapResponse(final), nil
}

// Stream implements provideradapter.Adapter.
func (a *Adapter) Stream(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (llm.Stream, error) {
	if !a.Capabilities().SupportsStreaming {
		return nil, llm.NewNotSupportedError("ollama: streaming not supported")
	}
	trueVal := true
	chatReq := buildChatRequest(a.Name(), modelID, req, &trueVal)
	return newChatStream(ctx, a.client, chatReq, requestIDOf(callCtx)), nil
}

func requestIDOf(callCtx *llm.ProviderCallContext) string {
	if callCtx == nil {
		return ""
	}
	return callCtx.RequestID
}

var _ provideradapter.Adapter = (*Adapter)(nil)
