// Package openai implements provideradapter.Adapter against OpenAI's chat
// completions API, grounded on the teacher's llm/openai package
// (ToOpenAIMessages/ToOpenAITools/convertOpenAIError shape), generalized to
// this module's provider-neutral Request/Response/StreamEvent types.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// Config configures an Adapter.
type Config struct {
	APIKey       string
	BaseURL      string // empty uses the default OpenAI endpoint
	Organization string
}

// Adapter implements provideradapter.Adapter against OpenAI.
type Adapter struct {
	client *openai.Client
}

// NewAdapter constructs an Adapter. APIKey is required.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		conf.OrgID = cfg.Organization
	}
	return &Adapter{client: openai.NewClientWithConfig(conf)}, nil
}

// Name implements provideradapter.Adapter.
func (a *Adapter) Name() string { return "openai" }

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
	chatReq := BuildChatRequest(a.Name(), modelID, req, false)
	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, TranslateError(err, requestIDOf(callCtx))
	}
	return MapResponse(resp)
}

// Stream implements provideradapter.Adapter.
func (a *Adapter) Stream(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (llm.Stream, error) {
	if !a.Capabilities().SupportsStreaming {
		return nil, llm.NewNotSupportedError("openai: streaming not supported")
	}
	chatReq := BuildChatRequest(a.Name(), modelID, req, true)
	inner, err := a.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, TranslateError(err, requestIDOf(callCtx))
	}
	return NewStream(inner, requestIDOf(callCtx)), nil
}

func requestIDOf(callCtx *llm.ProviderCallContext) string {
	if callCtx == nil {
		return ""
	}
	return callCtx.RequestID
}

var _ provideradapter.Adapter = (*Adapter)(nil)
