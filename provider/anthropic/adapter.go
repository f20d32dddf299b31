// Package anthropic implements provideradapter.Adapter against Anthropic's
// Messages API, grounded on the teacher's llm/anthropic package
// (ToMessageParams/ToToolUnionParams and the content-block response
// handling), generalized to this module's provider-neutral, plain-text
// message types.
package anthropic

import (
	"context"
	"fmt"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// defaultMaxTokens is used when a Request sets no MaxOutputTokens: unlike
// OpenAI and Ollama, Anthropic's Messages API requires MaxTokens on every
// call.
const defaultMaxTokens = 4096

// Config configures an Adapter.
type Config struct {
	APIKey string
}

// Adapter implements provideradapter.Adapter against Anthropic.
type Adapter struct {
	client *anthropic.Client
}

// NewAdapter constructs an Adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Adapter{client: &client}, nil
}

// Name implements provideradapter.Adapter.
func (a *Adapter) Name() string { return "anthropic" }

// Capabilities implements provideradapter.Adapter.
func (a *Adapter) Capabilities() llm.ProviderCapabilities {
	return llm.ProviderCapabilities{
		SupportsStreaming: true,
		SupportsTools:     true,
	}
}

func (a *Adapter) buildParams(modelID string, req *llm.Request) anthropic.MessageNewParams {
	system, turns := splitSystem(req.Messages)

	maxTokens := int64(defaultMaxTokens)
	if v, ok := provideradapter.OptionalMaxOutputTokens(req); ok {
		maxTokens = int64(v)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: maxTokens,
		Messages:  toMessageParams(turns),
		Tools:     toTools(req.Tools),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if temp, ok := provideradapter.OptionalTemperature(req); ok {
		params.Temperature = anthropic.Float(temp)
	}
	if topP, ok := provideradapter.OptionalTopP(req); ok {
		params.TopP = anthropic.Float(topP)
	}
	return params
}

// Send implements provideradapter.Adapter.
func (a *Adapter) Send(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (*llm.Response, error) {
	params := a.buildParams(modelID, req)
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, TranslateError(err, requestIDOf(callCtx))
	}
	return MapResponse(msg), nil
}

// Stream implements provideradapter.Adapter.
func (a *Adapter) Stream(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (llm.Stream, error) {
	if !a.Capabilities().SupportsStreaming {
		return nil, llm.NewNotSupportedError("anthropic: streaming not supported")
	}
	params := a.buildParams(modelID, req)
	stream := a.client.Messages.NewStreaming(ctx, params)
	return NewStream(stream, requestIDOf(callCtx)), nil
}

func requestIDOf(callCtx *llm.ProviderCallContext) string {
	if callCtx == nil {
		return ""
	}
	return callCtx.RequestID
}

var _ provideradapter.Adapter = (*Adapter)(nil)
