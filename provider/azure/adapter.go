// Package azure implements provideradapter.Adapter for Azure OpenAI. It is
// a thin wrapper over the openai package's shaping/mapping/error-translation
// code: the wire shape is OpenAI-compatible, only the base URL, API version,
// auth header, and the x-ms-client-request-id header differ (spec §6).
package azure

import (
	"context"
	"fmt"
	"net/http"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provider/openai"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// Config configures an Adapter.
type Config struct {
	APIKey     string
	BaseURL    string // https://{resource}.openai.azure.com
	APIVersion string // e.g. "2024-06-01"
	// UseBearerToken selects Authorization: Bearer auth (Azure AD) over the
	// default "api-key" header auth.
	UseBearerToken bool
}

type requestIDKey struct{}

// withRequestID stashes a request id for the header-injecting transport to
// pick up; it travels on the context passed into the SDK call.
func withRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if id, ok := req.Context().Value(requestIDKey{}).(string); ok && id != "" {
		req.Header.Set("x-ms-client-request-id", id)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// Adapter implements provideradapter.Adapter against Azure OpenAI.
type Adapter struct {
	client *openaisdk.Client
}

// NewAdapter constructs an Adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure: api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("azure: base url is required")
	}

	conf := openaisdk.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	if cfg.APIVersion != "" {
		conf.APIVersion = cfg.APIVersion
	}
	if cfg.UseBearerToken {
		conf.APIType = openaisdk.APITypeAzureAD
	}
	conf.HTTPClient = &http.Client{Transport: &headerTransport{}}

	return &Adapter{client: openaisdk.NewClientWithConfig(conf)}, nil
}

// Name implements provideradapter.Adapter.
func (a *Adapter) Name() string { return "azure" }

// Capabilities implements provideradapter.Adapter.
func (a *Adapter) Capabilities() llm.ProviderCapabilities {
	return llm.ProviderCapabilities{
		SupportsStreaming: true,
		SupportsJSONMode:  true,
		SupportsTools:     true,
	}
}

// Send implements provideradapter.Adapter. modelID is the Azure deployment
// name, forwarded in the deployments/{deployment} URL segment.
func (a *Adapter) Send(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (*llm.Response, error) {
	ctx = withRequestID(ctx, requestIDOf(callCtx))
	chatReq := openai.BuildChatRequest(a.Name(), modelID, req, false)
	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, openai.TranslateError(err, requestIDOf(callCtx))
	}
	return openai.MapResponse(resp)
}

// Stream implements provideradapter.Adapter.
func (a *Adapter) Stream(ctx context.Context, modelID string, req *llm.Request, callCtx *llm.ProviderCallContext) (llm.Stream, error) {
	if !a.Capabilities().SupportsStreaming {
		return nil, llm.NewNotSupportedError("azure: streaming not supported")
	}
	ctx = withRequestID(ctx, requestIDOf(callCtx))
	chatReq := openai.BuildChatRequest(a.Name(), modelID, req, true)
	inner, err := a.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, openai.TranslateError(err, requestIDOf(callCtx))
	}
	return openai.NewStream(inner, requestIDOf(callCtx)), nil
}

func requestIDOf(callCtx *llm.ProviderCallContext) string {
	if callCtx == nil {
		return ""
	}
	return callCtx.RequestID
}

var _ provideradapter.Adapter = (*Adapter)(nil)
