package openai

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
	"github.com/llmcomms/llmcomms/util"
)

// mapRole applies the canonical role mapping (spec §4.11) via util.MapRole;
// go-openai's ChatMessageRole* constants are exactly util.VendorRole's
// wire strings, so the two role taxonomies need no adapter-local switch.
func mapRole(role llm.MessageRole) string {
	return string(util.MapRole(role))
}

func toChatMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = openai.ChatCompletionMessage{
			Role:    mapRole(msg.Role),
			Content: msg.Content,
		}
	}
	return out
}

// toTools builds the "{type:function,function:{...}}" descriptors via
// util.ExtractFunctionTools, the shared shape every OpenAI-style adapter
// emits, then lowers each into the SDK's typed openai.Tool.
func toTools(tools llm.ToolCollection) []openai.Tool {
	descriptors := util.ExtractFunctionTools(tools)
	if len(descriptors) == 0 {
		return nil
	}
	out := make([]openai.Tool, len(descriptors))
	for i, d := range descriptors {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Function.Name,
				Description: d.Function.Description,
				Parameters:  map[string]interface{}(d.Function.Parameters),
			},
		}
	}
	return out
}

func toResponseFormat(format llm.ResponseFormat) *openai.ChatCompletionResponseFormat {
	if format != llm.ResponseFormatJSONObject {
		return nil
	}
	return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
}

// BuildChatRequest shapes a provider-neutral Request into an OpenAI
// ChatCompletionRequest, applying the common payload-shaping rules
// (temperature/top-p/max-tokens sent only when present, tools emitted as
// {type:"function",...}, response_format never silently dropped, and
// adapter-scoped provider hints overriding the defaults). Shared by the
// azure package, which targets the same wire shape through a different
// base URL and auth scheme.
func BuildChatRequest(adapterName, modelID string, req *llm.Request, stream bool) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:    modelID,
		Messages: toChatMessages(req.Messages),
		Stream:   stream,
	}

	if temp, ok := provideradapter.OptionalTemperature(req); ok {
		if override, ok := provideradapter.HintOverride(req, adapterName, "temperature"); ok {
			if f, ok := override.(float64); ok {
				temp = f
			}
		}
		chatReq.Temperature = float32(temp)
	}
	if topP, ok := provideradapter.OptionalTopP(req); ok {
		chatReq.TopP = float32(topP)
	}
	if maxTokens, ok := provideradapter.OptionalMaxOutputTokens(req); ok {
		chatReq.MaxTokens = maxTokens
	}
	if tools := toTools(req.Tools); tools != nil {
		chatReq.Tools = tools
		chatReq.ToolChoice = "auto"
	}
	if rf := toResponseFormat(req.ResponseFormat); rf != nil {
		chatReq.ResponseFormat = rf
	}
	if stream {
		chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}
	return chatReq
}

// MapResponse translates an OpenAI chat completion into a normalized
// Response, per spec §4.11's response mapping rules.
func MapResponse(resp openai.ChatCompletionResponse) (*llm.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, llm.NewProviderUnknownError("openai response carried no choices", nil)
	}
	choice := resp.Choices[0]

	toolCalls := make([]llm.ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		if tc.Function.Name == "" {
			continue
		}
		toolCalls = append(toolCalls, llm.ToolCall{
			Name:          tc.Function.Name,
			ArgumentsJSON: tc.Function.Arguments,
		})
	}

	total := int64(resp.Usage.TotalTokens)
	return &llm.Response{
		Message:      llm.NewMessage(util.RoleFromVendor(choice.Message.Role), choice.Message.Content),
		ToolCalls:    toolCalls,
		FinishReason: provideradapter.MapFinishReason(string(choice.FinishReason)),
		Usage:        provideradapter.ComputeUsage(int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens), &total),
		Raw: map[string]interface{}{
			"id":                 resp.ID,
			"model":              resp.Model,
			"created":            resp.Created,
			"system_fingerprint": resp.SystemFingerprint,
		},
	}, nil
}
