package ollama

import (
	"encoding/json"

	"github.com/ollama/ollama/api"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
	"github.com/llmcomms/llmcomms/util"
)

func mapRole(role llm.MessageRole) string {
	return string(util.MapRole(role))
}

func toMessages(msgs []llm.Message) []api.Message {
	out := make([]api.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = api.Message{Role: mapRole(msg.Role), Content: msg.Content}
	}
	return out
}

func toToolProperty(raw interface{}) api.ToolProperty {
	prop, ok := raw.(map[string]interface{})
	if !ok {
		return api.ToolProperty{Type: []string{"string"}}
	}
	t, _ := prop["type"].(string)
	if t == "" {
		t = "string"
	}
	tp := api.ToolProperty{Type: []string{t}}
	if desc, ok := prop["description"].(string); ok {
		tp.Description = desc
	}
	return tp
}

func toTools(tools llm.ToolCollection) []api.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]api.Tool, len(tools))
	for i, def := range tools {
		properties := make(map[string]api.ToolProperty)
		if rawProps, ok := def.Parameters["properties"].(map[string]interface{}); ok {
			for name, raw := range rawProps {
				properties[name] = toToolProperty(raw)
			}
		}
		schemaType, _ := def.Parameters["type"].(string)
		if schemaType == "" {
			schemaType = "object"
		}
		out[i] = api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters: api.ToolFunctionParameters{
					Type:       schemaType,
					Properties: properties,
					Required:   def.Parameters.RequiredProperties(),
				},
			},
		}
	}
	return out
}

// buildChatRequest shapes a provider-neutral Request into an Ollama
// ChatRequest, applying the common payload-shaping rules (options map for
// temperature/top-p/num_predict, tools, and format="json" for JSON-mode
// responses, per spec §4.11).
func buildChatRequest(adapterName, modelID string, req *llm.Request, stream *bool) *api.ChatRequest {
	chatReq := &api.ChatRequest{
		Model:    modelID,
		Messages: toMessages(req.Messages),
		Stream:   stream,
		Options:  make(map[string]interface{}),
	}

	if temp, ok := provideradapter.OptionalTemperature(req); ok {
		if override, ok := provideradapter.HintOverride(req, adapterName, "options.temperature"); ok {
			if f, ok := override.(float64); ok {
				temp = f
			}
		}
		chatReq.Options["temperature"] = temp
	}
	if topP, ok := provideradapter.OptionalTopP(req); ok {
		chatReq.Options["top_p"] = topP
	}
	if maxTokens, ok := provideradapter.OptionalMaxOutputTokens(req); ok {
		chatReq.Options["num_predict"] = maxTokens
	}
	if tools := toTools(req.Tools); tools != nil {
		chatReq.Tools = tools
	}
	if req.ResponseFormat == llm.ResponseFormatJSONObject {
		chatReq.Format = json.RawMessage(`"json"`)
	}
	return chatReq
}

func toolCallsFrom(calls []api.ToolCall) []llm.ToolCall {
	out := make([]llm.ToolCall, 0, len(calls))
	for _, tc := range calls {
		if tc.Function.Name == "" {
			continue
		}
		argsJSON := "{}"
		if tc.Function.Arguments != nil {
			if b, err := json.Marshal(tc.Function.Arguments); err == nil {
				argsJSON = string(b)
			}
		}
		out = append(out, llm.ToolCall{Name: tc.Function.Name, ArgumentsJSON: argsJSON})
	}
	return out
}

func mapResponse(resp api.ChatResponse) *llm.Response {
	finishReason := llm.FinishReasonUnknown
	if resp.Done {
		finishReason = provideradapter.MapFinishReason(string(resp.DoneReason))
		if resp.DoneReason == "" {
			finishReason = llm.FinishReasonStop
		}
	}

	return &llm.Response{
		Message:      llm.NewMessage(util.RoleFromVendor(resp.Message.Role), resp.Message.Content),
		ToolCalls:    toolCallsFrom(resp.Message.ToolCalls),
		FinishReason: finishReason,
		Usage:        provideradapter.ComputeUsage(int64(resp.PromptEvalCount), int64(resp.EvalCount), nil),
		Raw: map[string]interface{}{
			"model":   resp.Model,
			"created": resp.CreatedAt,
		},
	}
}
