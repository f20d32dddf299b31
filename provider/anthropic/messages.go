package anthropic

import (
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/provideradapter"
)

// splitSystem extracts leading/interspersed system-role messages into a
// single concatenated system prompt (Anthropic's wire format carries system
// instructions as a top-level field, not a message), leaving the
// conversational turns in user/assistant order. Function-role messages fall
// back to user, matching the "unknown roles fall back to user" rule since
// Anthropic has no tool-turn role in this module's plain-text Message shape.
func splitSystem(msgs []llm.Message) (system string, turns []llm.Message) {
	var sys []string
	for _, msg := range msgs {
		if msg.Role == llm.RoleSystem {
			sys = append(sys, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	return strings.Join(sys, "\n"), turns
}

func toMessageParams(turns []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(turns))
	for i, msg := range turns {
		block := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case llm.RoleAssistant:
			out[i] = anthropic.NewAssistantMessage(block)
		default: // user, function (fallback)
			out[i] = anthropic.NewUserMessage(block)
		}
	}
	return out
}

func toTools(tools llm.ToolCollection) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, def := range tools {
		properties, _ := def.Parameters["properties"].(map[string]interface{})
		out[i] = anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   def.Parameters.RequiredProperties(),
			},
		}}
	}
	return out
}

// mapStopReason translates Anthropic's stop_reason to FinishReason per
// spec §4.11 (end_turn/stop_sequence behave like "stop").
func mapStopReason(reason anthropic.StopReason) llm.FinishReason {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return llm.FinishReasonStop
	case anthropic.StopReasonMaxTokens:
		return llm.FinishReasonLength
	case anthropic.StopReasonToolUse:
		return llm.FinishReasonToolCall
	default:
		return llm.FinishReasonUnknown
	}
}

// MapResponse translates an Anthropic Message into a normalized Response.
func MapResponse(msg *anthropic.Message) *llm.Response {
	var text strings.Builder
	var toolCalls []llm.ToolCall

	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			argsJSON := "{}"
			if len(b.Input) > 0 {
				argsJSON = string(b.Input)
			}
			toolCalls = append(toolCalls, llm.ToolCall{Name: b.Name, ArgumentsJSON: argsJSON})
		}
	}

	total := msg.Usage.InputTokens + msg.Usage.OutputTokens
	return &llm.Response{
		Message:      llm.NewMessage(llm.RoleAssistant, text.String()),
		ToolCalls:    toolCalls,
		FinishReason: mapStopReason(msg.StopReason),
		Usage:        provideradapter.ComputeUsage(msg.Usage.InputTokens, msg.Usage.OutputTokens, &total),
		Raw: map[string]interface{}{
			"id":    msg.ID,
			"model": string(msg.Model),
		},
	}
}
