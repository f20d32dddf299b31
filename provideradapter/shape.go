package provideradapter

import (
	"github.com/llmcomms/llmcomms/llm"
)

// OptionalTemperature returns (value, true) iff the request sets a
// temperature, per the "send only when present" payload-shaping rule.
func OptionalTemperature(req *llm.Request) (float64, bool) {
	if req == nil || req.Temperature == nil {
		return 0, false
	}
	return *req.Temperature, true
}

// OptionalTopP returns (value, true) iff the request sets top-p.
func OptionalTopP(req *llm.Request) (float64, bool) {
	if req == nil || req.TopP == nil {
		return 0, false
	}
	return *req.TopP, true
}

// OptionalMaxOutputTokens returns (value, true) iff the request sets a max
// output token count. The integer value is preserved exactly; only the
// vendor field name changes per adapter.
func OptionalMaxOutputTokens(req *llm.Request) (int, bool) {
	if req == nil || req.MaxOutputTokens == nil {
		return 0, false
	}
	return *req.MaxOutputTokens, true
}

// MapFinishReason translates a vendor finish-reason string to FinishReason
// per spec §4.11's total mapping.
func MapFinishReason(vendor string) llm.FinishReason {
	switch vendor {
	case "stop":
		return llm.FinishReasonStop
	case "length":
		return llm.FinishReasonLength
	case "tool_call", "tool_calls", "tool":
		return llm.FinishReasonToolCall
	default:
		return llm.FinishReasonUnknown
	}
}

// ComputeUsage builds a Usage record, computing total as prompt+completion
// when the vendor omits it.
func ComputeUsage(prompt, completion int64, total *int64) llm.Usage {
	u := llm.Usage{PromptTokens: prompt, CompletionTokens: completion}
	if total != nil {
		u.TotalTokens = *total
	} else {
		u.TotalTokens = prompt + completion
	}
	return u
}

// EnsureTerminalEvent appends a synthesized kind=complete, is_terminal=true
// event to events if none of them is already terminal (spec §4.11's
// streaming synthesis rule, invariant I1/I8).
func EnsureTerminalEvent(events []llm.StreamEvent, usage llm.Usage) []llm.StreamEvent {
	for _, ev := range events {
		if ev.IsTerminal {
			return events
		}
	}
	u := usage
	return append(events, llm.StreamEvent{
		Kind:       llm.StreamEventComplete,
		Usage:      &u,
		IsTerminal: true,
	})
}

// HintOverride reports whether req carries an adapter-scoped provider hint
// (keyed "<adapterName>.<field>") that should override the default value
// for field, returning the raw hint value.
func HintOverride(req *llm.Request, adapterName, field string) (interface{}, bool) {
	if req == nil {
		return nil, false
	}
	return req.Hint(adapterName + "." + field)
}
