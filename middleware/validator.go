package middleware

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/llmcomms/llmcomms/llm"
)

// validateJSONObjectContent reports an error unless content parses as a
// JSON value whose top-level kind is object.
func validateJSONObjectContent(content string) error {
	var v interface{}
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return fmt.Errorf("response content is not valid JSON: %w", err)
	}
	if _, ok := v.(map[string]interface{}); !ok {
		return fmt.Errorf("response content is not valid JSON: top-level value is not an object")
	}
	return nil
}

// validateToolCall checks that call.Name exists in tools (case-sensitive)
// and that its ArgumentsJSON parses with every schema-required property
// present as a top-level key.
func validateToolCall(tools llm.ToolCollection, call llm.ToolCall) error {
	def, ok := tools.Find(call.Name)
	if !ok {
		return fmt.Errorf("tool %q is not part of the declared tool collection", call.Name)
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(call.ArgumentsJSON), &args); err != nil {
		return fmt.Errorf("tool %q arguments are not valid JSON: %w", call.Name, err)
	}

	for _, required := range def.Parameters.RequiredProperties() {
		if _, present := args[required]; !present {
			return fmt.Errorf("tool %q is missing required argument %q", call.Name, required)
		}
	}
	return nil
}

// ValidatorMiddleware implements spec §4.6: JSON-mode and tool-call
// validation, strict (fatal) or lenient (annotating) per
// ClientOptions.ThrowOnInvalidJSON.
type ValidatorMiddleware struct{}

// NewValidatorMiddleware constructs a ValidatorMiddleware.
func NewValidatorMiddleware() *ValidatorMiddleware {
	return &ValidatorMiddleware{}
}

// Handle implements Middleware.
func (m *ValidatorMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	resp, err := next(ctx)
	if err != nil {
		return nil, err
	}

	strict := ctx.Options.ThrowOnInvalidJSON

	if ctx.Request != nil && ctx.Request.ResponseFormat == llm.ResponseFormatJSONObject {
		if verr := validateJSONObjectContent(resp.Message.Content); verr != nil {
			if strict {
				return nil, llm.NewValidationError(verr.Error(), verr).WithRequestID(ctx.RequestID())
			}
			resp = resp.WithRawFlag("json_invalid", true)
		}
	}

	if ctx.Request != nil {
		for _, call := range resp.ToolCalls {
			if verr := validateToolCall(ctx.Request.Tools, call); verr != nil {
				if strict {
					return nil, llm.NewValidationError(verr.Error(), verr).WithRequestID(ctx.RequestID())
				}
				resp = resp.WithRawFlag("tool_mismatch", true)
				break
			}
		}
	}

	return resp, nil
}

// HandleStream implements Middleware. JSON-mode validation accumulates all
// delta text and checks it at the terminal event; tool-call validation
// checks each accumulated tool_call event. A strict-mode failure surfaces
// as the stream's terminal error; lenient mode publishes the corresponding
// context item instead of annotating a (nonexistent, for streaming) raw
// response map.
func (m *ValidatorMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	stream, err := next(ctx)
	if err != nil {
		return nil, err
	}
	return &validatorStream{
		Stream:   stream,
		ctx:      ctx,
		strict:   ctx.Options.ThrowOnInvalidJSON,
		jsonMode: ctx.Request != nil && ctx.Request.ResponseFormat == llm.ResponseFormatJSONObject,
	}, nil
}

type validatorStream struct {
	llm.Stream
	ctx       *llm.ExecutionContext
	strict    bool
	jsonMode  bool
	textBuf   strings.Builder
	toolCalls []llm.ToolCall
	finished  bool
	validErr  error
}

func (s *validatorStream) Next() bool {
	ok := s.Stream.Next()
	if !ok {
		s.finalize()
		return false
	}
	if ev := s.Stream.Event(); ev != nil {
		switch ev.Kind {
		case llm.StreamEventDelta:
			s.textBuf.WriteString(ev.TextDelta)
		case llm.StreamEventToolCall:
			if ev.ToolCall != nil {
				s.toolCalls = append(s.toolCalls, *ev.ToolCall)
			}
		}
	}
	return true
}

func (s *validatorStream) Err() error {
	if s.validErr != nil {
		return s.validErr
	}
	return s.Stream.Err()
}

func (s *validatorStream) finalize() {
	if s.finished {
		return
	}
	s.finished = true

	if s.jsonMode {
		if verr := validateJSONObjectContent(s.textBuf.String()); verr != nil {
			if s.strict {
				s.validErr = llm.NewValidationError(verr.Error(), verr).WithRequestID(s.ctx.RequestID())
				return
			}
			if s.ctx.CallContext != nil {
				s.ctx.CallContext.SetItem(llm.ItemValidationJSON, true)
			}
		}
	}

	if s.ctx.Request == nil {
		return
	}
	for _, call := range s.toolCalls {
		if verr := validateToolCall(s.ctx.Request.Tools, call); verr != nil {
			if s.strict {
				s.validErr = llm.NewValidationError(verr.Error(), verr).WithRequestID(s.ctx.RequestID())
				return
			}
			if s.ctx.CallContext != nil {
				s.ctx.CallContext.SetItem(llm.ItemValidationTool, true)
			}
			break
		}
	}
}
