package openai

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/util"
)

// defaultRetryAfter is used when the provider signals a 429 without an
// explicit retry-after value; the go-openai APIError type does not expose
// response headers, only the decoded error body.
const defaultRetryAfter = 60 * time.Second

// TranslateError maps an OpenAI SDK error to the normalized llm.Error
// taxonomy via util.StatusToError's HTTP status code table (spec §4.11).
func TranslateError(err error, requestID string) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return llm.NewProviderUnavailableError(fmt.Sprintf("openai: %s", err.Error()), err).WithRequestID(requestID)
	}

	var retryAfter *time.Duration
	if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		d := defaultRetryAfter
		retryAfter = &d
	}

	mapped := util.StatusToError(apiErr.HTTPStatusCode, fmt.Sprintf("openai: %s", apiErr.Message), requestID, retryAfter)
	mapped.Cause = err
	if code, ok := apiErr.Code.(string); ok {
		mapped.ProviderCode = code
	}
	return mapped
}
