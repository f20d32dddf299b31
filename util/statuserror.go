package util

import (
	"fmt"
	"net/http"
	"time"

	"github.com/llmcomms/llmcomms/llm"
)

// StatusToError maps an HTTP-style status code to an *llm.Error per spec
// §4.11's error translation table. It is total over the HTTP status
// domain: every status not explicitly listed falls through to a generic
// llm-kind error carrying the status code. requestID and providerMessage
// are attached when known; retryAfter is only meaningful for 429s.
func StatusToError(statusCode int, providerMessage string, requestID string, retryAfter *time.Duration) *llm.Error {
	var base *llm.Error

	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		base = llm.NewValidationError(message(statusCode, providerMessage), nil)
	case http.StatusUnauthorized:
		base = llm.NewAuthorizationError(message(statusCode, providerMessage), nil)
	case http.StatusForbidden:
		base = llm.NewPermissionDeniedError(message(statusCode, providerMessage), nil)
	case http.StatusPaymentRequired:
		base = llm.NewQuotaExceededError(message(statusCode, providerMessage), nil)
	case http.StatusNotFound:
		base = llm.NewProviderUnknownError(message(statusCode, providerMessage), nil)
	case http.StatusRequestTimeout:
		base = llm.NewTimeoutError(message(statusCode, providerMessage), nil)
	case http.StatusConflict:
		base = llm.NewProviderUnavailableError(message(statusCode, providerMessage), nil)
	case http.StatusTooManyRequests:
		base = llm.NewRateLimitedError(message(statusCode, providerMessage), retryAfter, nil)
	default:
		if statusCode >= 500 && statusCode < 600 {
			base = llm.NewProviderUnavailableError(message(statusCode, providerMessage), nil)
		} else {
			base = llm.NewLLMError(message(statusCode, providerMessage), statusCode, nil)
		}
	}

	base.StatusCode = statusCode
	base.RequestID = requestID
	return base
}

func message(statusCode int, providerMessage string) string {
	if providerMessage == "" {
		return fmt.Sprintf("provider returned status %d", statusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", statusCode, providerMessage)
}
