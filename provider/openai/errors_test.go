package openai

import (
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/llmcomms/llmcomms/llm"
)

func TestTranslateErrorMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   llm.ErrorKind
	}{
		{http.StatusBadRequest, llm.ErrorKindValidation},
		{http.StatusUnprocessableEntity, llm.ErrorKindValidation},
		{http.StatusUnauthorized, llm.ErrorKindAuthorization},
		{http.StatusForbidden, llm.ErrorKindPermissionDenied},
		{http.StatusPaymentRequired, llm.ErrorKindQuotaExceeded},
		{http.StatusNotFound, llm.ErrorKindProviderUnknown},
		{http.StatusRequestTimeout, llm.ErrorKindTimeout},
		{http.StatusConflict, llm.ErrorKindProviderUnavailable},
		{http.StatusTooManyRequests, llm.ErrorKindRateLimited},
		{http.StatusInternalServerError, llm.ErrorKindProviderUnavailable},
		{http.StatusTeapot, llm.ErrorKindLLM},
	}

	for _, tc := range cases {
		apiErr := &openai.APIError{HTTPStatusCode: tc.status, Message: "boom"}
		err := TranslateError(apiErr, "req-1")
		if !llm.IsKind(err, tc.want) {
			t.Errorf("status %d: got kind %v, want %v", tc.status, llm.KindOf(err), tc.want)
		}
		if llm.RequestIDOf(err) != "req-1" {
			t.Errorf("status %d: request id not preserved", tc.status)
		}
	}
}

func TestTranslateErrorRateLimitedCarriesRetryAfter(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}
	err := TranslateError(apiErr, "req-1")

	retryAfter := llm.ExtractRetryAfter(err)
	if retryAfter == nil || *retryAfter != defaultRetryAfter {
		t.Errorf("expected retry-after=%v, got %v", defaultRetryAfter, retryAfter)
	}
}

func TestTranslateErrorNonAPIErrorMapsToProviderUnavailable(t *testing.T) {
	err := TranslateError(errors.New("connection reset"), "req-2")
	if !llm.IsKind(err, llm.ErrorKindProviderUnavailable) {
		t.Fatalf("expected provider_unavailable, got %v", llm.KindOf(err))
	}
}

func TestTranslateErrorNilIsNil(t *testing.T) {
	if TranslateError(nil, "req-3") != nil {
		t.Error("expected nil error to translate to nil")
	}
}
