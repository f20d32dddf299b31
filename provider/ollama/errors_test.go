package ollama

import (
	"errors"
	"net/http"
	"testing"

	"github.com/ollama/ollama/api"

	"github.com/llmcomms/llmcomms/llm"
)

func TestTranslateErrorMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   llm.ErrorKind
	}{
		{http.StatusBadRequest, llm.ErrorKindValidation},
		{http.StatusUnauthorized, llm.ErrorKindAuthorization},
		{http.StatusForbidden, llm.ErrorKindPermissionDenied},
		{http.StatusNotFound, llm.ErrorKindProviderUnknown},
		{http.StatusRequestTimeout, llm.ErrorKindTimeout},
		{http.StatusConflict, llm.ErrorKindProviderUnavailable},
		{http.StatusTooManyRequests, llm.ErrorKindRateLimited},
		{http.StatusInternalServerError, llm.ErrorKindProviderUnavailable},
	}

	for _, tc := range cases {
		statusErr := api.StatusError{StatusCode: tc.status, Status: "boom"}
		err := translateError(statusErr, "req-1")
		if !llm.IsKind(err, tc.want) {
			t.Errorf("status %d: got kind %v, want %v", tc.status, llm.KindOf(err), tc.want)
		}
	}
}

func TestTranslateErrorNonStatusErrorMapsToProviderUnavailable(t *testing.T) {
	err := translateError(errors.New("connection refused"), "req-2")
	if !llm.IsKind(err, llm.ErrorKindProviderUnavailable) {
		t.Fatalf("expected provider_unavailable, got %v", llm.KindOf(err))
	}
}

func TestTranslateErrorNilIsNil(t *testing.T) {
	if translateError(nil, "req-3") != nil {
		t.Error("expected nil error to translate to nil")
	}
}
