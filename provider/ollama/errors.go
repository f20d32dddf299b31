package ollama

import (
	"errors"
	"fmt"

	"github.com/ollama/ollama/api"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/util"
)

// translateError maps an Ollama SDK error to the normalized llm.Error
// taxonomy via util.StatusToError's HTTP status code table (spec §4.11).
func translateError(err error, requestID string) error {
	if err == nil {
		return nil
	}

	var statusErr api.StatusError
	if !errors.As(err, &statusErr) {
		return llm.NewProviderUnavailableError(fmt.Sprintf("ollama: %s", err.Error()), err).WithRequestID(requestID)
	}

	mapped := util.StatusToError(statusErr.StatusCode, fmt.Sprintf("ollama: %s", statusErr.Error()), requestID, nil)
	mapped.Cause = err
	return mapped
}
