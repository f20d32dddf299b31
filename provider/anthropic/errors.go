package anthropic

import (
	"errors"
	"fmt"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared"

	"github.com/llmcomms/llmcomms/llm"
	"github.com/llmcomms/llmcomms/util"
)

// TranslateError maps an Anthropic SDK error to the normalized llm.Error
// taxonomy via util.StatusToError's HTTP status code table (spec §4.11).
func TranslateError(err error, requestID string) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return llm.NewProviderUnavailableError(fmt.Sprintf("anthropic: %s", err.Error()), err).WithRequestID(requestID)
	}

	// apiErr.Error() formats the request and response, so it is only used
	// when both are present; otherwise the status code alone is reported.
	msg := fmt.Sprintf("anthropic: status %d", apiErr.StatusCode)
	if apiErr.Request != nil && apiErr.Response != nil {
		msg = fmt.Sprintf("anthropic: %s", apiErr.Error())
	}
	mapped := util.StatusToError(apiErr.StatusCode, msg, requestID, nil)
	mapped.Cause = err
	var errResp shared.ErrorResponse
	if jsonErr := errResp.UnmarshalJSON([]byte(apiErr.RawJSON())); jsonErr == nil {
		mapped.ProviderCode = errResp.Error.Type
	}
	return mapped
}
