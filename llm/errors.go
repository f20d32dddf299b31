package llm

import (
	"errors"
	"time"
)

// ErrorKind categorizes an Error per the spec §7 taxonomy.
type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "validation"
	ErrorKindAuthorization     ErrorKind = "authorization"
	ErrorKindPermissionDenied  ErrorKind = "permission_denied"
	ErrorKindQuotaExceeded     ErrorKind = "quota_exceeded"
	ErrorKindRateLimited       ErrorKind = "rate_limited"
	ErrorKindProviderUnavailable ErrorKind = "provider_unavailable"
	ErrorKindProviderUnknown   ErrorKind = "provider_unknown"
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindNotSupported      ErrorKind = "not_supported"
	// ErrorKindLLM is the generic fallthrough supertype.
	ErrorKindLLM ErrorKind = "llm"
)

// Error is the provider-neutral, structured LLM error. Every surfaced error
// exposes Kind, Message, RequestID, and (where known) StatusCode and
// ProviderCode.
type Error struct {
	Kind         ErrorKind
	Message      string
	RequestID    string
	StatusCode   int
	ProviderCode string
	RetryAfter   *time.Duration
	Cause        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithRequestID returns a copy of e with RequestID set, used by components
// (policies, adapters) that only learn the request id after construction.
func (e *Error) WithRequestID(id string) *Error {
	clone := *e
	clone.RequestID = id
	return &clone
}

// newError is the shared constructor behind the New*Error helpers.
func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewValidationError creates a validation-kind error.
func NewValidationError(message string, cause error) *Error {
	return newError(ErrorKindValidation, message, cause)
}

// NewAuthorizationError creates an authorization-kind error.
func NewAuthorizationError(message string, cause error) *Error {
	return newError(ErrorKindAuthorization, message, cause)
}

// NewPermissionDeniedError creates a permission_denied-kind error.
func NewPermissionDeniedError(message string, cause error) *Error {
	return newError(ErrorKindPermissionDenied, message, cause)
}

// NewQuotaExceededError creates a quota_exceeded-kind error.
func NewQuotaExceededError(message string, cause error) *Error {
	return newError(ErrorKindQuotaExceeded, message, cause)
}

// NewRateLimitedError creates a rate_limited-kind error, optionally
// carrying the provider's retry-after hint.
func NewRateLimitedError(message string, retryAfter *time.Duration, cause error) *Error {
	e := newError(ErrorKindRateLimited, message, cause)
	e.RetryAfter = retryAfter
	return e
}

// NewProviderUnavailableError creates a provider_unavailable-kind error.
func NewProviderUnavailableError(message string, cause error) *Error {
	return newError(ErrorKindProviderUnavailable, message, cause)
}

// NewProviderUnknownError creates a provider_unknown-kind error.
func NewProviderUnknownError(message string, cause error) *Error {
	return newError(ErrorKindProviderUnknown, message, cause)
}

// NewTimeoutError creates a timeout-kind error.
func NewTimeoutError(message string, cause error) *Error {
	return newError(ErrorKindTimeout, message, cause)
}

// NewNotSupportedError creates a not_supported-kind error (capability
// rejections).
func NewNotSupportedError(message string) *Error {
	return newError(ErrorKindNotSupported, message, nil)
}

// NewLLMError creates a generic llm-kind error carrying a status code.
func NewLLMError(message string, statusCode int, cause error) *Error {
	e := newError(ErrorKindLLM, message, cause)
	e.StatusCode = statusCode
	return e
}

// KindOf extracts the ErrorKind from err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether err's kind is one of the retryable kinds
// per spec §4.10 (rate_limited, provider_unavailable) — generic network
// I/O failures are handled separately by policy.RetryPolicy since they
// arrive as plain errors, not *llm.Error.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrorKindRateLimited, ErrorKindProviderUnavailable:
		return true
	default:
		return false
	}
}

// ExtractRetryAfter returns the retry-after duration carried by err, if any.
func ExtractRetryAfter(err error) *time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return nil
}

// RequestIDOf extracts the request id carried by err, if any.
func RequestIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RequestID
	}
	return ""
}
