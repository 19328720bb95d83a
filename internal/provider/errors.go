package provider

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// Sentinel errors for common backend failures.
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidModel       = errors.New("invalid model")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNetwork            = errors.New("network error")
	ErrEmptyResponse      = errors.New("backend returned no choices")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeInvalidModel   ErrorCode = "invalid_model"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeEmptyResponse  ErrorCode = "empty_response"
)

var codeSentinels = map[ErrorCode]error{
	ErrorCodeAuth:           ErrAuthentication,
	ErrorCodeRateLimit:      ErrRateLimit,
	ErrorCodeInvalidRequest: ErrInvalidRequest,
	ErrorCodeInvalidModel:   ErrInvalidModel,
	ErrorCodeUnavailable:    ErrServiceUnavailable,
	ErrorCodeNetwork:        ErrNetwork,
	ErrorCodeEmptyResponse:  ErrEmptyResponse,
}

// ProviderError wraps backend failures with additional context.
// Every ProviderError is UpstreamUnavailable from the caller's point of view.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	StatusCode int // HTTP status from the backend, 0 when no response was received
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error and the sentinel matching Code.
func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := codeSentinels[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Underlying != nil {
		errs = append(errs, e.Underlying)
	}
	return errs
}

func (e *ProviderError) Kind() errutil.Kind { return errutil.KindUpstreamUnavailable }

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}
