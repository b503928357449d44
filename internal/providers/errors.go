package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind categorizes why a provider request failed.
type ErrorKind string

const (
	// KindRateLimit indicates rate limiting (HTTP 429)
	KindRateLimit ErrorKind = "rate_limit"

	// KindAuth indicates authentication failure (HTTP 401, 403)
	KindAuth ErrorKind = "auth"

	// KindBilling indicates payment/quota issues (HTTP 402)
	KindBilling ErrorKind = "billing"

	// KindInvalidRequest indicates client-side issues (HTTP 400)
	KindInvalidRequest ErrorKind = "invalid_request"

	// KindTimeout indicates request timeout
	KindTimeout ErrorKind = "timeout"

	// KindServerError indicates server-side issues (HTTP 5xx)
	KindServerError ErrorKind = "server_error"

	// KindModelUnavailable indicates the model is not available
	KindModelUnavailable ErrorKind = "model_unavailable"

	// KindUnknown indicates an unclassified error
	KindUnknown ErrorKind = "unknown"
)

// IsRetryable returns true if the kind suggests retrying may succeed.
// The turn loop itself never retries; callers above it may.
func (k ErrorKind) IsRetryable() bool {
	switch k {
	case KindRateLimit, KindTimeout, KindServerError:
		return true
	default:
		return false
	}
}

// ProviderError represents a structured error from an LLM provider.
// It captures the context needed to tell a rate-limit failure apart
// from a generic API failure without string matching at call sites.
type ProviderError struct {
	// Kind categorizes the error
	Kind ErrorKind

	// Provider is the name of the provider (e.g., "claude", "openai")
	Provider string

	// Model is the model that was requested
	Model string

	// Status is the HTTP status code, if applicable
	Status int

	// Code is the provider-specific error code
	Code string

	// Message is the human-readable error message
	Message string

	// RequestID is the provider's request ID for debugging
	RequestID string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s]", e.Kind))

	if e.Provider != "" {
		parts = append(parts, e.Provider)
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new ProviderError with the given parameters.
func NewProviderError(provider, model string, cause error) *ProviderError {
	err := &ProviderError{
		Provider: provider,
		Model:    model,
		Cause:    cause,
		Kind:     KindUnknown,
	}

	if cause != nil {
		err.Message = cause.Error()
		err.Kind = ClassifyError(cause)
	}

	return err
}

// WithStatus adds HTTP status to the error and reclassifies.
func (e *ProviderError) WithStatus(status int) *ProviderError {
	e.Status = status
	e.Kind = classifyStatusCode(status)
	return e
}

// WithCode adds a provider-specific error code.
func (e *ProviderError) WithCode(code string) *ProviderError {
	e.Code = code
	if kind := classifyErrorCode(code); kind != KindUnknown {
		e.Kind = kind
	}
	return e
}

// WithRequestID adds the provider's request ID.
func (e *ProviderError) WithRequestID(id string) *ProviderError {
	e.RequestID = id
	return e
}

// WithMessage sets the error message.
func (e *ProviderError) WithMessage(msg string) *ProviderError {
	e.Message = msg
	return e
}

// ClassifyError inspects an error and returns the appropriate ErrorKind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context deadline") {
		return KindTimeout
	}

	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "rate_limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return KindRateLimit
	}

	if strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "invalid api key") ||
		strings.Contains(errStr, "invalid_api_key") ||
		strings.Contains(errStr, "authentication") ||
		strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") {
		return KindAuth
	}

	if strings.Contains(errStr, "billing") ||
		strings.Contains(errStr, "payment") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "402") {
		return KindBilling
	}

	if strings.Contains(errStr, "model not found") ||
		strings.Contains(errStr, "model_not_found") ||
		strings.Contains(errStr, "does not exist") {
		return KindModelUnavailable
	}

	if strings.Contains(errStr, "internal server") ||
		strings.Contains(errStr, "server error") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") {
		return KindServerError
	}

	return KindUnknown
}

// classifyStatusCode returns an ErrorKind based on HTTP status code.
func classifyStatusCode(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusPaymentRequired:
		return KindBilling
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusBadRequest:
		return KindInvalidRequest
	case status == http.StatusNotFound:
		return KindModelUnavailable
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}

// classifyErrorCode returns an ErrorKind based on provider-specific error codes.
func classifyErrorCode(code string) ErrorKind {
	switch strings.ToLower(code) {
	case "rate_limit_error", "rate_limit_exceeded":
		return KindRateLimit
	case "authentication_error", "invalid_api_key", "permission_error":
		return KindAuth
	case "billing_error", "insufficient_quota":
		return KindBilling
	case "not_found_error", "model_not_found":
		return KindModelUnavailable
	case "overloaded_error", "api_error", "server_error", "internal_error":
		return KindServerError
	case "invalid_request_error":
		return KindInvalidRequest
	case "timeout_error":
		return KindTimeout
	default:
		return KindUnknown
	}
}

// GetProviderError extracts a ProviderError from an error chain.
func GetProviderError(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr, true
	}
	return nil, false
}

// IsRateLimit reports whether an error is a provider rate-limit failure.
func IsRateLimit(err error) bool {
	if providerErr, ok := GetProviderError(err); ok {
		return providerErr.Kind == KindRateLimit
	}
	return ClassifyError(err) == KindRateLimit
}

// IsRetryable checks if an error could be retried by an outer caller.
func IsRetryable(err error) bool {
	if providerErr, ok := GetProviderError(err); ok {
		return providerErr.Kind.IsRetryable()
	}
	return ClassifyError(err).IsRetryable()
}
