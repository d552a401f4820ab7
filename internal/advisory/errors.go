package advisory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors returned by advisory collaborators.
var (
	// ErrRateLimited is returned when the collaborator throttles us or the quota is spent.
	ErrRateLimited = errors.New("advisory: rate limited")

	// ErrServerError is returned for 5xx responses.
	ErrServerError = errors.New("advisory: server error")

	// ErrNotConfigured is returned when no advisory collaborator is set up.
	ErrNotConfigured = errors.New("advisory: not configured")

	// ErrMalformedResponse is returned when a response cannot be decoded.
	ErrMalformedResponse = errors.New("advisory: malformed response")
)

// APIError carries the HTTP status of a failed advisory call.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("advisory API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("advisory API error %d", e.StatusCode)
}

// Unwrap returns the underlying sentinel, if any.
func (e *APIError) Unwrap() error { return e.Err }

// FailureCode is the terminal failure taxonomy surfaced to callers once
// retries are exhausted.
type FailureCode string

const (
	FailureNone          FailureCode = ""
	FailureQuotaExceeded FailureCode = "QUOTA_EXCEEDED"
	FailureAPIError      FailureCode = "API_ERROR"
)

// IsRetryable reports whether err is a transient failure worth retrying:
// rate limits, exhausted quota and server-side errors. Errors that carry no
// typed information are matched on their message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "500") || strings.Contains(msg, "quota")
}

// Classify maps a terminal failure onto the closed failure taxonomy.
func Classify(err error) FailureCode {
	if err == nil {
		return FailureNone
	}
	if isQuotaSignal(err) {
		return FailureQuotaExceeded
	}
	return FailureAPIError
}

func isQuotaSignal(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}
