// Package apierrors provides shared error types for the NLx402 client.
package apierrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when an authenticated call is made without an API key.
	ErrMissingAPIKey = errors.New("API key is required but not set")

	// ErrInvalidConfig is returned when the client configuration is unusable.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrInvalidArgument is returned when a required argument is absent or empty.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized is returned when the facilitator rejects the API key.
	ErrUnauthorized = errors.New("invalid or unauthorized API key")

	// ErrPaymentRequired is returned when the facilitator demands payment (402).
	ErrPaymentRequired = errors.New("payment required")

	// ErrNotFound is returned when the facilitator reports a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is returned when the facilitator rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// maxBodyInMessage bounds how much of a response body is echoed by Error().
const maxBodyInMessage = 256

// ConfigError is raised locally, before any network call, when the client
// is not set up well enough to perform the requested operation.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Setting != "" {
		msg += ": " + e.Setting
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if errors.Is(e.Err, ErrMissingAPIKey) {
		msg += " (call SetAPIKey or pass WithAPIKey)"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Nlx402Error implements the marker interface.
func (e *ConfigError) Nlx402Error() {}

// ValidationError is raised locally, before any network call, when a
// required argument is absent or empty.
type ValidationError struct {
	Op     string
	Errors []string
}

func (e *ValidationError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Op, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Nlx402Error implements the marker interface.
func (e *ValidationError) Nlx402Error() {}

// RequestError represents a non-2xx response from the facilitator.
// Body holds the decoded JSON value when the body parsed, the raw text
// when it did not, and nil when the body was empty.
type RequestError struct {
	StatusCode int
	Message    string
	Body       any
	Raw        []byte
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("NLx402 request failed with status %d", e.StatusCode)
	}
	if len(e.Raw) == 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	body := string(e.Raw)
	if len(body) > maxBodyInMessage {
		body = body[:maxBodyInMessage] + "..."
	}
	return fmt.Sprintf("%s (status=%d, body=%s)", msg, e.StatusCode, body)
}

// Is implements errors.Is for sentinel error matching.
func (e *RequestError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return target == ErrUnauthorized
	case 402:
		return target == ErrPaymentRequired
	case 404:
		return target == ErrNotFound
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// Nlx402Error implements the marker interface.
func (e *RequestError) Nlx402Error() {}

// NetworkError represents a transport-level failure: no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Nlx402Error implements the marker interface.
func (e *NetworkError) Nlx402Error() {}

// Invalid returns a ValidationError for op with the given messages.
func Invalid(op string, msgs ...string) *ValidationError {
	return &ValidationError{Op: op, Errors: msgs}
}
