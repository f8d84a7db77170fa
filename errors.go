package nlx402

import (
	"github.com/nlx402/client-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when an authenticated operation is called
	// before an API key is configured.
	ErrMissingAPIKey = apierrors.ErrMissingAPIKey

	// ErrInvalidConfig is returned by New when the configuration is unusable.
	ErrInvalidConfig = apierrors.ErrInvalidConfig

	// ErrInvalidArgument is returned when a required argument is absent or empty.
	ErrInvalidArgument = apierrors.ErrInvalidArgument

	// ErrUnauthorized is returned when the facilitator rejects the API key.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrPaymentRequired is returned when the facilitator answers 402.
	ErrPaymentRequired = apierrors.ErrPaymentRequired

	// ErrNotFound is returned when the facilitator answers 404.
	ErrNotFound = apierrors.ErrNotFound

	// ErrRateLimited is returned when the facilitator rate limit is exceeded.
	ErrRateLimited = apierrors.ErrRateLimited
)

// Error is implemented by all SDK errors.
type Error interface {
	error
	Nlx402Error() // marker method
}

// ConfigError is returned locally, before any network call, when the client
// is missing a setting the operation needs.
type ConfigError = apierrors.ConfigError

// ValidationError is returned locally, before any network call, when a
// required argument is absent or empty.
type ValidationError = apierrors.ValidationError

// RequestError is returned when the facilitator answers with a non-2xx
// status. Body holds the decoded JSON body, or the raw text if it was not
// JSON, so server diagnostics can be inspected.
type RequestError = apierrors.RequestError

// NetworkError is returned when no response was received at all.
type NetworkError = apierrors.NetworkError

var (
	_ Error = (*ConfigError)(nil)
	_ Error = (*ValidationError)(nil)
	_ Error = (*RequestError)(nil)
	_ Error = (*NetworkError)(nil)
)
