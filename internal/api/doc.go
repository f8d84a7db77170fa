// Package api provides the request executor for the NLx402 facilitator.
// It handles authentication, header merging, form encoding and the mapping
// of responses onto results and errors.
//
// # Request Policy
//
// Every call goes through [Client.Do], which:
//
//   - rejects paths that do not begin with "/" and methods other than GET/POST;
//   - fails with a [apierrors.ConfigError] before any network activity when
//     the request requires an API key and none is set;
//   - adds the x-api-key header unless the caller already supplied one;
//   - reads the whole response body and decodes it as JSON, falling back to
//     the raw text when it is not JSON.
//
// A 2xx response is returned as a [Response]. Any other status becomes a
// [apierrors.RequestError] carrying the status code and the decoded body.
// There are no retries.
//
// # Transport
//
// The executor talks to the network through a [Doer]. *http.Client satisfies
// it; tests substitute their own. Timeouts and cancellation are those of the
// Doer and of the context passed to Do.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use provided its Doer is.
// SetAPIKey may be called while other calls are in flight.
package api
