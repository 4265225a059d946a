// Package apierr classifies failures from the speech API into sentinel
// errors and retries the transient ones with exponential backoff.
//
// Adapters wrap provider errors at their boundary with Classify; callers
// branch with errors.Is(err, apierr.ErrRateLimit) and friends.
package apierr

import "errors"

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates too many requests (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the account ran out of quota (needs user action).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates the request or the upstream gateway timed out (retryable).
	ErrTimeout = errors.New("request timeout")

	// ErrServer indicates a 5xx response (retryable).
	ErrServer = errors.New("server error")

	// ErrAuthFailed indicates a missing or rejected API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that retrying cannot fix.
	ErrBadRequest = errors.New("bad request")
)
