package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Classify maps an OpenAI client error to one of the package sentinels,
// keeping the provider message. Errors it does not recognize are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if sentinel := fromStatus(apiErr.HTTPStatusCode, apiErr.Message); sentinel != nil {
			return fmt.Errorf("%s: %w", apiErr.Message, sentinel)
		}
		return err
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if sentinel := fromStatus(reqErr.HTTPStatusCode, reqErr.Error()); sentinel != nil {
			return fmt.Errorf("HTTP %d: %w", reqErr.HTTPStatusCode, sentinel)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ErrTimeout)
	}
	return err
}

// fromStatus picks the sentinel for an HTTP status, or nil.
// A 429 mentioning quota or billing is a quota problem, not a rate limit.
func fromStatus(code int, msg string) error {
	switch code {
	case http.StatusTooManyRequests:
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return ErrQuotaExceeded
		}
		return ErrRateLimit
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return ErrBadRequest
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrServer
	}
	return nil
}

// IsRetryable reports whether a classified error is worth another attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrServer)
}
