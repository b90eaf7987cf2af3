package image

import (
	"errors"
	"fmt"
)

// NetworkError reports an unreachable endpoint, a timeout or a non-2xx status
type NetworkError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return e.Provider + ": " + e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError reports image bytes that failed a size, type or content check
type ValidationError struct {
	Provider string
	Code     string // TOO_SMALL, TOO_LARGE, BAD_TYPE, BLANK, UNDECODABLE
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Provider + ": invalid image (" + e.Code + "): " + e.Message
}

// EmptyResponseError reports a successful response without a body
type EmptyResponseError struct {
	Provider string
}

func (e *EmptyResponseError) Error() string {
	return e.Provider + ": empty response"
}

// IsRetryable reports whether another attempt may succeed. Every
// generation failure is retryable; cancellation is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var (
		netErr   *NetworkError
		valErr   *ValidationError
		emptyErr *EmptyResponseError
	)
	return errors.As(err, &netErr) || errors.As(err, &valErr) || errors.As(err, &emptyErr)
}
