package fleet

import (
	"errors"
	"net/http"
)

// HttpError wraps a non-2xx response from the vehicle API. The adapter echoes the remote's
// status code back to the caller, so the code travels with the error.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

// Temporary returns true if the error might be the result of a transient condition, such as
// the vehicle still waking from sleep.
func (e *HttpError) Temporary() bool {
	return e.Code == http.StatusServiceUnavailable ||
		e.Code == http.StatusGatewayTimeout ||
		e.Code == http.StatusRequestTimeout
}

// Temporary returns true if err is an *HttpError with a transient status code.
func Temporary(err error) bool {
	var httpErr *HttpError
	return errors.As(err, &httpErr) && httpErr.Temporary()
}

// StatusCode extracts the remote status code from err, or returns fallback when err carries no
// HTTP status (network failures, decode failures).
func StatusCode(err error, fallback int) int {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return fallback
}
