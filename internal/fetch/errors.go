package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTooLarge is returned when a response body exceeds Config.MaxBytes.
var ErrTooLarge = errors.New("response body too large")

var errBadRequest = errors.New("invalid request")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, text)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// Error is the terminal failure for one URL after all attempts were used.
type Error struct {
	URL      string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Attempts == 1 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: giving up after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode returns the last HTTP status seen, or 0 for transport failures.
func (e *Error) StatusCode() int {
	var statusErr *StatusError
	if errors.As(e, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
