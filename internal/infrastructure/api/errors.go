package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidBaseURL is returned by NewClient for a relative or malformed base URL
var ErrInvalidBaseURL = errors.New("api: base URL must be absolute")

// APIError is a non-2xx answer from the store. Message is the server's
// error text and stays empty when the body carried none.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, msg)
}

// Temporary reports whether retrying later could succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsAPIError reports whether err carries an APIError and returns it
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
