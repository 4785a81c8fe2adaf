package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable          = errors.New("server unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrRateLimited          = errors.New("rate limited")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrServer               = errors.New("server error")
	ErrRequest              = errors.New("request rejected")
)

// APIError is a non-2xx response. The backend reports details under either
// "error" or "message", so both are kept.
type APIError struct {
	StatusCode int
	ErrorText  string
	Message    string
}

func (e *APIError) Error() string {
	if d := e.Detail(); d != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, d)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Detail returns the server-provided text, preferring "error" over "message".
func (e *APIError) Detail() string {
	if e.ErrorText != "" {
		return e.ErrorText
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case e.StatusCode == http.StatusUnsupportedMediaType:
		return ErrUnsupportedMediaType
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return ErrRequest
	}
}

// AsAPIError extracts the *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ServerMessage returns the server-provided text carried by err, or "".
func ServerMessage(err error) string {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Detail()
	}
	return ""
}
