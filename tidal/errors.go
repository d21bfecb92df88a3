package tidal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/xeptore/tidewave/auth"
)

var (
	ErrUnauthorized    = auth.ErrUnauthorized
	ErrNotFound        = errors.New("object not found")
	ErrTooManyRequests = errors.New("too many requests")
	ErrLoginRequired   = errors.New("login required")
	// errTokenExpired is internal: request() refreshes and retries on it once,
	// so callers only ever see ErrUnauthorized.
	errTokenExpired = errors.New("access token expired")
)

// APIError carries the raw error response for diagnostics. It wraps one of the
// sentinel errors above when the status maps to one, so errors.Is keeps
// working for callers.
type APIError struct {
	Status      int
	SubStatus   int
	UserMessage string
	Body        []byte
	sentinel    error
}

func (e *APIError) Error() string {
	if e.UserMessage != "" {
		return fmt.Sprintf("api error %d (sub-status %d): %s", e.Status, e.SubStatus, e.UserMessage)
	}

	return fmt.Sprintf("api error %d with body: %s", e.Status, string(e.Body))
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

func newAPIError(status int, body []byte, sentinel error) *APIError {
	var parsed struct {
		Status      int    `json:"status"`
		SubStatus   int    `json:"subStatus"`
		UserMessage string `json:"userMessage"`
	}
	// Some edge responses are not JSON at all. Keep the raw body either way.
	_ = json.Unmarshal(body, &parsed)

	if parsed.Status == 0 {
		parsed.Status = status
	}

	return &APIError{
		Status:      status,
		SubStatus:   parsed.SubStatus,
		UserMessage: parsed.UserMessage,
		Body:        body,
		sentinel:    sentinel,
	}
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		return nil
	}
}
