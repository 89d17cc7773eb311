// Package api implements the REST client for the shop backend: error
// taxonomy, bearer credential handling with single-shot
// refresh-and-retry, the server availability probe, and the resource
// services (products, orders, users, reviews, auth).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure classes pages branch on.
var (
	// ErrServerUnavailable means no HTTP response was received at all
	// (network-level failure).
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrSessionExpired is terminal: a protected call got 401 and the
	// one permitted credential refresh also failed. The user must log
	// in again.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNotFound maps 404 responses.
	ErrNotFound = errors.New("not found")
)

// AuthError reports a 400/401 on a credential operation (login, change
// password, profile refresh).
type AuthError struct {
	StatusCode int
	Message    string
	// Expired marks a 401 on an already-authenticated call: the caller
	// must treat the session as gone and re-login.
	Expired bool
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Expired {
		return "credential expired"
	}
	return fmt.Sprintf("authentication failed (status %d)", e.StatusCode)
}

// ValidationError carries field-level messages from a 4xx rejection.
type ValidationError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid request (status %d)", e.StatusCode)
}

// ServerError maps 5xx responses.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// errorBody is the JSON shape the backend uses for error responses.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// classifyStatus converts a non-2xx response into the taxonomy. The
// body has already been read.
func classifyStatus(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{StatusCode: status, Message: eb.text(), Expired: true}
	case status == http.StatusNotFound:
		if msg := eb.text(); msg != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return ErrNotFound
	case status >= 500:
		return &ServerError{StatusCode: status, Message: eb.text()}
	case len(eb.Errors) > 0:
		return &ValidationError{StatusCode: status, Message: eb.text(), Fields: eb.Errors}
	case status == http.StatusBadRequest:
		return &ValidationError{StatusCode: status, Message: eb.text()}
	default:
		return &ValidationError{StatusCode: status, Message: eb.text()}
	}
}

// IsAuthFailure reports whether err is a 401-class failure (expired or
// rejected credential), including the terminal ErrSessionExpired.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	var ae *AuthError
	return errors.As(err, &ae)
}
