package client

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a server-reported failure: a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// TransportError is a failure to complete the exchange at all
// (DNS, refused connection, reset, canceled context).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Failure classifies an error returned by the client.
type Failure int

const (
	FailureNone Failure = iota
	FailureTransport
	FailureServer
)

// Classify reports whether err came from the network or from the server.
// Errors the client did not produce (e.g. local validation) classify as
// FailureNone.
func Classify(err error) Failure {
	var httpErr *HTTPError
	var transportErr *TransportError
	switch {
	case err == nil:
		return FailureNone
	case errors.As(err, &httpErr):
		return FailureServer
	case errors.As(err, &transportErr):
		return FailureTransport
	}
	return FailureNone
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsNotFound is IsStatus(err, 404).
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnauthorized is IsStatus(err, 401).
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// ServerMessage returns the message of a server-reported error, or "".
func ServerMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}
