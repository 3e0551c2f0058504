// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Transport errors.
	ErrNetworkFailure      = errors.New("network failure")
	ErrHTTPFailure         = errors.New("http failure")
	ErrShapeMismatch       = errors.New("unexpected response shape")
	ErrExhaustedCandidates = errors.New("all candidate endpoints failed")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NetworkError is a transport-level failure: no response was received.
type NetworkError struct {
	Err    error
	Method string
	Path   string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetworkFailure.
func (e *NetworkError) Is(target error) bool { return target == ErrNetworkFailure }

// HTTPError is a received response whose status, or whose success flag,
// reports failure.
type HTTPError struct {
	Method  string
	Path    string
	Message string
	Body    []byte
	Status  int
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Is matches ErrHTTPFailure.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTPFailure }

// ShapeError means a response parsed but none of the extraction rules matched.
type ShapeError struct {
	Source string
	Rules  []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: no extraction rule matched (tried %s)", e.Source, strings.Join(e.Rules, ", "))
}

// Is matches ErrShapeMismatch.
func (e *ShapeError) Is(target error) bool { return target == ErrShapeMismatch }

// ExhaustedError is returned when every candidate endpoint failed. Attempted
// holds "METHOD path" for each candidate in the order tried.
type ExhaustedError struct {
	Last      error
	Attempted []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after trying %s: %v", ErrExhaustedCandidates, strings.Join(e.Attempted, ", "), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Is matches ErrExhaustedCandidates.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhaustedCandidates }

// LastStatus returns the HTTP status of the final failure, or 0 when the final
// failure was not an HTTP response.
func (e *ExhaustedError) LastStatus() int {
	var httpErr *HTTPError
	if errors.As(e.Last, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
