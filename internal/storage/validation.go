// Package storage persists the signed-in session for the kitty CLI.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/kitty/internal/service"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidSession = errors.New("invalid session")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateSession(sess *service.Session) error {
	if sess == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if strings.TrimSpace(sess.Token) == "" {
		return fmt.Errorf("%w: token cannot be empty", ErrInvalidSession)
	}
	if strings.ContainsAny(sess.Token, " \t\r\n") {
		return fmt.Errorf("%w: token contains whitespace", ErrInvalidSession)
	}
	return nil
}
