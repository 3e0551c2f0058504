// Package session interprets bearer tokens handed out by the backend.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired means the stored token's exp claim has passed.
	ErrExpired = errors.New("session expired")
	// ErrEmptyToken means no token was supplied.
	ErrEmptyToken = errors.New("empty token")
)

// Claims are the parts of a token kitty cares about.
type Claims struct {
	ExpiresAt *time.Time
	Subject   string
	// Opaque is true when the token is not a JWT and carries no claims.
	Opaque bool
}

// Inspect reads a token's claims without verifying its signature; only the
// server can do that. Tokens that are not JWTs are reported as opaque.
func Inspect(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return &Claims{Opaque: true}, nil //nolint:nilerr // opaque tokens are valid bearer tokens
	}

	claims := &Claims{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		t := exp.Time
		claims.ExpiresAt = &t
	}
	return claims, nil
}

// FromToken builds the session to store for token.
func FromToken(token string, now time.Time) (*service.Session, error) {
	claims, err := Inspect(token)
	if err != nil {
		return nil, err
	}

	s := &service.Session{
		Token:     strings.TrimSpace(token),
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt,
		SavedAt:   now,
	}
	if err := Check(s, now); err != nil {
		return nil, err
	}
	return s, nil
}

// Check reports ErrExpired once now reaches the session's expiry.
func Check(s *service.Session, now time.Time) error {
	if s.ExpiresAt != nil && !now.Before(*s.ExpiresAt) {
		return fmt.Errorf("%w at %s", ErrExpired, s.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
