// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"net/http"
	"time"
)

// Response is what the transport hands back for any received status. The body
// is kept raw so 4xx and 5xx payloads stay inspectable.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport performs one JSON request against the backend. It returns an error
// only when no response was received, including when no session token was
// available. path is relative to the configured base URL and body, when
// non-nil, is JSON encoded.
type Transport interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// TokenStore supplies the bearer token attached to every request.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
}

// Session is the persisted sign-in state of the CLI.
type Session struct {
	SavedAt   time.Time
	ExpiresAt *time.Time
	Token     string
	Subject   string
}

// SessionStorage persists the current session.
type SessionStorage interface {
	TokenStore
	SaveSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context) (*Session, error)
	ClearSession(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
