// Package resolver finds which of several guessed routes the backend actually
// serves for one logical operation.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Veraticus/kitty/internal/api"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/metrics"
	"github.com/Veraticus/kitty/internal/service"
)

// ErrNoCandidates is returned when Resolve is called with an empty list.
var ErrNoCandidates = errors.New("no candidate endpoints")

// Candidate is one concrete method and path, parameters already substituted.
type Candidate struct {
	Method string
	Path   string
}

func (c Candidate) String() string {
	return c.Method + " " + c.Path
}

// Get builds GET candidates from paths, in order.
func Get(paths ...string) []Candidate {
	return build(http.MethodGet, paths)
}

// Post builds POST candidates from paths, in order.
func Post(paths ...string) []Candidate {
	return build(http.MethodPost, paths)
}

// Put builds PUT candidates from paths, in order.
func Put(paths ...string) []Candidate {
	return build(http.MethodPut, paths)
}

func build(method string, paths []string) []Candidate {
	out := make([]Candidate, 0, len(paths))
	for _, p := range paths {
		out = append(out, Candidate{Method: method, Path: p})
	}
	return out
}

// Resolver tries candidates one at a time and stops at the first 2xx.
// Candidates may be distinct real endpoints with side effects, so trials are
// never run in parallel and each candidate is attempted exactly once.
type Resolver struct {
	transport service.Transport
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics records every attempt.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a Resolver over transport.
func New(transport service.Transport, opts ...Option) *Resolver {
	r := &Resolver{
		transport: transport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve sends payload to each candidate in order and returns the first 2xx
// response. When every candidate fails it returns a *common.ExhaustedError
// listing the attempted routes and wrapping the last failure.
func (r *Resolver) Resolve(ctx context.Context, candidates []Candidate, payload any) (*service.Response, error) {
	_, resp, err := r.ResolveCandidate(ctx, candidates, payload)
	return resp, err
}

// ResolveCandidate is Resolve that also reports which candidate answered.
func (r *Resolver) ResolveCandidate(ctx context.Context, candidates []Candidate, payload any) (Candidate, *service.Response, error) {
	if len(candidates) == 0 {
		return Candidate{}, nil, ErrNoCandidates
	}

	attempted := make([]string, 0, len(candidates))
	var last error

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return Candidate{}, nil, err
		}

		attempted = append(attempted, c.String())
		resp, err := r.transport.Do(ctx, c.Method, c.Path, payload)
		if err == nil && resp.OK() {
			r.metrics.EndpointAttempted(c.Method, true)
			r.logger.Debug("Resolved endpoint",
				"method", c.Method,
				"path", c.Path,
				"status", resp.Status,
				"attempt", len(attempted))
			return c, resp, nil
		}

		if err == nil {
			err = api.CheckResponse(c.Method, c.Path, resp)
		}
		r.metrics.EndpointAttempted(c.Method, false)
		r.logger.Debug("Candidate endpoint failed",
			"method", c.Method,
			"path", c.Path,
			"error", err)
		last = err
	}

	r.logger.Warn("No candidate endpoint succeeded",
		"attempted", strings.Join(attempted, ", "),
		"error", last)

	return Candidate{}, nil, &common.ExhaustedError{Attempted: attempted, Last: last}
}
