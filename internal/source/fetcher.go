package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kitty/internal/api"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/metrics"
	"github.com/Veraticus/kitty/internal/resolver"
)

// Deps are the collaborators every fetcher shares.
type Deps struct {
	Resolver *resolver.Resolver
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Spec declares one source: where to read it, how to find it in the
// response, and what to use when it cannot be read.
type Spec[T any] struct {
	Default    T
	Decode     Decoder[T]
	Name       string
	Candidates []resolver.Candidate
	// Rules are tried in order; Envelope() is used when empty.
	Rules []Rule
}

// Fetcher reads a single source.
type Fetcher[T any] struct {
	deps Deps
	spec Spec[T]
}

// New creates a fetcher for spec.
func New[T any](deps Deps, spec Spec[T]) *Fetcher[T] {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if len(spec.Rules) == 0 {
		spec.Rules = Envelope()
	}
	return &Fetcher[T]{deps: deps, spec: spec}
}

// Name identifies the source in logs and snapshots.
func (f *Fetcher[T]) Name() string {
	return f.spec.Name
}

// Default is the value used when the source is absent.
func (f *Fetcher[T]) Default() T {
	return f.spec.Default
}

// Fetch reads the source. Every failure, including a panic in a decoder, is
// returned as an absent result rather than an error.
func (f *Fetcher[T]) Fetch(ctx context.Context) (result Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			result = Absent[T](fmt.Errorf("%s: panic while fetching: %v", f.spec.Name, p))
		}
		f.deps.Metrics.SourceFetched(f.spec.Name, result.IsPresent())
		if !result.IsPresent() {
			f.deps.Logger.Warn("Source absent, using default",
				"source", f.spec.Name,
				"error", result.Reason())
		}
	}()

	winner, resp, err := f.deps.Resolver.ResolveCandidate(ctx, f.spec.Candidates, nil)
	if err != nil {
		return Absent[T](err)
	}

	if err := api.CheckResponse(winner.Method, winner.Path, resp); err != nil {
		return Absent[T](err)
	}

	doc, err := parseDocument(resp.Body)
	if err != nil {
		return Absent[T](fmt.Errorf("%s: failed to parse response: %w", f.spec.Name, err))
	}

	tried := make([]string, 0, len(f.spec.Rules))
	for _, rule := range f.spec.Rules {
		tried = append(tried, rule.String())
		raw, ok := rule.extract(doc)
		if !ok {
			continue
		}
		if v, ok := f.spec.Decode(raw); ok {
			f.deps.Logger.Debug("Source fetched",
				"source", f.spec.Name,
				"path", winner.Path,
				"rule", rule.String())
			return Present(v)
		}
	}

	return Absent[T](&common.ShapeError{Source: f.spec.Name, Rules: tried})
}

// Value fetches the source and falls back to its default.
func (f *Fetcher[T]) Value(ctx context.Context) T {
	return f.Fetch(ctx).OrElse(f.spec.Default)
}
