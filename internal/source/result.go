// Package source wraps one logical piece of remote data as a fetch that
// never fails outward: a failure becomes an explicit absent result.
package source

// Result is either a present value or an absent marker carrying the reason.
type Result[T any] struct {
	value   T
	reason  error
	present bool
}

// Present wraps a fetched value.
func Present[T any](v T) Result[T] {
	return Result[T]{value: v, present: true}
}

// Absent records why no value is available.
func Absent[T any](reason error) Result[T] {
	return Result[T]{reason: reason}
}

// Get returns the value and whether it is present.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.present
}

// IsPresent reports whether a value was fetched.
func (r Result[T]) IsPresent() bool {
	return r.present
}

// Reason is the failure behind an absent result, nil when present.
func (r Result[T]) Reason() error {
	return r.reason
}

// OrElse returns the value, or def when absent.
func (r Result[T]) OrElse(def T) T {
	if r.present {
		return r.value
	}
	return def
}
