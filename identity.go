package nova

import "fmt"

// Identity wraps either a concrete state/event value or the wildcard "any".
//
// Identities are immutable and comparable, so they can be used directly as
// map keys. Strict (struct) equality treats the wildcard as equal only to
// the wildcard; wildcard-aware matching is the explicit Matches operation.
// Routing tables rely on strict equality for key lookups and apply wildcard
// semantics separately during resolution, so the two must never be mixed.
type Identity[T comparable] struct {
	value    T
	wildcard bool
}

// Exact wraps a concrete value.
func Exact[T comparable](v T) Identity[T] {
	return Identity[T]{value: v}
}

// Any returns the wildcard identity, which matches every concrete value.
func Any[T comparable]() Identity[T] {
	return Identity[T]{wildcard: true}
}

// IsAny reports whether the identity is the wildcard.
func (i Identity[T]) IsAny() bool {
	return i.wildcard
}

// Value returns the wrapped concrete value. The second result is false when
// the identity is the wildcard.
func (i Identity[T]) Value() (T, bool) {
	if i.wildcard {
		var zero T
		return zero, false
	}
	return i.value, true
}

// Matches reports whether candidate satisfies i when i is used as a pattern:
// the wildcard matches everything, a concrete identity matches only its own
// value.
func (i Identity[T]) Matches(candidate T) bool {
	return i.wildcard || i.value == candidate
}

func (i Identity[T]) String() string {
	if i.wildcard {
		return "any"
	}
	return fmt.Sprint(i.value)
}
