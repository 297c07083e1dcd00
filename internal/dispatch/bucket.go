package dispatch

import "slices"

// GuardEntry is one guarded route registration. A nil Guard always passes.
type GuardEntry[C any] struct {
	Key   uint64
	Guard func(C) bool
}

// Bucket stores the guard registrations of a single routing key in
// registration order. Registration order is also evaluation order, which
// keeps resolution reproducible even though only the boolean outcome is
// contracted to callers.
type Bucket[C any] struct {
	entries []GuardEntry[C]
}

// Insert appends a guard registration.
func (b *Bucket[C]) Insert(key uint64, guard func(C) bool) {
	b.entries = append(b.entries, GuardEntry[C]{Key: key, Guard: guard})
}

// Remove deletes the registration with the given key, reporting whether it
// existed.
func (b *Bucket[C]) Remove(key uint64) bool {
	for i, e := range b.entries {
		if e.Key == key {
			b.entries = slices.Delete(b.entries, i, i+1)
			return true
		}
	}
	return false
}

// Empty reports whether the bucket holds no registrations.
func (b *Bucket[C]) Empty() bool {
	return len(b.entries) == 0
}

// Approves evaluates the stored guards against ctx and reports whether any
// of them passes. The first passing guard wins; later guards are not
// evaluated.
func (b *Bucket[C]) Approves(ctx C) bool {
	for _, e := range b.entries {
		if e.Guard == nil || e.Guard(ctx) {
			return true
		}
	}
	return false
}
