// Package dispatch implements the ordered registration storage shared by
// the routing and handler tables: priority-ordered callback lists with
// stable insertion, and guard buckets evaluated in registration order.
// Registrations are addressed by monotonically increasing integer keys
// handed out by the owning engine.
package dispatch

import (
	"cmp"
	"slices"
)

// Entry is one registered callback with its dispatch order and key.
type Entry[C any] struct {
	Order int
	Key   uint64
	Fn    func(C)
}

// List keeps entries in non-decreasing Order. Among entries of equal Order,
// insertion order is preserved: a new entry is placed after every existing
// entry of equal or lower Order.
type List[C any] struct {
	entries []Entry[C]
}

// Insert adds a callback at the position required by the stable ordering
// rule.
func (l *List[C]) Insert(order int, key uint64, fn func(C)) {
	at := len(l.entries)
	for i, e := range l.entries {
		if e.Order > order {
			at = i
			break
		}
	}
	l.entries = slices.Insert(l.entries, at, Entry[C]{Order: order, Key: key, Fn: fn})
}

// Remove deletes the entry with the given key, reporting whether it existed.
func (l *List[C]) Remove(key uint64) bool {
	for i, e := range l.entries {
		if e.Key == key {
			l.entries = slices.Delete(l.entries, i, i+1)
			return true
		}
	}
	return false
}

// Len returns the number of registered entries.
func (l *List[C]) Len() int {
	return len(l.entries)
}

// Entries returns a snapshot of the list. The copy keeps a dispatch pass
// stable when a handler adds or revokes registrations mid-pass.
func (l *List[C]) Entries() []Entry[C] {
	return append([]Entry[C](nil), l.entries...)
}

// Merge combines the entries of several lists into one dispatch pass,
// ordered by Order. The sort is stable, so entries of equal Order keep
// their relative position within each source list.
func Merge[C any](lists ...*List[C]) []Entry[C] {
	var merged []Entry[C]
	for _, l := range lists {
		if l != nil {
			merged = append(merged, l.entries...)
		}
	}
	slices.SortStableFunc(merged, func(a, b Entry[C]) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return merged
}

// Run invokes each entry with the same context, synchronously and in list
// order.
func Run[C any](entries []Entry[C], ctx C) {
	for _, e := range entries {
		e.Fn(ctx)
	}
}
