// Package cache provides a lock-free container for read-mostly values
// that get replaced wholesale, such as a geo database reader.
package cache

import "sync/atomic"

// Snapshot holds one immutable value of type T. Readers never block
// writers and vice versa.
type Snapshot[T any] struct{ v atomic.Value }

type box[T any] struct{ val T }

// Load returns the current value and whether one has been stored yet.
func (s *Snapshot[T]) Load() (T, bool) {
	b, ok := s.v.Load().(box[T])
	if !ok {
		var zero T
		return zero, false
	}
	return b.val, true
}

// Store atomically replaces the value.
func (s *Snapshot[T]) Store(val T) {
	s.v.Store(box[T]{val: val})
}

// Swap stores val and returns the previously held value, if any.
func (s *Snapshot[T]) Swap(val T) (T, bool) {
	prev, ok := s.v.Swap(box[T]{val: val}).(box[T])
	if !ok {
		var zero T
		return zero, false
	}
	return prev.val, true
}
