// Package handle provides opaque record handles and a typed arena that
// tracks a version counter per record for change detection.
package handle

import (
	"slices"
	"strconv"
)

// Handle identifies a record in an Arena. The zero Handle is never issued.
type Handle uint32

// Nil is the handle that refers to nothing.
const Nil Handle = 0

// IsNil reports whether h refers to nothing.
func (h Handle) IsNil() bool {
	return h == Nil
}

// String returns the numeric handle.
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

type entry[T any] struct {
	value   *T
	version uint64
}

// Arena stores records of one type keyed by handle. Every mutation made
// through Touch bumps the record's version; consumers compare it against the
// version they last processed.
//
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	next    Handle
	entries map[Handle]*entry[T]
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{entries: make(map[Handle]*entry[T])}
}

// Insert stores v and returns its new handle.
func (a *Arena[T]) Insert(v *T) Handle {
	a.next++
	a.entries[a.next] = &entry[T]{value: v, version: 1}
	return a.next
}

// Get returns the record for h, or nil if it does not exist.
func (a *Arena[T]) Get(h Handle) *T {
	if e, ok := a.entries[h]; ok {
		return e.value
	}
	return nil
}

// Contains reports whether h is live.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.entries[h]
	return ok
}

// Version returns the record's version, or 0 if it does not exist.
func (a *Arena[T]) Version(h Handle) uint64 {
	if e, ok := a.entries[h]; ok {
		return e.version
	}
	return 0
}

// Touch marks the record as changed. It returns false if h is not live.
func (a *Arena[T]) Touch(h Handle) bool {
	e, ok := a.entries[h]
	if !ok {
		return false
	}
	e.version++
	return true
}

// Update applies fn to the record and marks it changed.
func (a *Arena[T]) Update(h Handle, fn func(*T)) bool {
	e, ok := a.entries[h]
	if !ok {
		return false
	}
	fn(e.value)
	e.version++
	return true
}

// Remove deletes the record and returns it.
func (a *Arena[T]) Remove(h Handle) (*T, bool) {
	e, ok := a.entries[h]
	if !ok {
		return nil, false
	}
	delete(a.entries, h)
	return e.value, true
}

// Len returns the number of live records.
func (a *Arena[T]) Len() int {
	return len(a.entries)
}

// Handles returns live handles in insertion order.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, len(a.entries))
	for h := range a.entries {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// Each calls fn for every live record in insertion order. fn must not
// insert into or remove from the arena.
func (a *Arena[T]) Each(fn func(Handle, *T)) {
	for _, h := range a.Handles() {
		fn(h, a.entries[h].value)
	}
}

// Tracker remembers the last version of each record a consumer processed.
type Tracker map[Handle]uint64

// Changed reports whether version differs from the one last seen for h.
func (t Tracker) Changed(h Handle, version uint64) bool {
	seen, ok := t[h]
	return !ok || seen != version
}

// Mark records version as processed for h.
func (t Tracker) Mark(h Handle, version uint64) {
	t[h] = version
}

// Forget drops h from the tracker.
func (t Tracker) Forget(h Handle) {
	delete(t, h)
}
