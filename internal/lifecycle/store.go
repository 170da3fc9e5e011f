// Package lifecycle holds the singleton cache of a container.
package lifecycle

import "reflect"

type slotState int

const (
	empty slotState = iota
	building
	filled
)

func (s slotState) String() string {
	switch s {
	case empty:
		return "empty"
	case building:
		return "building"
	case filled:
		return "filled"
	default:
		return "unknown"
	}
}

// slot is the cache cell of one singleton contract type.
type slot struct {
	state slotState
	value reflect.Value
}

// Store keeps at most one instance per singleton contract type, plus
// instances registered directly. A slot is only ever filled with a fully
// built instance.
//
// Store is not safe for concurrent use.
type Store struct {
	slots map[reflect.Type]*slot
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		slots: make(map[reflect.Type]*slot),
	}
}

// MarkSingleton creates an empty slot for t, dropping any cached instance.
func (s *Store) MarkSingleton(t reflect.Type) {
	s.slots[t] = &slot{}
}

// Unmark removes the slot for t.
func (s *Store) Unmark(t reflect.Type) {
	delete(s.slots, t)
}

// Has reports whether t has a slot, filled or not.
func (s *Store) Has(t reflect.Type) bool {
	_, ok := s.slots[t]
	return ok
}

// TryGet returns the cached instance for t if its slot is filled.
func (s *Store) TryGet(t reflect.Type) (reflect.Value, bool) {
	sl, ok := s.slots[t]
	if !ok || sl.state != filled {
		return reflect.Value{}, false
	}

	return sl.value, true
}

// Begin marks the slot of t as under construction. It reports false when t
// has no slot or the slot is not empty.
func (s *Store) Begin(t reflect.Type) bool {
	sl, ok := s.slots[t]
	if !ok || sl.state != empty {
		return false
	}

	sl.state = building
	return true
}

// Abandon resets a slot under construction back to empty.
func (s *Store) Abandon(t reflect.Type) {
	if sl, ok := s.slots[t]; ok && sl.state == building {
		sl.state = empty
	}
}

// Put fills the slot of t. It is a no-op when t is not a singleton, which
// happens when t was re-registered as transient while it was being built.
func (s *Store) Put(t reflect.Type, v reflect.Value) {
	sl, ok := s.slots[t]
	if !ok {
		return
	}

	sl.state = filled
	sl.value = v
}

// PutDirect stores v as a permanently filled slot for t, creating the slot
// when needed.
func (s *Store) PutDirect(t reflect.Type, v reflect.Value) {
	s.slots[t] = &slot{state: filled, value: v}
}

// State returns the name of the slot state of t, or "none".
func (s *Store) State(t reflect.Type) string {
	sl, ok := s.slots[t]
	if !ok {
		return "none"
	}

	return sl.state.String()
}

// Len returns the number of slots.
func (s *Store) Len() int {
	return len(s.slots)
}
