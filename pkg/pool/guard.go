package pool

import (
	"github.com/ajitpratap0/perfbible/pkg/errors"
)

// ErrUninitialized is returned when a slot is read before it was written.
// Compare with errors.Is; the returned error carries the slot index.
var ErrUninitialized = errors.New(errors.ErrorTypeUninitialized, "slot read before write")

func uninitialized(index int) error {
	return errors.New(ErrUninitialized.Type, ErrUninitialized.Message).
		WithDetail("index", index)
}

// Guard is an exclusive handle to one slot. It is created by Pool.Allocate
// and must be released exactly once, normally with defer.
//
// Guard is a small value; copying it does not create a second loan. Every
// copy is invalidated by the first Release, and using any of them afterwards
// panics.
type Guard[T any] struct {
	pool  *Pool[T]
	index int
	gen   uint64
}

// owned returns the slot if g still holds its loan and panics otherwise.
func (g Guard[T]) owned(op string) *slot[T] {
	if g.pool == nil {
		panic(errors.New(errors.ErrorTypeMisuse, "use of zero guard").
			WithDetail("op", op))
	}
	s := &g.pool.slots[g.index]
	if !s.loaned || s.gen != g.gen {
		panic(errors.New(errors.ErrorTypeMisuse, "use of released guard").
			WithDetail("op", op).
			WithDetail("index", g.index))
	}
	return s
}

// Index returns the slot index this guard owns.
func (g Guard[T]) Index() int {
	return g.index
}

// Live reports whether the guard still holds its loan.
func (g Guard[T]) Live() bool {
	if g.pool == nil {
		return false
	}
	s := &g.pool.slots[g.index]
	return s.loaned && s.gen == g.gen
}

// State returns the slot's initialization state.
func (g Guard[T]) State() State {
	return g.owned("state").state
}

// Set stores v in the slot and marks it Occupied.
func (g Guard[T]) Set(v T) {
	s := g.owned("set")
	s.value = v
	s.state = Occupied
}

// Get returns the slot's value. It fails with ErrUninitialized when nothing
// has been written since the slot was acquired.
func (g Guard[T]) Get() (T, error) {
	s := g.owned("get")
	if s.state != Occupied {
		var zero T
		return zero, uninitialized(g.index)
	}
	return s.value, nil
}

// MustGet is like Get but panics on an uninitialized slot.
func (g Guard[T]) MustGet() T {
	v, err := g.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Ptr returns a pointer to the stored value for in-place mutation. The
// pointer is valid until the guard is released and must not be kept longer.
func (g Guard[T]) Ptr() (*T, error) {
	s := g.owned("ptr")
	if s.state != Occupied {
		return nil, uninitialized(g.index)
	}
	return &s.value, nil
}

// Emplace marks the slot Occupied and returns a pointer to its current
// contents for in-place construction. An Empty slot always holds the zero
// value, so Emplace never exposes data the caller has not seen before under
// the default policy.
func (g Guard[T]) Emplace() *T {
	s := g.owned("emplace")
	s.state = Occupied
	return &s.value
}

// Reset drops the value and marks the slot Empty.
func (g Guard[T]) Reset() {
	s := g.owned("reset")
	var zero T
	s.value = zero
	s.state = Empty
}

// Release returns the slot to the pool. Calling it a second time, or on any
// copy of an already released guard, panics with errors.ErrorTypeMisuse.
func (g Guard[T]) Release() {
	g.owned("release")
	g.pool.release(g.index)
}
