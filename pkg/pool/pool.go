package pool

import (
	"github.com/ajitpratap0/perfbible/pkg/errors"
)

// State is the initialization state of a slot.
type State uint8

const (
	// Empty means no value has been written since the slot was acquired.
	Empty State = iota
	// Occupied means the slot holds a value that may be read.
	Occupied
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// ReusePolicy controls what a released slot looks like to its next borrower.
type ReusePolicy uint8

const (
	// ResetOnRelease zeroes the value and marks the slot Empty.
	ResetOnRelease ReusePolicy = iota
	// RetainOnRelease keeps the previous value and its Occupied state.
	RetainOnRelease
	// HookOnRelease runs the configured reset hook on an Occupied slot and
	// keeps it Occupied. A slot that was never written stays Empty.
	HookOnRelease
)

// String implements fmt.Stringer.
func (p ReusePolicy) String() string {
	switch p {
	case ResetOnRelease:
		return "reset"
	case RetainOnRelease:
		return "retain"
	case HookOnRelease:
		return "hook"
	default:
		return "unknown"
	}
}

// Observer receives pool events. Implementations must not allocate if the
// caller relies on an allocation-free hot path. See metrics.PoolObserver.
type Observer interface {
	OnAllocate(index, inUse int)
	OnRelease(index, inUse int)
	OnExhausted()
}

type slot[T any] struct {
	value  T
	state  State
	loaned bool
	// gen identifies the current loan; guards from earlier loans carry an
	// older value and are rejected.
	gen uint64
}

// Pool is a fixed-capacity pool of slots holding values of type T.
//
// The set of indices on the free list plus the set of indices held by live
// guards is always exactly {0, ..., capacity-1}. A Pool is not safe for
// concurrent use.
type Pool[T any] struct {
	slots    []slot[T]
	free     []int
	capacity int
	policy   ReusePolicy
	reset    func(*T)
	observer Observer
	closed   bool
	stats    struct {
		allocations int64
		releases    int64
		exhaustions int64
	}
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithRetainValues keeps a released slot's value for the next borrower.
// Reads after reuse return the stale value.
func WithRetainValues[T any]() Option[T] {
	return func(p *Pool[T]) {
		p.policy = RetainOnRelease
		p.reset = nil
	}
}

// WithReset runs fn on a released slot's value and keeps it readable by the
// next borrower. Use it to keep slice or map capacity across loans. Slots
// released without a value stay Empty and fn is not called for them. fn
// runs after the slot is back on the free list; if it panics the slot is
// left Empty.
func WithReset[T any](fn func(*T)) Option[T] {
	return func(p *Pool[T]) {
		if fn == nil {
			p.policy = ResetOnRelease
			p.reset = nil
			return
		}
		p.policy = HookOnRelease
		p.reset = fn
	}
}

// WithObserver installs an event observer.
func WithObserver[T any](o Observer) Option[T] {
	return func(p *Pool[T]) {
		p.observer = o
	}
}

// New creates a pool with room for exactly capacity values. All storage is
// allocated here; Allocate and Release never allocate. A negative capacity
// panics with an error of type errors.ErrorTypeValidation. A zero capacity
// pool is valid and always exhausted.
func New[T any](capacity int, opts ...Option[T]) *Pool[T] {
	if capacity < 0 {
		panic(errors.New(errors.ErrorTypeValidation, "pool capacity must not be negative").
			WithDetail("capacity", capacity))
	}

	p := &Pool[T]{
		slots:    make([]slot[T], capacity),
		free:     make([]int, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(p)
	}

	// Reverse order so the first allocations hand out low indices.
	for i := 0; i < capacity; i++ {
		p.free[i] = capacity - 1 - i
	}

	return p
}

// Allocate takes a free slot. It returns false when every slot is on loan;
// that is an expected outcome, not an error. The slot's state is whatever
// the reuse policy left behind: Empty on first use and under the default
// policy.
func (p *Pool[T]) Allocate() (Guard[T], bool) {
	if p.closed {
		return Guard[T]{}, false
	}
	n := len(p.free)
	if n == 0 {
		p.stats.exhaustions++
		if p.observer != nil {
			p.observer.OnExhausted()
		}
		return Guard[T]{}, false
	}

	idx := p.free[n-1]
	p.free = p.free[:n-1]

	s := &p.slots[idx]
	s.loaned = true
	s.gen++
	p.stats.allocations++
	if p.observer != nil {
		p.observer.OnAllocate(idx, p.InUse())
	}

	return Guard[T]{pool: p, index: idx, gen: s.gen}, true
}

// With acquires a slot, runs fn and releases the slot on every exit path,
// including a panic inside fn. It returns false without calling fn when the
// pool is exhausted.
func (p *Pool[T]) With(fn func(g Guard[T]) error) (bool, error) {
	g, ok := p.Allocate()
	if !ok {
		return false, nil
	}
	defer g.Release()
	return true, fn(g)
}

// release returns idx to the free list. Only Guard.Release calls it, after
// checking that the guard still owns the loan. The loan ends before the
// reuse policy runs, so a panicking reset hook leaves the slot free and
// Empty.
func (p *Pool[T]) release(idx int) {
	s := &p.slots[idx]
	s.loaned = false
	s.gen++
	p.free = append(p.free, idx)
	p.stats.releases++

	switch p.policy {
	case RetainOnRelease:
	case HookOnRelease:
		// Only a written slot stays Occupied; an unwritten one must still
		// fail the next read.
		if s.state == Occupied {
			s.state = Empty
			p.reset(&s.value)
			s.state = Occupied
		}
	default:
		var zero T
		s.value = zero
		s.state = Empty
	}

	if p.observer != nil {
		p.observer.OnRelease(idx, p.InUse())
	}
}

// Cap returns the fixed capacity.
func (p *Pool[T]) Cap() int {
	return p.capacity
}

// Len returns the number of free slots.
func (p *Pool[T]) Len() int {
	if p.closed {
		return 0
	}
	return len(p.free)
}

// InUse returns the number of slots currently on loan.
func (p *Pool[T]) InUse() int {
	if p.closed {
		return 0
	}
	return p.capacity - len(p.free)
}

// Policy returns the configured reuse policy.
func (p *Pool[T]) Policy() ReusePolicy {
	return p.policy
}

// Stats is a point in time view of a pool.
type Stats struct {
	Capacity    int
	Free        int
	InUse       int
	Occupied    int
	Allocations int64
	Releases    int64
	Exhaustions int64
}

// Stats returns current counters. It walks the slots to count occupied
// ones, so keep it off the hot path.
func (p *Pool[T]) Stats() Stats {
	occupied := 0
	for i := range p.slots {
		if p.slots[i].state == Occupied {
			occupied++
		}
	}
	return Stats{
		Capacity:    p.capacity,
		Free:        len(p.free),
		InUse:       p.InUse(),
		Occupied:    occupied,
		Allocations: p.stats.allocations,
		Releases:    p.stats.releases,
		Exhaustions: p.stats.exhaustions,
	}
}

// Audit verifies that free and loaned indices partition {0..capacity-1}.
// It returns an error of type errors.ErrorTypeInternal describing the first
// violation found.
func (p *Pool[T]) Audit() error {
	if p.closed {
		return nil
	}
	seen := make([]bool, p.capacity)
	for _, idx := range p.free {
		if idx < 0 || idx >= p.capacity {
			return errors.New(errors.ErrorTypeInternal, "free list index out of range").
				WithDetail("index", idx)
		}
		if seen[idx] {
			return errors.New(errors.ErrorTypeInternal, "index on free list twice").
				WithDetail("index", idx)
		}
		if p.slots[idx].loaned {
			return errors.New(errors.ErrorTypeInternal, "index both free and loaned").
				WithDetail("index", idx)
		}
		seen[idx] = true
	}
	for idx := range p.slots {
		if !seen[idx] && !p.slots[idx].loaned {
			return errors.New(errors.ErrorTypeInternal, "index neither free nor loaned").
				WithDetail("index", idx)
		}
	}
	return nil
}

// Close destroys the pool. Every stored value is dropped and outstanding
// guards become invalid; using one afterwards panics. Outstanding guards at
// Close are a caller error and are reported as errors.ErrorTypeMisuse.
// Allocate on a closed pool always returns false without counting an
// exhaustion.
func (p *Pool[T]) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	leaked := 0
	var zero T
	for i := range p.slots {
		s := &p.slots[i]
		if s.loaned {
			leaked++
			s.loaned = false
		}
		s.value = zero
		s.state = Empty
		s.gen++
	}
	p.free = p.free[:0]

	if leaked > 0 {
		return errors.New(errors.ErrorTypeMisuse, "pool closed with outstanding guards").
			WithDetail("outstanding", leaked).
			WithDetail("capacity", p.capacity)
	}
	return nil
}
