// Package pool implements a fixed-capacity slot pool that hands out reusable
// storage without heap allocation on the hot path. It is the memory primitive
// behind the pooled log parser and the allocation benchmarks.
//
// Architecture
//
// A Pool[T] owns one upfront allocation of slots plus a LIFO free list of
// slot indices. Allocate pops an index and returns a Guard[T] bound to it;
// Release pushes the index back. After construction only index bookkeeping
// happens per allocate/release.
//
// Core Types:
//
//   - Pool[T]: owns the slots and the free list
//   - Guard[T]: exclusive handle to one slot for a bounded scope
//   - Observer: optional hook for metrics (see pkg/metrics)
//
// Slot States
//
// Every slot is either Empty or Occupied. A slot is Empty until a value is
// written through its guard. Reading an Empty slot returns an error of type
// errors.ErrorTypeUninitialized instead of whatever bytes happen to be there.
//
//	Free --Allocate--> Loaned --Release--> Free
//
// Reuse Policy
//
// By default Release zeroes the value and marks the slot Empty, so a reused
// slot never exposes the previous occupant. Two options change that:
//
//	pool.WithRetainValues()        // keep the stale value, slot stays Occupied
//	pool.WithReset(func(v *T) {})  // run a reset hook, a written slot stays Occupied
//
// WithReset is the right choice for values that carry reusable capacity such
// as slices or maps.
//
// Usage Patterns
//
// Basic usage:
//
//	p := pool.New[Message](64)
//
//	g, ok := p.Allocate()
//	if !ok {
//		// exhausted: wait, shed load or fail, the pool does not decide
//		return errBusy
//	}
//	defer g.Release() // release on every exit path
//
//	g.Set(Message{ID: 1})
//	msg, err := g.Get()
//
// Scoped usage:
//
//	ok, err := p.With(func(g pool.Guard[Message]) error {
//		g.Set(Message{ID: 2})
//		return send(g.MustGet())
//	})
//
// Misuse
//
// Releasing a guard twice, using a guard after release, or using a copy of a
// released guard is a programmer error and panics with an error of type
// errors.ErrorTypeMisuse. Exhaustion is never a panic.
//
// A guard that is never released permanently removes one slot of capacity.
// That is a resource leak, not a memory safety problem; Close reports it.
//
// Concurrency
//
// A Pool is single owner. It takes no locks and must not be shared between
// goroutines without external synchronization.
package pool
