package strings

import (
	"sync"
	"sync/atomic"
)

// InternPool deduplicates frequently repeated strings such as log levels and
// metadata keys. Interned strings never alias the caller's buffer, so views
// into a parsed input can be interned and kept after the input is dropped.
// Safe for concurrent use.
type InternPool struct {
	mu      sync.RWMutex
	strings map[string]string
	maxSize int
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewInternPool creates a pool holding at most maxSize strings. A
// non-positive maxSize means unbounded.
func NewInternPool(maxSize int, preload ...string) *InternPool {
	p := &InternPool{
		strings: make(map[string]string, len(preload)),
		maxSize: maxSize,
	}
	for _, s := range preload {
		p.Intern(s)
	}
	return p
}

// Intern returns the canonical copy of s. When the pool is full an owned
// copy is returned without being stored.
func (p *InternPool) Intern(s string) string {
	// Fast path: check if already interned
	p.mu.RLock()
	if interned, ok := p.strings[s]; ok {
		p.mu.RUnlock()
		p.hits.Add(1)
		return interned
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if interned, ok := p.strings[s]; ok {
		p.hits.Add(1)
		return interned
	}

	p.misses.Add(1)
	owned := Clone(s)
	if p.maxSize > 0 && len(p.strings) >= p.maxSize {
		return owned
	}
	p.strings[owned] = owned
	return owned
}

// Stats returns intern pool statistics
func (p *InternPool) Stats() (size, hits, misses int64) {
	p.mu.RLock()
	size = int64(len(p.strings))
	p.mu.RUnlock()
	return size, p.hits.Load(), p.misses.Load()
}
