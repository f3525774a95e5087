package metrics

import (
	"sync"
	"sync/atomic"
)

// LookupKey identifies a lookup counter.
type LookupKey struct {
	Kind    string
	Outcome string
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AccountsCreated        uint64
	AccountCreateConflicts uint64
	AccountLookups         map[LookupKey]uint64
	CacheHits              uint64
	CacheMisses            uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	accountsCreated        uint64
	accountCreateConflicts uint64
	cacheHits              uint64
	cacheMisses            uint64

	mu      sync.Mutex
	lookups map[LookupKey]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{lookups: make(map[LookupKey]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	lookups := make(map[LookupKey]uint64, len(m.lookups))
	for k, v := range m.lookups {
		lookups[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		AccountsCreated:        atomic.LoadUint64(&m.accountsCreated),
		AccountCreateConflicts: atomic.LoadUint64(&m.accountCreateConflicts),
		AccountLookups:         lookups,
		CacheHits:              atomic.LoadUint64(&m.cacheHits),
		CacheMisses:            atomic.LoadUint64(&m.cacheMisses),
	}
}

// IncAccountCreated increments the created counter.
func (m *InMemoryRecorder) IncAccountCreated() {
	atomic.AddUint64(&m.accountsCreated, 1)
}

// IncAccountCreateConflict increments the duplicate-username counter.
func (m *InMemoryRecorder) IncAccountCreateConflict() {
	atomic.AddUint64(&m.accountCreateConflicts, 1)
}

// IncAccountLookup increments the lookup counter for kind and outcome.
func (m *InMemoryRecorder) IncAccountLookup(kind, outcome string) {
	m.mu.Lock()
	m.lookups[LookupKey{Kind: kind, Outcome: outcome}]++
	m.mu.Unlock()
}

// IncCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCacheMiss() {
	atomic.AddUint64(&m.cacheMisses, 1)
}
