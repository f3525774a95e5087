// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Lookup kinds.
const (
	LookupByID       = "id"
	LookupByUsername = "username"
)

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	IncAccountCreated()
	IncAccountCreateConflict()
	IncAccountLookup(kind, outcome string)

	IncCacheHit()
	IncCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
