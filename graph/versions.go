package graph

// Versions tracks per-module monotonic counters. A module's counter
// starts at 0 and is bumped exactly once each time that specific id is
// removed by invalidation. Long-lived callers remember the version
// they initialized against and compare it each tick to detect
// staleness; the tracker itself never reinitializes anything.
//
// Single-writer, owner goroutine only.
type Versions struct {
	counters map[string]uint64
}

// NewVersions creates an empty version tracker.
func NewVersions() *Versions {
	return &Versions{counters: make(map[string]uint64)}
}

// Get returns the current counter for id, 0 if never bumped.
func (v *Versions) Get(id string) uint64 {
	return v.counters[id]
}

// Bump increments the counter for id and returns the new value.
func (v *Versions) Bump(id string) uint64 {
	v.counters[id]++
	return v.counters[id]
}

// Reset clears every counter.
func (v *Versions) Reset() {
	v.counters = make(map[string]uint64)
}
