package runtime

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Invalidate removes id and every module transitively depending on it.
// It returns how many modules were removed. Builtin-prefixed ids are a
// silent no-op: protection is a signal, never an error.
func (r *Runtime) Invalidate(id string) (int, error) {
	return r.InvalidateMany([]string{id})
}

// InvalidateMany invalidates a batch of seeds under one shared visited
// set, so overlapping dependency cones are removed once.
func (r *Runtime) InvalidateMany(ids []string) (int, error) {
	if err := r.guard.Check(); err != nil {
		return 0, err
	}
	return r.invalidate(ids), nil
}

// InvalidatePrefix invalidates every recorded module whose id starts
// with prefix, plus everything depending on them.
func (r *Runtime) InvalidatePrefix(prefix string) (int, error) {
	if err := r.guard.Check(); err != nil {
		return 0, err
	}
	return r.invalidate(r.idsWithPrefix(prefix)), nil
}

func (r *Runtime) idsWithPrefix(prefix string) []string {
	var seeds []string
	for _, id := range r.registry.IDs() {
		if strings.HasPrefix(id, prefix) {
			seeds = append(seeds, id)
		}
	}
	return seeds
}

// invalidate is the single removal path: reverse closure over the
// dependency graph, then evict + purge + bump + drop per removed id.
// Owner goroutine only; callers hold the guard.
func (r *Runtime) invalidate(seeds []string) int {
	protected := func(id string) bool {
		return strings.HasPrefix(id, r.builtinPrefix) || r.registry.IsBuiltin(id)
	}

	closure := r.graph.ReverseClosure(seeds, protected)

	removed := 0
	for _, id := range closure {
		if _, ok := r.registry.Lookup(id); !ok {
			continue
		}
		r.registry.Evict(id)
		r.registry.Purge(id)
		r.graph.Remove(id)
		r.versions.Bump(id)
		removed++
	}

	if removed > 0 {
		Logger().Debug("invalidated modules",
			zap.Strings("seeds", seeds),
			zap.Int("removed", removed))
	}
	return removed
}

// MarkChanged records changed ids for the next tick. Safe from any
// goroutine; this is how watchers and other background producers hand
// changes to the owner.
func (r *Runtime) MarkChanged(ids ...string) {
	if len(ids) == 0 {
		return
	}
	r.pendingMu.Lock()
	for _, id := range ids {
		r.pendingIDs[id] = struct{}{}
	}
	r.pendingMu.Unlock()
}

// MarkChangedPrefix records a changed id prefix for the next tick.
// Safe from any goroutine.
func (r *Runtime) MarkChangedPrefix(prefix string) {
	r.pendingMu.Lock()
	r.pendingPrefixes = append(r.pendingPrefixes, prefix)
	r.pendingMu.Unlock()
}

// TickStats reports what one tick did.
type TickStats struct {
	// Jobs is the number of queued jobs executed.
	Jobs int

	// Invalidated is the number of modules removed by pending changes.
	Invalidated int
}

// Tick runs one owner-side maintenance pass with a fixed phase order:
// drain queued jobs first (bounded by maxJobs and budget), then apply
// pending invalidations. Version bumps are therefore visible to
// consumers by the time Tick returns.
func (r *Runtime) Tick(maxJobs int, budget time.Duration) (TickStats, error) {
	if err := r.guard.Check(); err != nil {
		return TickStats{}, err
	}

	var stats TickStats
	stats.Jobs = r.queue.Drain(maxJobs, budget)

	r.pendingMu.Lock()
	ids := make([]string, 0, len(r.pendingIDs))
	for id := range r.pendingIDs {
		ids = append(ids, id)
	}
	prefixes := r.pendingPrefixes
	r.pendingIDs = make(map[string]struct{})
	r.pendingPrefixes = nil
	r.pendingMu.Unlock()

	for _, p := range prefixes {
		ids = append(ids, r.idsWithPrefix(p)...)
	}
	if len(ids) > 0 {
		stats.Invalidated = r.invalidate(ids)
	}
	return stats, nil
}
