package resolve

import (
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// aliasTable is the immutable snapshot the Alias resolver reads.
// Swapping the whole table avoids partial-read races without locking
// on the resolution path.
type aliasTable struct {
	targets map[string]string
	// prefixes sorted longest-first so the first match wins.
	prefixes []string
}

// Alias rewrites requests by longest-prefix match against a mutable,
// atomically swappable map, typically loaded once from a bootstrap
// config. Matches apply only at segment boundaries: alias "@lib"
// rewrites "@lib" and "@lib/math" but never "@libx".
//
// Overlapping registrations resolve by last-write-wins map semantics.
type Alias struct {
	table atomic.Pointer[aliasTable]
}

// NewAlias creates an alias resolver with an initial mapping.
// The map may be nil.
func NewAlias(aliases map[string]string) *Alias {
	a := &Alias{}
	a.Swap(aliases)
	return a
}

// Swap atomically replaces the whole alias map. Safe to call from any
// goroutine.
func (a *Alias) Swap(aliases map[string]string) {
	t := &aliasTable{targets: make(map[string]string, len(aliases))}
	for prefix, target := range aliases {
		if prefix == "" {
			continue
		}
		t.targets[prefix] = target
		t.prefixes = append(t.prefixes, prefix)
	}
	sort.Slice(t.prefixes, func(i, j int) bool {
		if len(t.prefixes[i]) != len(t.prefixes[j]) {
			return len(t.prefixes[i]) > len(t.prefixes[j])
		}
		return t.prefixes[i] < t.prefixes[j]
	})
	a.table.Store(t)
	Logger().Debug("alias map swapped", zap.Int("entries", len(t.targets)))
}

// Snapshot returns a copy of the current alias map.
func (a *Alias) Snapshot() map[string]string {
	t := a.table.Load()
	out := make(map[string]string, len(t.targets))
	for k, v := range t.targets {
		out[k] = v
	}
	return out
}

func (a *Alias) Name() string { return "alias" }

func (a *Alias) Resolve(parent, request string) (string, bool, error) {
	t := a.table.Load()
	for _, prefix := range t.prefixes {
		if request == prefix {
			return t.targets[prefix], true, nil
		}
		if strings.HasPrefix(request, prefix) && request[len(prefix)] == '/' {
			return t.targets[prefix] + request[len(prefix):], true, nil
		}
	}
	return "", false, nil
}
