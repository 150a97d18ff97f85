package registry

import (
	"sort"

	scriptruntime "github.com/wippyai/script-runtime"
)

// State is a module record's load state.
type State int

const (
	// StateLoading means the module body is currently executing; the
	// record's module object carries the partial exports.
	StateLoading State = iota

	// StateLoaded means the body completed and Exports holds the final
	// snapshot.
	StateLoaded
)

// String returns the state name for logs and errors.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Record tracks one module instance.
type Record struct {
	ID      string
	State   State
	Module  scriptruntime.ModuleObject
	Exports any

	// Builtin marks host-registered modules that invalidation must
	// never touch.
	Builtin bool
}

// CurrentExports returns the exports a require should see right now:
// the live module-object value while Loading, the snapshot once Loaded.
func (r *Record) CurrentExports() any {
	if r.State == StateLoading && r.Module != nil {
		return r.Module.Exports()
	}
	return r.Exports
}

type programKey struct {
	id     string
	source string
}

// Registry is the record map plus the source and program caches. Not
// safe for concurrent use; the runtime confines it to the owner
// goroutine.
type Registry struct {
	records  map[string]*Record
	sources  map[string][]byte
	programs map[programKey]scriptruntime.Program
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		records:  make(map[string]*Record),
		sources:  make(map[string][]byte),
		programs: make(map[programKey]scriptruntime.Program),
	}
}

// Lookup returns the record for id, if any.
func (r *Registry) Lookup(id string) (*Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Insert stores a record under its id, replacing any previous one.
func (r *Registry) Insert(rec *Record) {
	r.records[rec.ID] = rec
}

// RegisterBuiltin inserts a pre-loaded protected record whose exports
// are supplied by the host.
func (r *Registry) RegisterBuiltin(id string, exports any) {
	r.records[id] = &Record{
		ID:      id,
		State:   StateLoaded,
		Exports: exports,
		Builtin: true,
	}
}

// IsBuiltin reports whether id names a host-registered builtin record.
func (r *Registry) IsBuiltin(id string) bool {
	rec, ok := r.records[id]
	return ok && rec.Builtin
}

// Evict drops the record for id. Caches are untouched; see Purge.
func (r *Registry) Evict(id string) {
	delete(r.records, id)
}

// Purge drops the cached source and every compiled program for id.
func (r *Registry) Purge(id string) {
	delete(r.sources, id)
	for key := range r.programs {
		if key.id == id {
			delete(r.programs, key)
		}
	}
}

// IDs returns every recorded module id in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.records))
	for id := range r.records {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of module records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Reset drops all records and caches.
func (r *Registry) Reset() {
	r.records = make(map[string]*Record)
	r.sources = make(map[string][]byte)
	r.programs = make(map[programKey]scriptruntime.Program)
}

func (r *Registry) cachedSource(id string) ([]byte, bool) {
	src, ok := r.sources[id]
	return src, ok
}

func (r *Registry) storeSource(id string, src []byte) {
	r.sources[id] = src
}

func (r *Registry) cachedProgram(id, source string) (scriptruntime.Program, bool) {
	p, ok := r.programs[programKey{id: id, source: source}]
	return p, ok
}

func (r *Registry) storeProgram(id, source string, p scriptruntime.Program) {
	r.programs[programKey{id: id, source: source}] = p
}
