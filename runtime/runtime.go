package runtime

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	scriptruntime "github.com/wippyai/script-runtime"
	"github.com/wippyai/script-runtime/errors"
	"github.com/wippyai/script-runtime/graph"
	"github.com/wippyai/script-runtime/guard"
	"github.com/wippyai/script-runtime/jobs"
	"github.com/wippyai/script-runtime/registry"
	"github.com/wippyai/script-runtime/resolve"
)

// Options configures a Runtime. Engine and Provider are required;
// everything else has a sensible default.
type Options struct {
	Engine   scriptruntime.Engine
	Provider scriptruntime.SourceProvider

	// BuiltinPrefix is the reserved id prefix for host modules.
	// Defaults to "builtin:".
	BuiltinPrefix string

	// Extensions are the recognized source extensions, probed in
	// candidate order. Defaults to [".js"].
	Extensions []string

	// NamespaceRoot prefixes every namespace mount.
	NamespaceRoot string

	// Namespaces maps namespace markers to mount directories.
	Namespaces map[string]string

	// Aliases is the initial alias map; swappable later via SetAliases.
	Aliases map[string]string
}

// Runtime is the single-goroutine facade over the whole module system.
type Runtime struct {
	engine   scriptruntime.Engine
	registry *registry.Registry
	loader   *registry.Loader
	graph    *graph.Graph
	versions *graph.Versions
	queue    *jobs.Queue
	guard    *guard.Guard
	alias    *resolve.Alias

	builtinPrefix string

	// pending is the hand-off point between background change producers
	// and the owner's tick. Its mutex is the only lock shared across
	// goroutines besides the queue's.
	pendingMu       sync.Mutex
	pendingIDs      map[string]struct{}
	pendingPrefixes []string
}

// New assembles a runtime from options.
func New(opts Options) *Runtime {
	prefix := opts.BuiltinPrefix
	if prefix == "" {
		prefix = "builtin:"
	}

	reg := registry.New()
	g := graph.New()
	alias := resolve.NewAlias(opts.Aliases)

	chain := resolve.NewChain(
		resolve.NewBuiltin(prefix),
		resolve.Relative{},
		resolve.NewNamespace(opts.NamespaceRoot, opts.Namespaces),
		alias,
		resolve.PassThrough{},
	)

	return &Runtime{
		engine:   opts.Engine,
		registry: reg,
		loader: registry.NewLoader(registry.Options{
			Registry:      reg,
			Chain:         chain,
			Provider:      opts.Provider,
			Engine:        opts.Engine,
			Graph:         g,
			BuiltinPrefix: prefix,
			Extensions:    opts.Extensions,
		}),
		graph:         g,
		versions:      graph.NewVersions(),
		queue:         jobs.NewQueue(),
		guard:         guard.New(),
		alias:         alias,
		builtinPrefix: prefix,
		pendingIDs:    make(map[string]struct{}),
	}
}

// Require loads a module by request from host level and returns its
// exports.
func (r *Runtime) Require(request string) (any, error) {
	exports, _, err := r.RequireFrom("", request)
	return exports, err
}

// RequireFrom loads a module by request relative to parent and returns
// its exports together with the canonical id they were served under.
func (r *Runtime) RequireFrom(parent, request string) (any, string, error) {
	if err := r.guard.Check(); err != nil {
		return nil, "", err
	}
	return r.loader.Require(parent, request)
}

// RegisterBuiltin installs host-provided exports under a builtin id.
// Builtin records are permanently protected from invalidation.
func (r *Runtime) RegisterBuiltin(id string, exports any) error {
	if err := r.guard.Check(); err != nil {
		return err
	}
	if !strings.HasPrefix(id, r.builtinPrefix) {
		return errors.MalformedRequest("builtin", "", id,
			"builtin id must start with "+r.builtinPrefix)
	}
	r.registry.RegisterBuiltin(id, exports)
	Logger().Debug("builtin registered", zap.String("id", id))
	return nil
}

// RegisterGlobal installs a host binding in the engine's global scope.
func (r *Runtime) RegisterGlobal(name string, value any) error {
	if err := r.guard.Check(); err != nil {
		return err
	}
	return r.engine.SetGlobal(name, value)
}

// SetAliases atomically replaces the alias map. Safe from any
// goroutine; already-loaded modules keep their identity.
func (r *Runtime) SetAliases(aliases map[string]string) {
	r.alias.Swap(aliases)
}

// Aliases returns a snapshot of the current alias map.
func (r *Runtime) Aliases() map[string]string {
	return r.alias.Snapshot()
}

// ModuleVersion returns the invalidation counter for id. Consumers
// remember the version they initialized against and compare.
func (r *Runtime) ModuleVersion(id string) (uint64, error) {
	if err := r.guard.Check(); err != nil {
		return 0, err
	}
	return r.versions.Get(id), nil
}

// Loaded returns every recorded module id in sorted order.
func (r *Runtime) Loaded() ([]string, error) {
	if err := r.guard.Check(); err != nil {
		return nil, err
	}
	return r.registry.IDs(), nil
}

// Version returns the invalidation counter without an error return,
// for display surfaces that already run on the owner goroutine.
func (r *Runtime) Version(id string) uint64 {
	return r.versions.Get(id)
}

// Queue returns the job queue, the sanctioned way for background
// goroutines to run work on the owner goroutine.
func (r *Runtime) Queue() *jobs.Queue {
	return r.queue
}

// Reset drops all records, caches, edges, counters, and pending
// changes. A reset runtime is indistinguishable from a fresh one,
// except that the goroutine binding survives.
func (r *Runtime) Reset() error {
	if err := r.guard.Check(); err != nil {
		return err
	}
	r.registry.Reset()
	r.graph.Reset()
	r.versions.Reset()

	r.pendingMu.Lock()
	r.pendingIDs = make(map[string]struct{})
	r.pendingPrefixes = nil
	r.pendingMu.Unlock()

	Logger().Debug("runtime reset")
	return nil
}

// Close shuts the queue (failing pending futures) and releases the
// engine.
func (r *Runtime) Close() error {
	if err := r.guard.Check(); err != nil {
		return err
	}
	r.queue.Close()
	return r.engine.Close()
}
