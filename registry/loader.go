package registry

import (
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	scriptruntime "github.com/wippyai/script-runtime"
	"github.com/wippyai/script-runtime/errors"
	"github.com/wippyai/script-runtime/graph"
	"github.com/wippyai/script-runtime/resolve"
)

const (
	wrapPrefix = "(function(module, exports, require, __filename, __dirname) {\n"
	wrapSuffix = "\n})"
)

// Wrap encloses a module body in the CommonJS function wrapper so the
// five module-scope names are plain function parameters.
func Wrap(body string) string {
	return wrapPrefix + body + wrapSuffix
}

// Loader implements require() over a registry, a resolver chain, a
// source provider, an engine, and the dependency graph.
type Loader struct {
	registry *Registry
	chain    *resolve.Chain
	provider scriptruntime.SourceProvider
	engine   scriptruntime.Engine
	graph    *graph.Graph

	builtinPrefix string
	extensions    []string
}

// Options configures a Loader. Extensions defaults to [".js"] and
// BuiltinPrefix to "builtin:" when left empty.
type Options struct {
	Registry      *Registry
	Chain         *resolve.Chain
	Provider      scriptruntime.SourceProvider
	Engine        scriptruntime.Engine
	Graph         *graph.Graph
	BuiltinPrefix string
	Extensions    []string
}

// NewLoader creates a loader from options.
func NewLoader(opts Options) *Loader {
	prefix := opts.BuiltinPrefix
	if prefix == "" {
		prefix = "builtin:"
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".js"}
	}
	return &Loader{
		registry:      opts.Registry,
		chain:         opts.Chain,
		provider:      opts.Provider,
		engine:        opts.Engine,
		graph:         opts.Graph,
		builtinPrefix: prefix,
		extensions:    exts,
	}
}

// Require resolves request against parent, loads the target if needed,
// and returns its exports together with the canonical id the exports
// were served under. parent is "" for host-level requires.
func (l *Loader) Require(parent, request string) (any, string, error) {
	id, err := l.chain.Resolve(parent, request)
	if err != nil {
		return nil, "", err
	}

	candidates := l.candidates(id)

	// Warm path: the first candidate that already has a record wins,
	// whatever its state. Loading records hand back the live module
	// object's exports, which is the cycle contract.
	for _, c := range candidates {
		if rec, ok := l.registry.Lookup(c); ok {
			l.graph.Record(parent, c)
			return rec.CurrentExports(), c, nil
		}
	}

	// Cold path: the first candidate with source fixes the final id.
	var (
		finalID string
		source  []byte
		found   bool
	)
	for _, c := range candidates {
		src, err := l.fetch(c)
		if err != nil {
			if stderrors.Is(err, scriptruntime.ErrNotFound) {
				continue
			}
			return nil, "", errors.SourceRead(c, err)
		}
		finalID, source, found = c, src, true
		break
	}
	if !found {
		return nil, "", errors.SourceNotFound(parent, request, candidates)
	}

	l.graph.Record(parent, finalID)

	exports, err := l.load(finalID, parent, request, candidates, string(source))
	if err != nil {
		return nil, "", err
	}
	return exports, finalID, nil
}

// candidates expands a resolved id into the ordered list of concrete
// ids to probe. Builtin-prefixed ids and ids already carrying a
// recognized extension are their own single candidate; everything else
// expands directory-index candidates before flat-file candidates.
func (l *Loader) candidates(id string) []string {
	if strings.HasPrefix(id, l.builtinPrefix) {
		return []string{id}
	}
	for _, ext := range l.extensions {
		if strings.HasSuffix(id, ext) {
			return []string{id}
		}
	}

	out := make([]string, 0, 2*len(l.extensions))
	for _, ext := range l.extensions {
		out = append(out, id+"/index"+ext)
	}
	for _, ext := range l.extensions {
		out = append(out, id+ext)
	}
	return out
}

// fetch returns the raw source for id, serving the cache before the
// provider. Provider misses are not cached: a file can appear between
// probes.
func (l *Loader) fetch(id string) ([]byte, error) {
	if src, ok := l.registry.cachedSource(id); ok {
		return src, nil
	}
	src, err := l.provider.Open(id)
	if err != nil {
		return nil, err
	}
	l.registry.storeSource(id, src)
	return src, nil
}

// load compiles and executes one module body under a fresh Loading
// record. Any failure unwinds every trace of the attempt.
func (l *Loader) load(id, parent, request string, candidates []string, body string) (any, error) {
	wrapped := Wrap(body)

	program, ok := l.registry.cachedProgram(id, wrapped)
	if !ok {
		p, err := l.engine.Compile(id, wrapped)
		if err != nil {
			l.cleanup(id)
			return nil, errors.ExecutionFailed(id, parent, request, candidates, err)
		}
		l.registry.storeProgram(id, wrapped, p)
		program = p
	}

	mod, err := l.engine.NewModule(id)
	if err != nil {
		l.cleanup(id)
		return nil, errors.EngineFailure("module object creation failed", err)
	}

	rec := &Record{ID: id, State: StateLoading, Module: mod}
	l.registry.Insert(rec)

	Logger().Debug("loading module",
		zap.String("id", id),
		zap.String("parent", parent),
		zap.String("request", request))

	call := scriptruntime.ModuleCall{
		Module:   mod,
		Filename: id,
		Dirname:  resolve.Dirname(id),
		Require: func(req string) (any, error) {
			exports, _, err := l.Require(id, req)
			return exports, err
		},
	}

	if err := program.Run(call); err != nil {
		l.cleanup(id)
		return nil, errors.ExecutionFailed(id, parent, request, candidates, err)
	}

	// The body may have reassigned module.exports; snapshot whatever it
	// holds now.
	rec.Exports = mod.Exports()
	rec.State = StateLoaded

	Logger().Debug("module loaded", zap.String("id", id))
	return rec.Exports, nil
}

// cleanup removes every trace of a failed load attempt so a retry is
// indistinguishable from a first attempt. The source cache entry goes
// too: the file may have been fixed since.
func (l *Loader) cleanup(id string) {
	l.registry.Evict(id)
	l.registry.Purge(id)
	l.graph.Remove(id)
}
