package scriptruntime

import "errors"

// ErrNotFound is returned by SourceProvider.Open when no source exists
// for a module id. The loader treats it as "try the next candidate";
// any other error aborts the load.
var ErrNotFound = errors.New("source not found")

// SourceProvider supplies raw module source by canonical id.
// Open is called synchronously on the owner goroutine during a cold
// load; implementations do not need to be safe for concurrent use by
// the loader, though they may be mutated from other goroutines if they
// synchronize internally.
type SourceProvider interface {
	Open(id string) ([]byte, error)
}

// Engine abstracts the embedded dynamic-language execution context.
// Engines are confined to the runtime's owner goroutine.
type Engine interface {
	// Compile compiles an already-wrapped module source. The id is used
	// for diagnostics and stack traces.
	Compile(id, source string) (Program, error)

	// NewModule creates the mutable module object passed to a module
	// body. It is created before the body executes so that cyclic
	// requires can observe partial exports.
	NewModule(id string) (ModuleObject, error)

	// SetGlobal injects a named host binding into module scope.
	// The core treats these values opaquely.
	SetGlobal(name string, value any) error

	// Close releases engine resources.
	Close() error
}

// Program is a compiled module wrapper ready for execution.
type Program interface {
	Run(call ModuleCall) error
}

// ModuleCall carries the per-execution bindings for one module body:
// function(module, exports, require, __filename, __dirname).
type ModuleCall struct {
	Module   ModuleObject
	Require  func(request string) (any, error)
	Filename string
	Dirname  string
}

// ModuleObject holds a module's mutable "exports" slot. The body may
// reassign module.exports; Exports always reads the current value.
type ModuleObject interface {
	ID() string
	Exports() any
	SetExports(v any) error
}
