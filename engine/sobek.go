package engine

import (
	"fmt"

	"github.com/grafana/sobek"
	"go.uber.org/zap"

	scriptruntime "github.com/wippyai/script-runtime"
	"github.com/wippyai/script-runtime/errors"
)

// JS wraps one sobek runtime as a scriptruntime.Engine.
type JS struct {
	vm *sobek.Runtime
}

// New creates a fresh JavaScript engine.
func New() *JS {
	return &JS{vm: sobek.New()}
}

// VM exposes the underlying sobek runtime for host bindings that need
// direct engine access, such as constructing callable values.
func (e *JS) VM() *sobek.Runtime {
	return e.vm
}

// Compile compiles an already-wrapped module source in strict mode.
// The id becomes the script name in stack traces.
func (e *JS) Compile(id, source string) (scriptruntime.Program, error) {
	prog, err := sobek.Compile(id, source, true)
	if err != nil {
		return nil, errors.EngineFailure("compile failed for "+id, err)
	}
	Logger().Debug("compiled module", zap.String("id", id))
	return &program{vm: e.vm, prog: prog}, nil
}

// NewModule creates the mutable module object handed to a module body:
// a plain object with "id" and a fresh "exports" object.
func (e *JS) NewModule(id string) (scriptruntime.ModuleObject, error) {
	obj := e.vm.NewObject()
	if err := obj.Set("id", id); err != nil {
		return nil, errors.EngineFailure("module object setup failed", err)
	}
	if err := obj.Set("exports", e.vm.NewObject()); err != nil {
		return nil, errors.EngineFailure("module object setup failed", err)
	}
	return &moduleObject{id: id, obj: obj}, nil
}

// SetGlobal installs a host binding in the engine's global scope.
func (e *JS) SetGlobal(name string, value any) error {
	if err := e.vm.Set(name, value); err != nil {
		return errors.EngineFailure("global binding failed for "+name, err)
	}
	return nil
}

// Close interrupts any running script. The sobek runtime itself has no
// resources to release.
func (e *JS) Close() error {
	e.vm.Interrupt("engine closed")
	return nil
}

type moduleObject struct {
	id  string
	obj *sobek.Object
}

func (m *moduleObject) ID() string { return m.id }

// Exports reads the live module.exports value, so callers observe
// partial exports during a cycle and reassignments after.
func (m *moduleObject) Exports() any {
	return m.obj.Get("exports")
}

func (m *moduleObject) SetExports(v any) error {
	return m.obj.Set("exports", v)
}

type program struct {
	vm   *sobek.Runtime
	prog *sobek.Program
	fn   sobek.Callable
}

// Run executes the compiled wrapper with the five CommonJS parameters.
// The wrapper expression is evaluated to a function value once and the
// callable reused for later runs of the same program.
func (p *program) Run(call scriptruntime.ModuleCall) error {
	if p.fn == nil {
		v, err := p.vm.RunProgram(p.prog)
		if err != nil {
			return err
		}
		fn, ok := sobek.AssertFunction(v)
		if !ok {
			return fmt.Errorf("wrapper did not evaluate to a function")
		}
		p.fn = fn
	}

	mod, ok := call.Module.(*moduleObject)
	if !ok {
		return fmt.Errorf("module object %T does not belong to this engine", call.Module)
	}

	// Host errors from a nested require surface as thrown Go errors so
	// a script can catch them like any other exception.
	require := p.vm.ToValue(func(fc sobek.FunctionCall) sobek.Value {
		request := fc.Argument(0).String()
		exports, err := call.Require(request)
		if err != nil {
			panic(p.vm.NewGoError(err))
		}
		return p.vm.ToValue(exports)
	})

	_, err := p.fn(sobek.Undefined(),
		mod.obj,
		mod.obj.Get("exports"),
		require,
		p.vm.ToValue(call.Filename),
		p.vm.ToValue(call.Dirname),
	)
	return err
}

var _ scriptruntime.Engine = (*JS)(nil)
var _ scriptruntime.Program = (*program)(nil)
var _ scriptruntime.ModuleObject = (*moduleObject)(nil)
