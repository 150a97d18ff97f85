package registry

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	scriptruntime "github.com/wippyai/script-runtime"
	rterrors "github.com/wippyai/script-runtime/errors"
	"github.com/wippyai/script-runtime/graph"
	"github.com/wippyai/script-runtime/resolve"
	"github.com/wippyai/script-runtime/source"
)

// fakeEngine executes Go closures instead of JS. Bodies are keyed by a
// marker comment embedded in the module source, so the fake stays
// oblivious to the wrapper text.
type fakeEngine struct {
	bodies   map[string]func(scriptruntime.ModuleCall) error
	compiles int
}

func (e *fakeEngine) Compile(id, src string) (scriptruntime.Program, error) {
	e.compiles++
	if !strings.HasPrefix(src, wrapPrefix) || !strings.HasSuffix(src, wrapSuffix) {
		return nil, fmt.Errorf("source for %s is not wrapped", id)
	}
	for marker, body := range e.bodies {
		if strings.Contains(src, marker) {
			return &fakeProgram{body: body}, nil
		}
	}
	return nil, fmt.Errorf("no fake body matches source of %s", id)
}

func (e *fakeEngine) NewModule(id string) (scriptruntime.ModuleObject, error) {
	return &fakeModule{id: id, exports: map[string]any{}}, nil
}

func (e *fakeEngine) SetGlobal(string, any) error { return nil }
func (e *fakeEngine) Close() error                { return nil }

type fakeProgram struct {
	body func(scriptruntime.ModuleCall) error
}

func (p *fakeProgram) Run(call scriptruntime.ModuleCall) error { return p.body(call) }

type fakeModule struct {
	id      string
	exports any
}

func (m *fakeModule) ID() string             { return m.id }
func (m *fakeModule) Exports() any           { return m.exports }
func (m *fakeModule) SetExports(v any) error { m.exports = v; return nil }

type fixture struct {
	loader   *Loader
	registry *Registry
	graph    *graph.Graph
	provider *source.Map
	engine   *fakeEngine
}

func newFixture(sources map[string]string, bodies map[string]func(scriptruntime.ModuleCall) error) *fixture {
	reg := New()
	g := graph.New()
	prov := source.NewMap(sources)
	eng := &fakeEngine{bodies: bodies}
	chain := resolve.NewChain(
		resolve.NewBuiltin("builtin:"),
		resolve.Relative{},
		resolve.NewNamespace("", nil),
		resolve.NewAlias(nil),
		resolve.PassThrough{},
	)
	return &fixture{
		loader: NewLoader(Options{
			Registry: reg,
			Chain:    chain,
			Provider: prov,
			Engine:   eng,
			Graph:    g,
		}),
		registry: reg,
		graph:    g,
		provider: prov,
		engine:   eng,
	}
}

func TestColdLoadThenCacheHit(t *testing.T) {
	f := newFixture(
		map[string]string{"a.js": "/*A*/"},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*A*/": func(call scriptruntime.ModuleCall) error {
				return call.Module.SetExports(map[string]any{"value": 42})
			},
		},
	)

	first, id, err := f.loader.Require("", "a.js")
	if err != nil {
		t.Fatalf("cold require failed: %v", err)
	}
	if id != "a.js" {
		t.Errorf("canonical id = %q, want a.js", id)
	}

	second, _, err := f.loader.Require("", "a.js")
	if err != nil {
		t.Fatalf("warm require failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("warm require returned different exports")
	}
	if f.engine.compiles != 1 {
		t.Errorf("compiles = %d, want 1", f.engine.compiles)
	}

	rec, ok := f.registry.Lookup("a.js")
	if !ok || rec.State != StateLoaded {
		t.Fatalf("record missing or not loaded: %+v", rec)
	}
}

func TestFilenameAndDirnameBindings(t *testing.T) {
	var gotFile, gotDir string
	f := newFixture(
		map[string]string{"lib/util/strings.js": "/*S*/"},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*S*/": func(call scriptruntime.ModuleCall) error {
				gotFile, gotDir = call.Filename, call.Dirname
				return nil
			},
		},
	)

	if _, _, err := f.loader.Require("", "lib/util/strings.js"); err != nil {
		t.Fatalf("require failed: %v", err)
	}
	if gotFile != "lib/util/strings.js" {
		t.Errorf("__filename = %q", gotFile)
	}
	if gotDir != "lib/util" {
		t.Errorf("__dirname = %q", gotDir)
	}
}

func TestDirectoryIndexBeatsFlatFile(t *testing.T) {
	f := newFixture(
		map[string]string{
			"lib/index.js": "/*DIR*/",
			"lib.js":       "/*FLAT*/",
		},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*DIR*/":  func(call scriptruntime.ModuleCall) error { return call.Module.SetExports("dir") },
			"/*FLAT*/": func(call scriptruntime.ModuleCall) error { return call.Module.SetExports("flat") },
		},
	)

	exports, id, err := f.loader.Require("", "lib")
	if err != nil {
		t.Fatalf("require failed: %v", err)
	}
	if id != "lib/index.js" {
		t.Errorf("canonical id = %q, want lib/index.js", id)
	}
	if exports != "dir" {
		t.Errorf("exports = %v, want dir", exports)
	}
}

func TestCycleObservesPartialExports(t *testing.T) {
	var (
		earlySeen  bool
		lateAtTime bool
	)
	f := newFixture(
		map[string]string{"a.js": "/*A*/", "b.js": "/*B*/"},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*A*/": func(call scriptruntime.ModuleCall) error {
				if err := call.Module.SetExports(map[string]any{"early": true}); err != nil {
					return err
				}
				if _, err := call.Require("./b"); err != nil {
					return err
				}
				call.Module.Exports().(map[string]any)["late"] = true
				return nil
			},
			"/*B*/": func(call scriptruntime.ModuleCall) error {
				ex, err := call.Require("./a")
				if err != nil {
					return err
				}
				m := ex.(map[string]any)
				earlySeen = m["early"] == true
				_, lateAtTime = m["late"]
				return nil
			},
		},
	)

	exports, _, err := f.loader.Require("", "./a")
	if err != nil {
		t.Fatalf("require failed: %v", err)
	}

	if !earlySeen {
		t.Error("cycle partner did not see partial exports")
	}
	if lateAtTime {
		t.Error("cycle partner saw exports written after its require returned")
	}

	final := exports.(map[string]any)
	if final["early"] != true || final["late"] != true {
		t.Errorf("final exports incomplete: %v", final)
	}

	if deps := f.graph.Dependents("a.js"); len(deps) != 1 || deps[0] != "b.js" {
		t.Errorf("Dependents(a.js) = %v, want [b.js]", deps)
	}
}

func TestSourceNotFoundEnumeratesCandidates(t *testing.T) {
	f := newFixture(nil, nil)

	_, _, err := f.loader.Require("app.js", "./missing")
	if err == nil {
		t.Fatal("expected source-not-found")
	}
	var rerr *rterrors.Error
	if !stderrors.As(err, &rerr) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if rerr.Kind != rterrors.KindSourceNotFound {
		t.Fatalf("kind = %s, want source_not_found", rerr.Kind)
	}
	if rerr.Parent != "app.js" || rerr.Request != "./missing" {
		t.Errorf("parent/request = %q/%q", rerr.Parent, rerr.Request)
	}
	want := []string{"missing/index.js", "missing.js"}
	if !reflect.DeepEqual(rerr.Candidates, want) {
		t.Errorf("candidates = %v, want %v", rerr.Candidates, want)
	}
}

func TestFailedLoadRetriesClean(t *testing.T) {
	f := newFixture(
		map[string]string{"boom.js": "/*BOOM*/"},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*BOOM*/": func(scriptruntime.ModuleCall) error { return fmt.Errorf("kaboom") },
			"/*OK*/":   func(call scriptruntime.ModuleCall) error { return call.Module.SetExports("fixed") },
		},
	)

	_, _, err := f.loader.Require("", "boom.js")
	if err == nil {
		t.Fatal("expected execution failure")
	}
	var rerr *rterrors.Error
	if !stderrors.As(err, &rerr) || rerr.Kind != rterrors.KindExecution {
		t.Fatalf("want execution_failure, got %v", err)
	}
	if _, ok := f.registry.Lookup("boom.js"); ok {
		t.Fatal("failed load left a record behind")
	}

	// The file gets fixed on disk; the retry must re-read it, not serve
	// the cached broken source.
	f.provider.Set("boom.js", "/*OK*/")

	exports, _, err := f.loader.Require("", "boom.js")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if exports != "fixed" {
		t.Errorf("retry exports = %v, want fixed", exports)
	}
}

func TestExportsReassignment(t *testing.T) {
	f := newFixture(
		map[string]string{"fn.js": "/*FN*/"},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*FN*/": func(call scriptruntime.ModuleCall) error {
				return call.Module.SetExports("total-replacement")
			},
		},
	)

	exports, _, err := f.loader.Require("", "fn.js")
	if err != nil {
		t.Fatalf("require failed: %v", err)
	}
	if exports != "total-replacement" {
		t.Errorf("exports = %v", exports)
	}
}

func TestBuiltinServedWithoutProvider(t *testing.T) {
	f := newFixture(nil, nil)

	log := map[string]any{"info": "fn"}
	f.registry.RegisterBuiltin("builtin:log", log)

	exports, id, err := f.loader.Require("app.js", "builtin:log")
	if err != nil {
		t.Fatalf("builtin require failed: %v", err)
	}
	if id != "builtin:log" {
		t.Errorf("id = %q", id)
	}
	if !reflect.DeepEqual(exports, log) {
		t.Errorf("exports = %v", exports)
	}
	if !f.registry.IsBuiltin("builtin:log") {
		t.Error("record not marked builtin")
	}
}

func TestGraphEdgesFollowRequires(t *testing.T) {
	f := newFixture(
		map[string]string{"app.js": "/*APP*/", "lib/math.js": "/*MATH*/"},
		map[string]func(scriptruntime.ModuleCall) error{
			"/*APP*/": func(call scriptruntime.ModuleCall) error {
				_, err := call.Require("lib/math.js")
				return err
			},
			"/*MATH*/": func(call scriptruntime.ModuleCall) error { return nil },
		},
	)

	if _, _, err := f.loader.Require("", "app.js"); err != nil {
		t.Fatalf("require failed: %v", err)
	}

	if deps := f.graph.Dependencies("app.js"); len(deps) != 1 || deps[0] != "lib/math.js" {
		t.Errorf("Dependencies(app.js) = %v", deps)
	}
	if deps := f.graph.Dependents("lib/math.js"); len(deps) != 1 || deps[0] != "app.js" {
		t.Errorf("Dependents(lib/math.js) = %v", deps)
	}
}

func TestAliasedRequestFallsBackToFlatFile(t *testing.T) {
	reg := New()
	g := graph.New()
	chain := resolve.NewChain(
		resolve.NewBuiltin("builtin:"),
		resolve.Relative{},
		resolve.NewNamespace("", nil),
		resolve.NewAlias(map[string]string{"@lib": "Scripts/lib"}),
		resolve.PassThrough{},
	)
	loader := NewLoader(Options{
		Registry: reg,
		Chain:    chain,
		Provider: source.NewMap(map[string]string{"Scripts/lib/math.js": "/*M*/"}),
		Engine: &fakeEngine{bodies: map[string]func(scriptruntime.ModuleCall) error{
			"/*M*/": func(call scriptruntime.ModuleCall) error { return call.Module.SetExports("math") },
		}},
		Graph: g,
	})

	// No Scripts/lib/math/index.js exists, so the flat file wins.
	exports, id, err := loader.Require("Scripts/main.js", "@lib/math")
	if err != nil {
		t.Fatalf("require failed: %v", err)
	}
	if id != "Scripts/lib/math.js" {
		t.Errorf("canonical id = %q, want Scripts/lib/math.js", id)
	}
	if exports != "math" {
		t.Errorf("exports = %v", exports)
	}
}

func TestPurgeDropsSourceAndPrograms(t *testing.T) {
	reg := New()
	reg.storeSource("x.js", []byte("src"))
	reg.storeProgram("x.js", "wrapped-1", &fakeProgram{})
	reg.storeProgram("x.js", "wrapped-2", &fakeProgram{})
	reg.storeProgram("y.js", "wrapped-1", &fakeProgram{})

	reg.Purge("x.js")

	if _, ok := reg.cachedSource("x.js"); ok {
		t.Error("source survived purge")
	}
	if _, ok := reg.cachedProgram("x.js", "wrapped-1"); ok {
		t.Error("program survived purge")
	}
	if _, ok := reg.cachedProgram("y.js", "wrapped-1"); !ok {
		t.Error("purge removed an unrelated id's program")
	}
}
