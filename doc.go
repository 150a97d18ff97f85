// Package scriptruntime provides the module-loading and hot-reload core
// of an embedded scripting runtime.
//
// It implements CommonJS-style module semantics (module, exports,
// require) over a pluggable dynamic-language execution engine, with
// chain-based module-id resolution, cyclic-dependency safety, content
// caching, and dependency-graph-aware invalidation so edited script
// files can be reloaded live without restarting the host process.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	script-runtime/      Root package with SourceProvider and Engine interfaces
//	├── runtime/         High-level API: require, invalidate, tick
//	├── registry/        Module records, source/program caches, loader
//	├── resolve/         Ordered resolver chain for module ids
//	├── graph/           Dependency edge sets and version counters
//	├── jobs/            Cross-goroutine job queue with futures
//	├── guard/           Owner-goroutine confinement
//	├── engine/          sobek-backed JavaScript execution engine
//	├── source/          Source providers (directory, in-memory)
//	├── config/          YAML bootstrap configuration
//	├── watch/           fsnotify bridge for live invalidation
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Load and run a module tree from disk:
//
//	rt := runtime.New(runtime.Options{
//	    Engine:   engine.New(),
//	    Provider: source.NewDir("Scripts"),
//	})
//	defer rt.Close()
//
//	exports, err := rt.Require("main.js")
//
// # Module Execution Contract
//
// Every module body runs as
//
//	function(module, exports, require, __filename, __dirname) { <body> }
//
// and a module's local require always resolves relative to its own
// canonical id. Records are created before the body executes, so
// cyclic requires observe the partially populated exports rather than
// recursing forever.
//
// # Hot Reload
//
// When a source file changes, invalidating its module id evicts the
// module and every transitive dependent from the registry and bumps
// their version counters. Long-lived callers compare a remembered
// version against Runtime.ModuleVersion each tick to detect staleness.
// Builtin-prefixed modules are exempt from all invalidation.
//
// # Concurrency Model
//
// The runtime is confined to the first goroutine that calls into it.
// Background goroutines interact only through the jobs.Queue or by
// handing off changed-id sets via Runtime.MarkChanged; both are applied
// on the owner goroutine during Tick, in a fixed phase order: drain
// jobs, apply pending invalidations, expose updated versions.
package scriptruntime
