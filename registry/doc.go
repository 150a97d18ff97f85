// Package registry holds module records and drives the load path.
//
// The record map is the single authority on load state. Every module
// id maps to at most one Record, created in the Loading state before
// the module body executes and promoted to Loaded after. A require
// that lands on a Loading record reads the live module object, which
// is what makes dependency cycles observe partial exports instead of
// deadlocking or re-entering the body.
//
// Raw source and compiled programs are cached separately. Those caches
// are pure memoization: evicting them changes performance, never
// behavior.
//
// The Loader implements require() on top of the registry: resolve the
// request through the resolver chain, expand the resolved id into
// probe candidates (directory index before flat file), return cached
// exports when a candidate already has a record, otherwise cold-load
// the first candidate with source. A failed load evicts everything it
// touched so the next attempt behaves like a first attempt.
package registry
