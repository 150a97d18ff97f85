// Package runtime ties the layers together behind a single facade: one
// engine, one registry and loader, one dependency graph with version
// counters, one job queue, one confinement guard. Nothing lives in
// package-level state; two Runtimes in one process are fully
// independent.
//
// Every entrypoint checks the confinement guard before touching any
// state. The first caller's goroutine becomes the owner; everyone else
// gets a thread-violation error. Background goroutines interact with
// the runtime through two sanctioned channels only: the job queue
// (Queue) and the pending change set (MarkChanged/MarkChangedPrefix),
// both safe from any goroutine.
//
// Tick is the owner's heartbeat, with a fixed phase order: drain
// queued jobs first, then apply pending invalidations, so version
// bumps from a tick are visible to consumers before the tick returns.
package runtime
