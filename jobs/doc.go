// Package jobs provides the multi-producer/single-consumer queue that
// bridges background goroutines into the runtime's owner goroutine.
//
// Any goroutine may Post fire-and-forget work or Call for a
// request/response round trip; only the owner goroutine drains. This
// is the sanctioned channel for background producers (for example a
// file watcher) to schedule invalidations without violating the
// runtime's confinement guard:
//
//	queue.Post(func() { rt.InvalidateMany(changed) })
//
// Drain executes queued jobs synchronously in global FIFO enqueue
// order, bounded by a job count and an optional time budget to cap
// per-tick latency.
package jobs
