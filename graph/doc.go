// Package graph tracks require() dependencies between module ids and
// the per-module version counters used for staleness detection.
//
// Edges are stored twice, as forward sets under the parent and reverse
// sets under the child, giving O(1) traversal in either direction:
// forward edges answer "what does this module use", reverse edges
// drive hot-reload cascades ("who must be evicted when this changes").
//
// The graph is single-writer: only the runtime's owner goroutine
// mutates it, so it carries no internal locking.
package graph
