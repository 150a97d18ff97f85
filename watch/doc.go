// Package watch bridges filesystem change notifications into the
// runtime's single-goroutine world.
//
// A Watcher observes a script root recursively with fsnotify, maps
// event paths back to module ids (root-relative, forward slashes), and
// coalesces bursts of events into one batch per debounce window. Each
// batch is delivered by posting a single job to the runtime's job
// queue, so the apply callback always runs on the owner goroutine
// during a tick. The watcher itself never touches runtime state.
//
// New subdirectories are picked up as they appear.
package watch
