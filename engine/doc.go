// Package engine adapts the sobek JavaScript engine to the runtime's
// Engine interface.
//
// The adapter keeps the core honest about its boundary: everything
// above this package handles exports as opaque values and never
// imports sobek. Module objects are plain sobek objects with a mutable
// "exports" property, so a body can mutate exports incrementally or
// reassign module.exports wholesale, and a cyclic require reads
// whatever is on the object right now.
//
// Engines are confined to the runtime's owner goroutine; sobek runtimes
// are not safe for concurrent use and the adapter adds no locking.
package engine
