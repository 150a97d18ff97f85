// Package guard provides the confinement check that binds the runtime
// to a single owner goroutine.
//
// The embedded execution context is unsafe for concurrent entry. The
// first goroutine to call any runtime entrypoint becomes the bound
// owner (captured lazily, once); every subsequent call asserts that it
// runs on the owner goroutine and fails loudly otherwise, converting
// silent state corruption into a diagnosable error that names both
// goroutines.
//
// A violation is fatal to the offending call only: the runtime's state
// is untouched and the owner goroutine continues normally.
package guard
