// Package source provides SourceProvider implementations.
//
// Dir maps canonical module ids (forward-slash relative paths) to
// files under a root directory. Map serves an in-memory bundle, which
// is also the natural provider for tests.
//
// Providers report scriptruntime.ErrNotFound for a missing id; the
// loader treats that as "try the next candidate" while any other error
// aborts the load.
package source
