// Package resolve turns (parent id, raw request) pairs into canonical
// module ids.
//
// Resolution runs through an ordered chain of resolvers. Each resolver
// either claims a request (returning a transformed id) or declines and
// passes it to the next. The chain is terminated by a pass-through
// resolver that always claims, so resolution never silently fails: an
// error can only come from a resolver that claimed the request and
// found it malformed.
//
// # Precedence
//
//	1. Builtin    reserved prefix, 1:1 mapping (e.g. "builtin:math")
//	2. Relative   "./" and "../" against dirname(parent)
//	3. Namespace  "name:rest" mapped to a mounted directory
//	4. Alias      longest-prefix rewrite from a swappable map
//	5. Pass-through
//
// # Invariants
//
// Resolving an already-canonical id is a fixed point: canonical ids
// carry no "./", no namespace marker, and no alias prefix, so every
// non-terminal resolver declines them.
//
// Resolution runs only on the runtime's owner goroutine. The alias map
// is the one exception to single-goroutine state: it can be swapped
// atomically from anywhere (whole-map swap, never partial mutation).
package resolve
