package guard

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/wippyai/script-runtime/errors"
)

// Guard binds to the first goroutine that calls Check and rejects all
// others. The zero value is ready to use.
type Guard struct {
	// owner holds the owner goroutine id; 0 means not yet bound.
	owner atomic.Uint64
}

// New creates an unbound guard.
func New() *Guard {
	return &Guard{}
}

// Check binds the guard to the calling goroutine on first use and
// returns a thread-violation error when called from any other
// goroutine afterwards.
func (g *Guard) Check() error {
	id := goroutineID()
	if g.owner.CompareAndSwap(0, id) {
		return nil
	}
	if owner := g.owner.Load(); owner != id {
		return errors.ThreadViolation(owner, id)
	}
	return nil
}

// Bound reports whether an owner has been captured.
func (g *Guard) Bound() bool {
	return g.owner.Load() != 0
}

// Owner returns the bound goroutine id, 0 if unbound.
func (g *Guard) Owner() uint64 {
	return g.owner.Load()
}

var stackPrefix = []byte("goroutine ")

// goroutineID parses the current goroutine's id from its stack header.
// Goroutine ids are never reused within a process, which is what makes
// them a safe confinement key.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := buf[:n]
	if !bytes.HasPrefix(s, stackPrefix) {
		return 0
	}
	s = s[len(stackPrefix):]
	if i := bytes.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	id, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
