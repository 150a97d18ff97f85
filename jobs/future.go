package jobs

import (
	"context"
	"sync"
)

// Future is the response side of Queue.Call. It settles exactly once,
// when the owner goroutine runs the job or the queue is closed.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}

// WaitContext blocks until the future settles or ctx is done.
func (f *Future) WaitContext(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
