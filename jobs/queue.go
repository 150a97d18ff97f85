package jobs

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/script-runtime/errors"
)

// Job is a unit of work executed on the owner goroutine during Drain.
type Job func()

type item struct {
	run Job
	fut *Future
}

// Queue is a FIFO job queue, postable from any goroutine and drained
// by exactly one. The lock serializes producers, which is what makes
// the overall enqueue order well defined.
type Queue struct {
	mu      sync.Mutex
	pending []item
	closed  bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Post enqueues fire-and-forget work. Safe from any goroutine.
func (q *Queue) Post(job Job) error {
	if job == nil {
		return nil
	}
	return q.push(item{run: job})
}

// Call enqueues a request/response job and returns a Future that
// settles when the owner goroutine executes it, or fails with a
// queue-closed error if the queue shuts down first. Safe from any
// goroutine.
func (q *Queue) Call(fn func() (any, error)) (*Future, error) {
	f := newFuture()
	it := item{
		fut: f,
		run: func() { f.settle(fn()) },
	}
	if err := q.push(it); err != nil {
		return nil, err
	}
	return f, nil
}

func (q *Queue) push(it item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.QueueClosed()
	}
	q.pending = append(q.pending, it)
	return nil
}

// Drain executes queued jobs on the calling goroutine, in FIFO order,
// until the queue is empty, maxJobs have run (0 means unlimited), or
// the time budget is exhausted (0 means no budget). It returns the
// number of jobs executed.
//
// Drain must only be called from the owner goroutine; the runtime
// enforces that through its confinement guard.
func (q *Queue) Drain(maxJobs int, budget time.Duration) int {
	var deadline time.Time
	if budget > 0 {
		deadline = time.Now().Add(budget)
	}

	executed := 0
	for maxJobs == 0 || executed < maxJobs {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			break
		}
		it := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		it.run()
		executed++

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}
	}

	if executed > 0 {
		Logger().Debug("drained jobs", zap.Int("executed", executed), zap.Int("remaining", q.Len()))
	}
	return executed
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects further posts, drops pending fire-and-forget jobs and
// fails pending futures with a queue-closed error.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, it := range dropped {
		if it.fut != nil {
			it.fut.settle(nil, errors.QueueClosed())
		}
	}
	if n := len(dropped); n > 0 {
		Logger().Warn("queue closed with pending jobs", zap.Int("dropped", n))
	}
}
