package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/thesrcielos/PadelTracker/pkg/logger"
)

type Task func(ctx context.Context)

// TaskQueue runs tasks one at a time, in the order they were enqueued, on a
// single worker goroutine.
type TaskQueue struct {
	log *logger.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []Task
	started bool
	closed  bool
	done    chan struct{}
}

func NewTaskQueue(log *logger.Logger) *TaskQueue {
	q := &TaskQueue{log: log, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the worker. Tasks run with ctx; cancelling it closes the
// queue.
func (q *TaskQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started || q.closed {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go q.run(ctx)
	go func() {
		select {
		case <-ctx.Done():
			q.Close()
		case <-q.done:
		}
	}()
}

// Enqueue appends t and reports whether the queue accepted it.
func (q *TaskQueue) Enqueue(t Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, t)
	q.cond.Signal()
	return true
}

// Flush waits until every task enqueued before the call has run.
func (q *TaskQueue) Flush(ctx context.Context) error {
	reached := make(chan struct{})
	if !q.Enqueue(func(context.Context) { close(reached) }) {
		return fmt.Errorf("task queue closed")
	}
	select {
	case <-reached:
		return nil
	case <-q.done:
		return fmt.Errorf("task queue closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after its current task. Pending tasks are dropped.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		if q.started {
			<-q.done
		}
		return
	}
	q.closed = true
	q.pending = nil
	started := q.started
	q.cond.Broadcast()
	q.mu.Unlock()

	if started {
		<-q.done
	} else {
		close(q.done)
	}
}

func (q *TaskQueue) run(ctx context.Context) {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.runTask(ctx, t)
	}
}

func (q *TaskQueue) runTask(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("task panicked", fmt.Errorf("%v", r))
		}
	}()
	t(ctx)
}
