package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process queue. Jobs are lost on restart.
type MemoryQueue struct {
	jobs   chan Job
	closed chan struct{}
	once   sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}

	return &MemoryQueue{
		jobs:   make(chan Job, size),
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	select {
	case <-q.closed:
		return ErrClosed
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-q.closed:
		return Job{}, ErrClosed
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.closed) })

	return nil
}
