package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type HandlerFunc func(ctx context.Context, job Job) error

// Pool runs registered handlers for dequeued jobs on a fixed number of
// goroutines.
type Pool struct {
	queue       Queue
	handlers    map[string]HandlerFunc
	concurrency int
	maxBackoff  time.Duration
}

func NewPool(q Queue, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Pool{
		queue:       q,
		handlers:    make(map[string]HandlerFunc),
		concurrency: concurrency,
		maxBackoff:  30 * time.Second,
	}
}

func (p *Pool) Register(kind string, h HandlerFunc) {
	p.handlers[kind] = h
}

// Run blocks until ctx is cancelled or the queue is closed.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.concurrency; i++ {
		worker := i + 1
		g.Go(func() error {
			return p.loop(ctx, worker)
		})
	}

	return g.Wait()
}

func (p *Pool) loop(ctx context.Context, worker int) error {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = p.maxBackoff
	b.MaxElapsedTime = 0

	for {
		var job Job
		err := backoff.RetryNotify(func() error {
			var err error
			job, err = p.queue.Dequeue(ctx)
			if err != nil && (errors.Is(err, ErrClosed) || ctx.Err() != nil) {
				return backoff.Permanent(err)
			}

			return err
		}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
			zap.L().Warn("dequeue failed, retrying",
				zap.Int("worker", worker), zap.Duration("wait", wait), zap.Error(err))
		})
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("worker %d -> %w", worker, err)
		}
		b.Reset()

		p.handle(ctx, worker, job)
	}
}

func (p *Pool) handle(ctx context.Context, worker int, job Job) {
	log := zap.L().With(zap.Int("worker", worker), zap.String("kind", job.Kind), zap.Uint("id", job.ID))

	h, ok := p.handlers[job.Kind]
	if !ok {
		log.Error("no handler registered for job")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", zap.Any("panic", r))
		}
	}()

	start := time.Now()
	log.Info("job started")
	// A started job runs to the end even when shutdown begins.
	if err := h(context.WithoutCancel(ctx), job); err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	log.Info("job finished", zap.Duration("took", time.Since(start)))
}
