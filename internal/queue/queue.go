package queue

import (
	"context"
	"errors"
	"time"
)

const (
	KindGenerateQrBatch  = "generate_qr_batch"
	KindExportWishImages = "export_wish_images"
)

var ErrClosed = errors.New("queue closed")

// Job references the row a handler works on. Handlers load everything else
// from the database.
type Job struct {
	Kind       string    `json:"kind"`
	ID         uint      `json:"id"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (Job, error)
	Close() error
}
