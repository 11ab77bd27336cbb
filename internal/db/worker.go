package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/champions-academy/clubgate/internal/metrics"
)

var ErrWorkerClosed = errors.New("db worker closed")

const writeQueueSize = 256

type TxFn func(ctx context.Context, tx *sql.Tx) error

type writeJob struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

// Worker runs write transactions one at a time on a single goroutine so
// SQLite never sees concurrent writers. Reads bypass it and use the pool.
type Worker struct {
	db    *sql.DB
	queue chan writeJob
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:    db,
		queue: make(chan writeJob, writeQueueSize),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Close drains queued writes and stops the writer. Safe to call more than once.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

// Do runs fn inside one transaction on the writer goroutine. fn's error
// rolls the transaction back and is returned unchanged.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	job := writeJob{ctx: ctx, fn: fn, result: make(chan error, 1)}

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWorkerClosed
	}
	select {
	case w.queue <- job:
		metrics.DBWriteQueueDepth.Inc()
		w.mu.RUnlock()
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}

	// A caller that gives up still leaves the transaction to finish; its
	// result lands in the buffered channel and is dropped.
	select {
	case err := <-job.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.done)

	for job := range w.queue {
		metrics.DBWriteQueueDepth.Dec()
		job.result <- w.exec(job)
	}
}

func (w *Worker) exec(job writeJob) (err error) {
	if err := job.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.DBWriteDurationSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.DBWriteFailuresTotal.Inc()
		}
	}()

	tx, err := w.db.BeginTx(job.ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	if err := job.fn(job.ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}
