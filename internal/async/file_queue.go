package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/mnystrom/inkomstregister/internal/common"
	processor "github.com/mnystrom/inkomstregister/internal/pipeline"
)

// FileQueue is a bounded worker pool over source files. Files are
// independent, so workers share nothing but the processor; each job runs
// under its own timeout so one oversized or malformed file cannot stall
// the pool.
type FileQueue struct {
	proc    *processor.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	results chan Result
	wg      sync.WaitGroup
	senders sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*FileQueue)

func WithWorkers(n int) Option {
	return func(q *FileQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *FileQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
			q.results = make(chan Result, n)
		}
	}
}

func WithFileTimeout(d time.Duration) Option {
	return func(q *FileQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewFileQueue(proc *processor.Processor, logger *slog.Logger, opts ...Option) *FileQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &FileQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
		results: make(chan Result, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *FileQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					jobCtx := common.WithFileID(context.Background(), job.TraceID)
					ctx, cancel := common.WithTimeout(jobCtx, q.timeout)
					report, err := q.proc.ProcessFile(ctx, job.Path)
					cancel()

					if err != nil {
						q.logger.Error("processing failed",
							"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", err)
					}
					q.results <- Result{Job: job, Report: report, Err: err}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue hands a job to the pool, blocking while the pool is saturated.
// The mutex is never held across the send, so a full queue cannot wedge
// Shutdown; a cancelled context abandons the wait.
func (q *FileQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Results delivers one Result per enqueued job. The channel closes once
// Shutdown has drained the workers.
func (q *FileQueue) Results() <-chan Result {
	return q.results
}

// Shutdown stops accepting jobs, waits for in-flight work, then closes the
// results channel. A cancelled context abandons the wait.
func (q *FileQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// In-flight Enqueue calls must finish their sends before the job
	// channel closes.
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.wg.Wait()
		close(q.results)
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
