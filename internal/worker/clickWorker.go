package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Repo persists a single click.
type Repo interface {
	IncrementClick(ctx context.Context, id string, at time.Time) error
}

type clickTask struct {
	id string
	at time.Time
}

// ClickWorker records clicks off the request path. A bounded queue feeds a
// fixed number of goroutines; when the queue is full, or after Stop, the
// click is written by the caller instead so no click is lost.
type ClickWorker struct {
	in      chan clickTask
	logger  *zap.Logger
	repo    Repo
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewClickWorker(logger *zap.Logger, repo Repo, workers, queueSize int, timeout time.Duration) *ClickWorker {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &ClickWorker{
		in:      make(chan clickTask, queueSize),
		logger:  logger,
		repo:    repo,
		workers: workers,
		timeout: timeout,
	}
}

// Start launches the worker goroutines.
func (w *ClickWorker) Start() {
	w.logger.Info("starting click workers", zap.Int("workers", w.workers), zap.Int("queue", cap(w.in)))

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
}

// RecordClick enqueues a click. When the queue is full or the worker is
// stopped it increments inline under the worker timeout.
func (w *ClickWorker) RecordClick(ctx context.Context, id string, at time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		w.logger.Debug("worker stopped, recording click inline", zap.String("id", id))
		w.process(context.WithoutCancel(ctx), clickTask{id: id, at: at})
		return
	}

	select {
	case w.in <- clickTask{id: id, at: at}:
	default:
		w.logger.Warn("click queue full, recording inline", zap.String("id", id))
		w.process(context.WithoutCancel(ctx), clickTask{id: id, at: at})
	}
}

// Stop stops queueing new clicks, waits for queued ones to be written and returns
// when every worker has exited.
func (w *ClickWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.in)
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("click workers stopped")
}

func (w *ClickWorker) run() {
	defer w.wg.Done()

	for task := range w.in {
		w.process(context.Background(), task)
	}
}

func (w *ClickWorker) process(ctx context.Context, task clickTask) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.repo.IncrementClick(ctx, task.id, task.at); err != nil {
		w.logger.Error("failed to record click", zap.String("id", task.id), zap.Error(err))
	}
}
