package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/utils/worker"

	"go.uber.org/zap"
)

// Handler processes one job. A returned error counts as a failed attempt.
type Handler func(ctx context.Context, job *Job) (any, error)

type Worker struct {
	queue        *Queue
	concurrency  int
	pollInterval time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewWorker(q *Queue, concurrency int, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		queue:        q,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		handlers:     make(map[string]Handler),
	}
}

func (w *Worker) Register(name string, h Handler) {
	w.mu.Lock()
	w.handlers[name] = h
	w.mu.Unlock()
}

func (w *Worker) handler(name string) (Handler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.handlers[name]
	return h, ok
}

// Run polls the queue on a pool of concurrency goroutines until ctx ends,
// then waits for in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) {
	pool := worker.NewWorkerPool(w.concurrency)
	logger.CtxInfo(ctx, log_messages.QueueWorkerStarted,
		zap.String("queue", w.queue.Name()), zap.Int("concurrency", pool.Size()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.watchStalled(ctx)
	}()

	for ctx.Err() == nil {
		ok := pool.Submit(ctx, func() {
			processed, err := w.ProcessNext(ctx)
			if err != nil {
				logger.CtxError(ctx, log_messages.QueuePollFailed, err, zap.String("queue", w.queue.Name()))
			}
			if !processed || err != nil {
				sleep(ctx, w.pollInterval)
			}
		})
		if !ok {
			break
		}
	}

	pool.Stop()
	wg.Wait()
	logger.Info(log_messages.QueueWorkerStopped, zap.String("queue", w.queue.Name()))
}

func (w *Worker) watchStalled(ctx context.Context) {
	ticker := time.NewTicker(w.queue.opts.LeaseDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.queue.RecoverStalled(ctx); err != nil {
				logger.CtxError(ctx, log_messages.QueueStalledCheckFailed, err, zap.String("queue", w.queue.Name()))
			}
		}
	}
}

// ProcessNext reserves and runs at most one job. It reports whether a job was
// taken. A job keeps running to completion after ctx is cancelled, bounded by
// its lease.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	job, err := w.queue.Reserve(ctx)
	if err != nil || job == nil {
		return false, err
	}

	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.queue.opts.LeaseDuration)
	defer cancel()

	fields := []zap.Field{
		zap.String("queue", w.queue.Name()),
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
	}

	h, ok := w.handler(job.Name)
	var result any
	if !ok {
		err = fmt.Errorf("%s: %s", log_messages.JobHandlerMissing, job.Name)
	} else {
		result, err = runHandler(jobCtx, h, job)
	}

	if err == nil {
		if cErr := w.queue.Complete(jobCtx, job, result); cErr != nil {
			return true, cErr
		}
		logger.CtxInfo(jobCtx, log_messages.JobCompleted, fields...)
		return true, nil
	}

	retried, delay, fErr := w.queue.Fail(jobCtx, job, err)
	if fErr != nil {
		return true, fErr
	}
	fields = append(fields, zap.Int("attempts_made", job.AttemptsMade), zap.Int("max_attempts", job.MaxAttempts))
	if retried {
		logger.CtxWarn(jobCtx, log_messages.JobFailedRetrying, append(fields, zap.Duration("delay", delay), zap.Error(err))...)
	} else {
		logger.CtxError(jobCtx, log_messages.JobFailedExhausted, err, fields...)
	}
	return true, nil
}

func runHandler(ctx context.Context, h Handler, job *Job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panicked: %v", r)
		}
	}()
	return h(ctx, job)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
