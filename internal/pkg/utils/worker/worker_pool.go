package worker

import (
	"context"
	"sync"
)

// WorkerPool runs submitted tasks on a fixed number of goroutines
type WorkerPool struct {
	workers  []*Worker
	tasks    chan Task
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWorkerPool creates a new WorkerPool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	pool := &WorkerPool{
		workers: make([]*Worker, numWorkers),
		tasks:   make(chan Task),
	}

	for i := 0; i < numWorkers; i++ {
		worker := newWorker(pool.tasks, &pool.wg)
		worker.Start()
		pool.workers[i] = worker
	}

	return pool
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// Submit hands task to the next idle worker. It blocks while every worker is
// busy and returns false if ctx ends first.
func (p *WorkerPool) Submit(ctx context.Context, task Task) bool {
	select {
	case p.tasks <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop stops all workers and waits for in-flight tasks to return
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		for _, worker := range p.workers {
			worker.Stop()
		}
	})
	p.wg.Wait()
}
