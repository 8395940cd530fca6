package worker

import "sync"

// Task represents a unit of work to be processed by a worker
type Task func()

// Worker is a goroutine that processes tasks from the pool's shared channel
type Worker struct {
	tasks <-chan Task
	stop  chan struct{}
	wg    *sync.WaitGroup
}

func newWorker(tasks <-chan Task, wg *sync.WaitGroup) *Worker {
	return &Worker{
		tasks: tasks,
		stop:  make(chan struct{}),
		wg:    wg,
	}
}

// Start starts the worker to process tasks
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case task := <-w.tasks:
				task()
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop stops the worker once its current task returns
func (w *Worker) Stop() {
	close(w.stop)
}
