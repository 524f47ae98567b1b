package worker

import (
	"context"
	"log/slog"
	"sync"
)

type Job any

type ProcessFunc func(ctx context.Context, job Job) error

type WorkerPool struct {
	name       string
	numWorkers int
	jobs       chan Job
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewWorkerPool(name string, numWorkers int, bufferSize int, processor ProcessFunc) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		name:       name,
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
		processor:  processor,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if err := wp.processor(ctx, job); err != nil {
				slog.Debug("job failed", "pool", wp.name, "worker", id, "error", err)
			}
		}
	}
}

func (wp *WorkerPool) Submit(job Job) {
	wp.jobs <- job
}

// Stop closes the queue and waits for in-flight jobs.
func (wp *WorkerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
}

// Run processes jobs on a short-lived pool and returns once all of them are
// done or ctx is cancelled.
func Run(ctx context.Context, name string, numWorkers int, jobs []Job, processor ProcessFunc) {
	if len(jobs) == 0 {
		return
	}
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	pool := NewWorkerPool(name, numWorkers, len(jobs), processor)
	pool.Start(ctx)
	for _, j := range jobs {
		pool.Submit(j)
	}
	pool.Stop()
}
