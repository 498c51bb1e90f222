// Package workers provides a small bounded goroutine pool used to load
// many markets' candle files concurrently.
package workers

import (
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work submitted to a Pool.
type Task func() error

// Pool runs tasks across a fixed number of worker goroutines.
type Pool struct {
	logger    *zap.Logger
	taskQueue chan Task
	wg        sync.WaitGroup
}

// New starts a Pool with numWorkers goroutines and a task queue of the
// given capacity.
func New(logger *zap.Logger, numWorkers, queueCapacity int) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = numWorkers * 2
	}

	p := &Pool{
		logger:    logger.Named("workers"),
		taskQueue: make(chan Task, queueCapacity),
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.taskQueue {
		if err := task(); err != nil {
			p.logger.Warn("task failed", zap.Error(err))
		}
	}
}

// Submit enqueues task. Blocks if the queue is full.
func (p *Pool) Submit(task Task) {
	p.taskQueue <- task
}

// Close stops accepting new tasks and waits for all queued tasks to drain.
func (p *Pool) Close() {
	close(p.taskQueue)
	p.wg.Wait()
}
