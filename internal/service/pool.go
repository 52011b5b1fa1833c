package service

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds concurrent expensive analyzer executions across all
// in-flight requests. When saturated, Acquire queues until a slot frees
// or the caller's context expires.
type WorkerPool struct {
	sem  *semaphore.Weighted
	size int
}

// NewWorkerPool creates a pool with the given capacity.
func NewWorkerPool(maxConcurrent int) *WorkerPool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &WorkerPool{
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
		size: maxConcurrent,
	}
}

// Acquire claims one slot, blocking until available or ctx is done.
func (p *WorkerPool) Acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// Release returns a slot to the pool.
func (p *WorkerPool) Release() {
	p.sem.Release(1)
}

// Size returns the pool capacity.
func (p *WorkerPool) Size() int {
	return p.size
}
