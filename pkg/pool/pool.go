package pool

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Pool bounds how many CPU-heavy jobs (password hashing) run at once. Callers
// block on Run until a slot frees up, the job finishes, or their context ends.
type Pool struct {
	name     string
	capacity int64
	sem      *semaphore.Weighted
	logger   *zap.Logger

	inFlight  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	abandoned atomic.Int64
}

// New creates a pool with workers concurrent slots.
func New(name string, workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pool{
		name:     name,
		capacity: int64(workers),
		sem:      semaphore.NewWeighted(int64(workers)),
		logger:   logger,
	}
}

// Run executes job on its own goroutine once a slot is available and waits
// for it. If ctx ends first Run returns ctx.Err(); the job keeps its slot
// until it returns so the bound holds.
func (p *Pool) Run(ctx context.Context, job func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s pool: waiting for slot: %w", p.name, err)
	}

	p.inFlight.Add(1)
	done := make(chan error, 1)

	go func() {
		defer func() {
			p.inFlight.Add(-1)
			p.sem.Release(1)
		}()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Pool job panicked",
					zap.String("pool", p.name),
					zap.Any("panic", r),
				)
				done <- fmt.Errorf("%s pool: job panicked: %v", p.name, r)
			}
		}()
		done <- job()
	}()

	select {
	case err := <-done:
		if err != nil {
			p.failed.Add(1)
			return err
		}
		p.completed.Add(1)
		return nil
	case <-ctx.Done():
		p.abandoned.Add(1)
		p.logger.Warn("Pool job abandoned by caller",
			zap.String("pool", p.name),
			zap.Error(ctx.Err()),
		)
		return ctx.Err()
	}
}

// Stats returns pool statistics
func (p *Pool) Stats() map[string]interface{} {
	return map[string]interface{}{
		"name":      p.name,
		"capacity":  p.capacity,
		"in_flight": p.inFlight.Load(),
		"completed": p.completed.Load(),
		"failed":    p.failed.Load(),
		"abandoned": p.abandoned.Load(),
	}
}
