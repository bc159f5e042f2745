package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs tasks on at most size goroutines at a time. A panicking task is
// recovered and reported to its panic handler; the pool keeps running.
type Pool struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

func NewPool(size int, logger *zap.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit schedules task without blocking the caller. onPanic, if non-nil, runs
// after a recovered panic with the recovered value wrapped as an error.
func (p *Pool) Submit(name string, task func(ctx context.Context), onPanic func(err error)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			p.logger.Warn("Task dropped, pool shutting down", zap.String("task", name))
			return
		}
		defer p.sem.Release(1)
		p.run(name, task, onPanic)
	}()
	return nil
}

func (p *Pool) run(name string, task func(ctx context.Context), onPanic func(err error)) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task %s panicked: %v", name, r)
			p.logger.Error("Recovered task panic", zap.String("task", name), zap.Any("panic", r))
			if onPanic != nil {
				onPanic(err)
			}
		}
	}()
	task(p.ctx)
}

// Close stops accepting tasks and waits for in-flight ones until ctx expires.
// Queued tasks that have not started yet are dropped once ctx is done.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
