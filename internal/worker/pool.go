// Package worker runs fire-and-forget tasks on a bounded pool. Tasks are
// best-effort: a full queue drops the submission, a process crash drops
// queued work. Callers that need durable delivery should not be here.
package worker

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PoolError is a pool-level error.
type PoolError string

func (e PoolError) Error() string { return string(e) }

const (
	// ErrQueueFull indicates the task queue is saturated.
	ErrQueueFull PoolError = "worker queue full"

	// ErrClosed indicates the pool is shutting down.
	ErrClosed PoolError = "worker pool closed"
)

// Task is one unit of background work. The context carries the pool's
// per-task timeout, not the submitting request's deadline: the submitter
// has already moved on.
type Task func(ctx context.Context)

// Pool is a fixed-size worker pool fed by a bounded channel.
type Pool struct {
	tasks       chan Task
	taskTimeout time.Duration
	logger      *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

// New starts size workers with a queue of queueSize tasks.
func New(size, queueSize int, taskTimeout time.Duration, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	p := &Pool{
		tasks:       make(chan Task, queueSize),
		taskTimeout: taskTimeout,
		logger:      logger,
		closed:      make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}

	logger.Info("worker pool started", zap.Int("workers", size), zap.Int("queue", queueSize))
	return p
}

// Submit enqueues a task without blocking. It returns ErrQueueFull when
// the queue is saturated and ErrClosed during shutdown; in both cases the
// task is dropped and the caller decides whether that is worth more than
// a log line.
func (p *Pool) Submit(task Task) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			p.execute(task)
		case <-p.closed:
			// Drain what is already queued, then exit.
			for {
				select {
				case task := <-p.tasks:
					p.execute(task)
				default:
					return
				}
			}
		}
	}
}

// execute runs one task with a timeout and panic isolation: a panicking
// task must not take its worker down.
func (p *Pool) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker task panic",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	ctx := context.Background()
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	task(ctx)
}

// Close stops accepting tasks and waits up to drainTimeout for queued
// work to finish. Work still queued after the timeout is lost, which is
// the documented contract.
func (p *Pool) Close(drainTimeout time.Duration) {
	p.closeOnce.Do(func() {
		close(p.closed)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("worker pool drained")
		case <-time.After(drainTimeout):
			p.logger.Warn("worker pool drain timed out; dropping queued tasks")
		}
	})
}
