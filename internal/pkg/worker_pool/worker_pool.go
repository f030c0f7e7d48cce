package worker_pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
)

type TaskFunc func(ctx context.Context) error

// DropFunc is called for a queued task that will never run because the pool
// was canceled. Its ctx is never canceled.
type DropFunc func(ctx context.Context, id string)

var (
	ErrPoolClosed = errors.New("worker pool is closed; cannot accept new tasks")
	ErrQueueFull  = errors.New("worker pool queue is full; task not accepted")
)

// workItem is an internal wrapper for tasks submitted to the pool.
type workItem struct {
	id     string
	fn     TaskFunc
	onDrop DropFunc
}

// WorkerPool runs submitted tasks on a fixed number of workers fed by a
// bounded queue. Submit never blocks: a full queue is reported to the caller.
type WorkerPool struct {
	tasksCh    chan workItem // buffered queue of pending tasks
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex // guards closed and the close of tasksCh
	closed     bool
	log        *log.Logger
}

// NewWorkerPool starts numWorkers workers reading from a queue of queueSize.
// Tasks receive a context derived from parentCtx that is canceled by Stop.
func NewWorkerPool(parentCtx context.Context, numWorkers, queueSize int, logger *log.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(parentCtx)
	wp := &WorkerPool{
		tasksCh:    make(chan workItem, queueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		log:        logger,
	}
	for i := 1; i <= numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
		logger.Debugf("Worker %d started", i)
	}
	return wp
}

// Submit queues a task. It returns ErrPoolClosed after Shutdown and
// ErrQueueFull when no queue slot is free.
func (wp *WorkerPool) Submit(id string, taskFn TaskFunc) error {
	return wp.SubmitWithDrop(id, taskFn, nil)
}

// SubmitWithDrop is Submit with a callback for when the task is accepted but
// dropped at shutdown without running.
func (wp *WorkerPool) SubmitWithDrop(id string, taskFn TaskFunc, onDrop DropFunc) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed || wp.ctx.Err() != nil {
		wp.log.Warnf("Submit rejected for task %s: pool is shutting down", id)
		return ErrPoolClosed
	}

	select {
	case wp.tasksCh <- workItem{id: id, fn: taskFn, onDrop: onDrop}:
		return nil
	default:
		wp.log.Warnf("Submit rejected for task %s: queue is full", id)
		return ErrQueueFull
	}
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (wp *WorkerPool) Pending() int {
	return len(wp.tasksCh)
}

// worker is the function each worker goroutine runs to process tasks.
func (wp *WorkerPool) worker(workerID int) {
	defer wp.wg.Done()
	for task := range wp.tasksCh {
		if wp.ctx.Err() != nil {
			// Stop was called: drain the queue without running anything.
			wp.log.Warnf("Worker %d dropping task %s: pool was canceled", workerID, task.id)
			wp.drop(task)
			continue
		}
		wp.log.Debugf("Worker %d starting task %s", workerID, task.id)
		if err := wp.run(task); err != nil {
			wp.log.Errorf("Task %s failed: %v", task.id, err)
		} else {
			wp.log.Debugf("Task %s completed successfully", task.id)
		}
	}
	wp.log.Debugf("Worker %d exiting: task channel closed", workerID)
}

func (wp *WorkerPool) run(task workItem) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			wp.log.WithField(`stack`, string(debug.Stack())).Errorf("Task %s panicked", task.id)
			err = fmt.Errorf("task %s panicked: %v", task.id, rec)
		}
	}()
	return task.fn(wp.ctx)
}

func (wp *WorkerPool) drop(task workItem) {
	if task.onDrop == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			wp.log.WithField(`stack`, string(debug.Stack())).Errorf("Drop callback for task %s panicked", task.id)
		}
	}()
	task.onDrop(context.WithoutCancel(wp.ctx), task.id)
}

// dropRemaining empties a closed queue that no worker is left to read, which
// only happens when the pool was started without workers.
func (wp *WorkerPool) dropRemaining() {
	for task := range wp.tasksCh {
		wp.log.Warnf("Dropping task %s: no worker left to run it", task.id)
		wp.drop(task)
	}
}

// Shutdown stops accepting tasks and waits for queued and in-flight tasks to
// finish. If ctx expires first the pool context is canceled and ctx.Err() is
// returned.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.tasksCh)
	}
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancelFunc()
		wp.dropRemaining()
		wp.log.Info("All tasks completed, worker pool stopped")
		return nil
	case <-ctx.Done():
		wp.log.Warn("Shutdown deadline reached: canceling in-flight tasks")
		wp.cancelFunc()
		<-done
		wp.dropRemaining()
		return ctx.Err()
	}
}

// Stop cancels in-flight tasks, drops queued ones and waits for workers to exit.
func (wp *WorkerPool) Stop() {
	wp.log.Infof("Manual stop invoked: canceling worker pool")
	wp.cancelFunc()
	_ = wp.Shutdown(context.Background())
}
