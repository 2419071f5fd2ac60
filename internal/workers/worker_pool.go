package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

var ErrPoolClosed = errors.New("worker pool is shutting down")

// WorkerPool runs submitted tasks on a fixed number of goroutines
type WorkerPool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	numWorkers int
	workerChan chan func()
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
	logger     *utils.LogsManager
}

// NewWorkerPool creates a pool bound to ctx. Call Start before submitting.
func NewWorkerPool(ctx context.Context, numWorkers int, logger *utils.LogsManager) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	poolCtx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		ctx:        poolCtx,
		cancel:     cancel,
		numWorkers: numWorkers,
		workerChan: make(chan func(), numWorkers),
		logger:     logger,
	}
}

// Start launches the workers. Calling it again is a no-op.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		wp.logger.Debug(fmt.Sprintf("Starting worker pool with %d workers", wp.numWorkers), "workers")

		for i := 0; i < wp.numWorkers; i++ {
			wp.wg.Add(1)
			go wp.run(i)
		}
	})
}

func (wp *WorkerPool) run(id int) {
	defer wp.wg.Done()

	for {
		select {
		case task := <-wp.workerChan:
			wp.execute(id, task)
		case <-wp.ctx.Done():
			return
		}
	}
}

// a panicking task must not take its worker down with it
func (wp *WorkerPool) execute(id int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error(fmt.Sprintf("Worker %d panic recovered: %v", id, r), "workers")
		}
	}()
	task()
}

// Submit queues task, blocking while the queue is full. It fails when the
// pool is stopping or ctx is done.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case wp.workerChan <- task:
		return nil
	case <-wp.ctx.Done():
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the pool and waits for running tasks. Queued tasks that have
// not started are dropped.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.logger.Debug("Stopping worker pool", "workers")
		wp.cancel()
		wp.wg.Wait()
	})
}

func (wp *WorkerPool) Size() int {
	return wp.numWorkers
}
