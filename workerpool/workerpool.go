package workerpool

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is one unit of work handed to the pool.
type Task func(ctx context.Context) error

// WorkerPool runs a batch of tasks on a fixed number of workers.
type WorkerPool struct {
	name        string
	workerCount int
	execTimeout time.Duration
	logger      zerolog.Logger
}

type Option func(*WorkerPool)

func New(opts ...Option) *WorkerPool {
	pool := &WorkerPool{
		name:        "worker-pool",
		workerCount: 1,
		execTimeout: 0,
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(pool)
	}

	return pool
}

func WithWorkerCount(count int) Option {
	return func(pool *WorkerPool) {
		if count > 0 {
			pool.workerCount = count
		}
	}
}

func WithExecutionTimeout(timeout time.Duration) Option {
	return func(pool *WorkerPool) {
		if timeout > 0 {
			pool.execTimeout = timeout
		}
	}
}

func WithName(name string) Option {
	return func(pool *WorkerPool) {
		if name != "" {
			pool.name = name
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(pool *WorkerPool) {
		pool.logger = logger
	}
}

func (pool *WorkerPool) Name() string {
	return pool.name
}

// Run executes every task and returns their errors in task order, nil for
// tasks that succeeded. Tasks not started before ctx is done report ctx.Err().
func (pool *WorkerPool) Run(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	workers := min(pool.workerCount, len(tasks))
	jobChan := make(chan int)

	pool.logger.Debug().
		Str("pool", pool.name).
		Int("worker_count", workers).
		Int("task_count", len(tasks)).
		Dur("exec_timeout", pool.execTimeout).
		Msg("Worker pool is starting.")

	var wg sync.WaitGroup

	for workerID := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for index := range jobChan {
				errs[index] = pool.executeWithTimeout(ctx, workerID, tasks[index])
			}
		}()
	}

	pool.dispatch(ctx, jobChan, len(tasks), errs)

	wg.Wait()

	pool.logger.Debug().Str("pool", pool.name).Msg("Worker pool has stopped.")

	return errs
}

func (pool *WorkerPool) dispatch(ctx context.Context, jobChan chan<- int, count int, errs []error) {
	defer close(jobChan)

	for index := range count {
		select {
		case jobChan <- index:
		case <-ctx.Done():
			for rest := index; rest < count; rest++ {
				errs[rest] = ctx.Err()
			}

			pool.logger.Debug().
				Str("pool", pool.name).
				Int("skipped", count-index).
				Msg("Dispatcher is shutting down.")

			return
		}
	}
}

func (pool *WorkerPool) executeWithTimeout(ctx context.Context, workerID int, task Task) error {
	var execCtx context.Context

	var cancel context.CancelFunc

	if pool.execTimeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, pool.execTimeout)
	} else {
		execCtx, cancel = context.WithCancel(ctx)
	}

	defer cancel()

	err := task(execCtx)
	if err != nil {
		pool.logger.Debug().
			Err(err).
			Str("pool", pool.name).
			Int("worker_id", workerID).
			Msg("Task failed.")
	}

	return err
}
