package parallel

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-pool/pkg/logging"
	"github.com/dd0wney/cluso-pool/pkg/pools"
)

// Task runs on one worker with exclusive use of that worker's reservoir.
type Task[T any] func(worker int, reservoir *pools.Pool[T])

// ReservoirFactory builds the private pool of one worker.
type ReservoirFactory[T any] func(worker int) (*pools.Pool[T], error)

// WorkerPool runs tasks on a fixed set of goroutines, each owning one
// pools.Pool. A reservoir is only ever touched by its owning goroutine, so
// the pools need no locking.
type WorkerPool[T any] struct {
	workers    int
	reservoirs []*pools.Pool[T]
	taskQueue  chan Task[T]
	logger     logging.Logger

	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex // Protects taskQueue from concurrent close during send
	closed bool         // Protected by mu
	done   bool         // Protected by mu; set once reservoirs are torn down
	panics atomic.Int64
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// ErrStillRunning is returned by Stats before Close has finished.
var ErrStillRunning = errors.New("worker pool is still running")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool starts workers goroutines, building one reservoir for each
// with newReservoir. workers <= 0 means 1. If any reservoir fails to build,
// the ones already built are torn down and the error is returned.
func NewWorkerPool[T any](workers int, newReservoir ReservoirFactory[T]) (*WorkerPool[T], error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	reservoirs := make([]*pools.Pool[T], 0, workers)
	for i := 0; i < workers; i++ {
		r, err := newReservoir(i)
		if err != nil {
			for _, built := range reservoirs {
				built.Teardown()
			}
			return nil, fmt.Errorf("reservoir for worker %d: %w", i, err)
		}
		reservoirs = append(reservoirs, r)
	}

	wp := &WorkerPool[T]{
		workers:    workers,
		reservoirs: reservoirs,
		taskQueue:  make(chan Task[T], workers*2), // Buffer for 2x workers
		logger:     logging.DefaultLogger().With(logging.Component("parallel")),
	}

	wp.start()
	return wp, nil
}

func (wp *WorkerPool[T]) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool[T]) worker(id int) {
	defer wp.wg.Done()

	reservoir := wp.reservoirs[id]
	for task := range wp.taskQueue {
		wp.run(id, reservoir, task)
	}
}

// run executes one task; a panicking task does not take the worker down.
func (wp *WorkerPool[T]) run(id int, reservoir *pools.Pool[T], task Task[T]) {
	defer func() {
		if r := recover(); r != nil {
			wp.panics.Add(1)
			wp.logger.Warn("task panic recovered",
				logging.Worker(id),
				logging.Pool(reservoir.Name()),
				logging.Any("panic", fmt.Sprint(r)),
			)
		}
	}()
	task(id, reservoir)
}

// Submit queues task. It returns false once the pool is closed.
func (wp *WorkerPool[T]) Submit(task Task[T]) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks, waits for the queued ones, then tears down
// every reservoir. It is safe to call more than once and from several
// goroutines; every call returns after teardown.
func (wp *WorkerPool[T]) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()

		wp.wg.Wait()

		// a task may already have torn down its own reservoir
		for _, r := range wp.reservoirs {
			if !r.TornDown() {
				r.Teardown()
			}
		}

		wp.mu.Lock()
		wp.done = true
		wp.mu.Unlock()
	})
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool[T]) Workers() int {
	return wp.workers
}

// Panics returns the number of task panics recovered so far.
func (wp *WorkerPool[T]) Panics() int64 {
	return wp.panics.Load()
}

// Stats returns the final counters of every worker reservoir, indexed by
// worker. Reservoirs belong to running workers until Close returns, so
// earlier calls get ErrStillRunning.
func (wp *WorkerPool[T]) Stats() ([]pools.Stats, error) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.done {
		return nil, ErrStillRunning
	}

	stats := make([]pools.Stats, len(wp.reservoirs))
	for i, r := range wp.reservoirs {
		stats[i] = r.Stats()
	}
	return stats, nil
}

// Totals sums per-worker stats.
func Totals(stats []pools.Stats) pools.Stats {
	var total pools.Stats
	for _, s := range stats {
		total.Created += s.Created
		total.Destroyed += s.Destroyed
		total.Acquired += s.Acquired
		total.Released += s.Released
		total.Growths += s.Growths
		total.Reductions += s.Reductions
		total.Available += s.Available
		total.Reservoir += s.Reservoir
	}
	return total
}
