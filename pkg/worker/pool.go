package worker

import (
	"errors"
	"sync"
)

// TaskFn is a single unit of work queued on a Pool.
type TaskFn func() error

// Pool runs a batch of queued tasks over a fixed number of
// worker goroutines. Unlike a long-lived service pool, a Pool is
// intended to be created per operation, filled with that
// operation's tasks, ran to completion and discarded.
//
// Tasks are started in push order, but completion order is
// unspecified; callers that care about ordering must encode it in
// the task itself (e.g. by closing over a target index).
type Pool struct {
	size    int
	tasks   []TaskFn
	started bool
}

// NewPool creates a new Pool which will run its tasks
// over (at most) 'size' concurrent workers.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}

	return &Pool{size: size, tasks: make([]TaskFn, 0)}
}

// Push inserts the tasks provided in to the pool. Pushing to a
// pool which has already been ran is an error.
func (pool *Pool) Push(tasks ...TaskFn) error {
	if pool.started {
		return errors.New("cannot push task to an already started pool")
	}

	pool.tasks = append(pool.tasks, tasks...)
	return nil
}

// Run starts the pool workers and blocks until every queued task
// has completed. The returned slice holds one entry per task (in
// push order); a nil entry indicates the task succeeded.
func (pool *Pool) Run() []error {
	if pool.started {
		return []error{errors.New("cannot run an already started pool")}
	}
	pool.started = true

	results := make([]error, len(pool.tasks))
	taskIndexes := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < pool.size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskIndexes {
				results[idx] = pool.tasks[idx]()
			}
		}()
	}

	for idx := range pool.tasks {
		taskIndexes <- idx
	}
	close(taskIndexes)
	wg.Wait()

	return results
}
