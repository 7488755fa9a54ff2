package worker_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/clipsift/clipsift/pkg/worker"
	"github.com/stretchr/testify/assert"
)

func TestPool_RunsEveryTask(t *testing.T) {
	var ran int32

	pool := worker.NewPool(3)
	for i := 0; i < 20; i++ {
		assert.Nil(t, pool.Push(func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}

	results := pool.Run()
	assert.Len(t, results, 20)
	assert.EqualValues(t, 20, atomic.LoadInt32(&ran))
	for _, err := range results {
		assert.Nil(t, err)
	}
}

func TestPool_ResultsFollowPushOrder(t *testing.T) {
	expected := errors.New("task two failed")

	pool := worker.NewPool(2)
	pool.Push(func() error { return nil })
	pool.Push(func() error { return expected })
	pool.Push(func() error { return nil })

	results := pool.Run()
	assert.Equal(t, []error{nil, expected, nil}, results)
}

func TestPool_ConcurrencyBounded(t *testing.T) {
	const size = 2
	var current, peak int32
	var mu sync.Mutex

	pool := worker.NewPool(size)
	for i := 0; i < 10; i++ {
		pool.Push(func() error {
			running := atomic.AddInt32(&current, 1)
			mu.Lock()
			if running > peak {
				peak = running
			}
			mu.Unlock()

			atomic.AddInt32(&current, -1)
			return nil
		})
	}
	pool.Run()

	assert.LessOrEqual(t, peak, int32(size))
}

func TestPool_PushAfterRunRejected(t *testing.T) {
	pool := worker.NewPool(1)
	pool.Push(func() error { return nil })
	pool.Run()

	assert.NotNil(t, pool.Push(func() error { return nil }))
}

func TestPool_EmptyPoolRunsCleanly(t *testing.T) {
	assert.Empty(t, worker.NewPool(4).Run())
}
