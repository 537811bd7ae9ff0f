// Package gopool runs short-lived tasks on a shared ants goroutine pool.
package gopool

import (
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

var (
	// Init a instance pool when importing ants.
	defaultPool, _   = ants.NewPool(ants.DefaultAntsPoolSize, ants.WithExpiryDuration(10*time.Second))
	minNumberPerTask = 5
)

// Submit submits a task to pool.
func Submit(task func()) error {
	return defaultPool.Submit(task)
}

// Running returns the number of the currently running goroutines.
func Running() int {
	return defaultPool.Running()
}

// Cap returns the capacity of this default pool.
func Cap() int {
	return defaultPool.Cap()
}

// Free returns the available goroutines to work.
func Free() int {
	return defaultPool.Free()
}

// Threads returns how many tasks a batch of n items should be split into.
func Threads(tasks int) int {
	threads := tasks / minNumberPerTask
	if threads > runtime.NumCPU() {
		threads = runtime.NumCPU()
	} else if threads == 0 {
		threads = 1
	}
	return threads
}

// Wave runs tasks on the pool and waits for all of them. It returns the
// first error reported. A panicking task is re-raised on the calling
// goroutine once the whole wave has finished, even if another task already
// failed, since the pool itself swallows worker panics.
func Wave(tasks []func() error) error {
	var (
		wg        sync.WaitGroup
		errOnce   sync.Once
		panicOnce sync.Once
		firstErr  error
		panicked  interface{}
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
	}
	for _, task := range tasks {
		task := task
		wg.Add(1)
		run := func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					panicOnce.Do(func() { panicked = p })
				}
			}()
			if err := task(); err != nil {
				fail(err)
			}
		}
		if err := Submit(run); err != nil {
			wg.Done()
			fail(errors.Wrap(err, "submit wave task"))
		}
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}
	return firstErr
}
