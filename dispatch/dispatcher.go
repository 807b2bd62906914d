// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch provides ThreadDispatcher, the fan-out-to-N-goroutines
// primitive the deactivator uses for its two parallel phases (traversal
// and gather). The shape — spin up goroutines, WaitGroup, block until
// they finish — is the same one Hub.Update (update.go) uses to fan
// client updates across runtime.NumCPU() workers; the difference is
// dispatch gives each worker a stable index and its own memory pool
// instead of a shared input channel, because the deactivator's workers
// pull jobs via an atomic counter rather than a channel.
package dispatch

import (
	"sync"

	"github.com/SunGuangdong/physgo/bufferpool"
)

// Dispatcher runs a function on each of ThreadCount goroutines and
// blocks until every one returns, handing each a stable worker index and
// a dedicated buffer pool.
type Dispatcher struct {
	threadCount int
	pools       []*bufferpool.Pool
}

// New creates a Dispatcher with threadCount workers, each with its own
// bufferpool.Pool sized by wordCap/intCap.
func New(threadCount, wordCap, intCap int) *Dispatcher {
	if threadCount < 1 {
		threadCount = 1
	}
	pools := make([]*bufferpool.Pool, threadCount)
	for i := range pools {
		pools[i] = bufferpool.New(wordCap, intCap)
	}
	return &Dispatcher{threadCount: threadCount, pools: pools}
}

// ThreadCount is the number of workers this Dispatcher runs.
func (d *Dispatcher) ThreadCount() int { return d.threadCount }

// GetThreadMemoryPool returns the dedicated pool for worker i. Pools are
// not safe to share across workers — see the package doc.
func (d *Dispatcher) GetThreadMemoryPool(i int) *bufferpool.Pool {
	return d.pools[i]
}

// DispatchWorkers blocks the calling goroutine while f(0)..f(ThreadCount-1)
// run concurrently, one per goroutine.
func (d *Dispatcher) DispatchWorkers(f func(workerIndex int)) {
	if d.threadCount == 1 {
		// Avoid goroutine overhead for the common single-threaded case;
		// also what makes deterministic mode deterministic for W=1.
		f(0)
		return
	}

	var wg sync.WaitGroup
	wg.Add(d.threadCount)
	for i := 0; i < d.threadCount; i++ {
		go func(workerIndex int) {
			defer wg.Done()
			f(workerIndex)
		}(i)
	}
	wg.Wait()
}
