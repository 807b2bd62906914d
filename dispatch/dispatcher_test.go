// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"sync/atomic"
	"testing"
)

func TestDispatchWorkersRunsAll(t *testing.T) {
	d := New(4, 8, 8)
	var seen [4]int32
	d.DispatchWorkers(func(i int) {
		atomic.StoreInt32(&seen[i], 1)
	})
	for i, v := range seen {
		if v != 1 {
			t.Errorf("worker %d did not run", i)
		}
	}
}

func TestDispatchWorkersSingleThreadIsSynchronous(t *testing.T) {
	d := New(1, 8, 8)
	ran := false
	d.DispatchWorkers(func(i int) {
		if i != 0 {
			t.Fatalf("worker index = %d, want 0", i)
		}
		ran = true
	})
	if !ran {
		t.Fatal("single-thread dispatch did not run")
	}
}

func TestGetThreadMemoryPoolDistinctPerWorker(t *testing.T) {
	d := New(2, 4, 4)
	if d.GetThreadMemoryPool(0) == d.GetThreadMemoryPool(1) {
		t.Fatal("workers must not share a pool")
	}
}
