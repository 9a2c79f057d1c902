package core

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGoroutineInvokerStopWaitsForSpawned(t *testing.T) {
	inv := NewInvoker()
	var done int32
	inv.Spawn(func() {
		time.Sleep(10 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
	})
	inv.Stop()
	if atomic.LoadInt32(&done) != 1 {
		t.Fatalf("expected Stop to block until the spawned task finished")
	}
}

func TestWorkerPoolInvokerRunsQueuedTasks(t *testing.T) {
	var count int32
	inv := NewWorkerPoolInvoker(2, 8, nil)
	for i := 0; i < 8; i++ {
		inv.Spawn(func() { atomic.AddInt32(&count, 1) })
	}
	inv.Stop()
	if atomic.LoadInt32(&count) != 8 {
		t.Fatalf("expected all 8 queued tasks to run, got %d", count)
	}
}

func TestWorkerPoolInvokerDropsOnFullQueue(t *testing.T) {
	var dropped int32
	block := make(chan struct{})
	inv := NewWorkerPoolInvoker(1, 1, func() { atomic.AddInt32(&dropped, 1) })

	inv.Spawn(func() { <-block })
	// Give the single worker a moment to pick up the blocking task so the
	// next two Spawn calls land on a full queue, not an idle worker.
	time.Sleep(5 * time.Millisecond)
	inv.Spawn(func() {})
	inv.Spawn(func() {})

	close(block)
	inv.Stop()

	if atomic.LoadInt32(&dropped) == 0 {
		t.Fatalf("expected at least one dropped task once the bounded queue filled")
	}
}
