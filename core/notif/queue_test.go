package notif

import (
	"context"
	"testing"
	"time"

	"github.com/bahati/elimu/core/user"
	testutil "github.com/bahati/elimu/tests/logger"
)

func newTestJob() Job {
	return NewJob(PaymentCreated(1, "Tuition Q1"), newParent(100, "key-100"))
}

func TestQueue_Enqueue(t *testing.T) {
	logger := testutil.NewLogger()
	queue := NewQueue(2, 10*time.Millisecond, logger)

	if !queue.Enqueue(newTestJob()) {
		t.Fatal("Enqueue() = false; want true")
	}
	if !queue.Enqueue(newTestJob()) {
		t.Fatal("Enqueue() = false; want true")
	}
	if queue.Len() != 2 {
		t.Errorf("Len() = %d; want 2", queue.Len())
	}

	// buffer full and nobody consuming: the job is dropped after the timeout
	if queue.Enqueue(newTestJob()) {
		t.Error("Enqueue() on a full queue = true; want false")
	}
	if queue.Len() != 2 {
		t.Errorf("Len() = %d; want 2", queue.Len())
	}
	if n := len(logger.Records("ERROR")); n != 1 {
		t.Errorf("dropped job produced %d error logs; want 1", n)
	}
}

func TestWorkerPool_deliversAllJobs(t *testing.T) {
	logger := testutil.NewLogger()
	queue := NewQueue(16, 10*time.Millisecond, logger)
	deliverer := &recordingDeliverer{}

	pool := NewWorkerPool(queue, deliverer, 1, logger)
	pool.backoff = []time.Duration{0}

	for i := 0; i < 5; i++ {
		queue.Enqueue(NewJob(PaymentCreated(i+1, "Tuition"), user.User{ID: 100 + i}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Run(ctx)
	}()

	waitFor(t, func() bool { return queue.Len() == 0 })
	cancel()
	<-done

	if len(deliverer.delivered) != 5 {
		t.Errorf("delivered %d jobs; want 5", len(deliverer.delivered))
	}
}

func TestWorkerPool_retriesTransientFailures(t *testing.T) {
	logger := testutil.NewLogger()
	queue := NewQueue(4, 10*time.Millisecond, logger)
	deliverer := &recordingDeliverer{failTimes: 2}

	pool := NewWorkerPool(queue, deliverer, 1, logger)
	pool.backoff = []time.Duration{0, 0, 0}

	queue.Enqueue(newTestJob())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Run(ctx)
	}()

	waitFor(t, func() bool { return queue.Len() == 0 })
	cancel()
	<-done

	if len(deliverer.delivered) != 1 {
		t.Fatalf("delivered %d jobs; want 1", len(deliverer.delivered))
	}
	if n := len(logger.Records("WARN")); n != 2 {
		t.Errorf("failed attempts produced %d warnings; want 2", n)
	}
}

func TestWorkerPool_givesUpAfterBackoff(t *testing.T) {
	logger := testutil.NewLogger()
	queue := NewQueue(4, 10*time.Millisecond, logger)
	deliverer := &recordingDeliverer{failTimes: 10}

	pool := NewWorkerPool(queue, deliverer, 1, logger)
	pool.backoff = []time.Duration{0, 0, 0}

	queue.Enqueue(newTestJob())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Run(ctx)
	}()

	waitFor(t, func() bool { return len(logger.Records("ERROR")) > 0 })
	cancel()
	<-done

	if len(deliverer.delivered) != 0 {
		t.Errorf("delivered %d jobs; want 0", len(deliverer.delivered))
	}
}

func TestWorkerPool_drainsQueueOnShutdown(t *testing.T) {
	logger := testutil.NewLogger()
	queue := NewQueue(16, 10*time.Millisecond, logger)
	deliverer := &recordingDeliverer{}

	pool := NewWorkerPool(queue, deliverer, 1, logger)
	pool.backoff = []time.Duration{0}

	for i := 0; i < 3; i++ {
		queue.Enqueue(newTestJob())
	}

	// cancelled before the workers start: everything buffered is still flushed
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool.Run(ctx)

	if len(deliverer.delivered) != 3 {
		t.Errorf("delivered %d jobs on shutdown; want 3", len(deliverer.delivered))
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			// let the in-flight delivery finish
			time.Sleep(20 * time.Millisecond)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
