package notif

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bahati/elimu/core"
)

// Deliverer is any service that can deliver one notification job to its
// recipient's channel (push gateway, email fallback, console in dev).
type Deliverer interface {
	Deliver(ctx context.Context, job Job) error
}

var deliveryBackoff = []time.Duration{0, 5 * time.Second, 30 * time.Second}

// Queue is an in-process job queue: producers enqueue without waiting for
// delivery, a worker pool consumes. Delivery is at-least-once per accepted
// job; a job is only lost if the buffer stays full past the enqueue timeout.
type Queue struct {
	ch      chan Job
	timeout time.Duration
	logger  core.Logger
}

func NewQueue(size int, timeout time.Duration, logger core.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		ch:      make(chan Job, size),
		timeout: timeout,
		logger:  logger,
	}
}

// Enqueue hands a job to the workers. It never performs delivery itself and
// returns false if the buffer stayed full past the queue timeout.
func (q *Queue) Enqueue(job Job) bool {
	select {
	case q.ch <- job:
		return true
	default:
	}

	t := time.NewTimer(q.timeout)
	defer t.Stop()
	select {
	case q.ch <- job:
		return true
	case <-t.C:
		q.logger.Error("notif: queue full, dropping job", map[string]interface{}{
			"job":       job.ID.String(),
			"event":     job.Event.Name(),
			"recipient": job.Recipient.ID,
		})
		return false
	}
}

func (q *Queue) jobs() <-chan Job { return q.ch }

func (q *Queue) Len() int { return len(q.ch) }

// WorkerPool consumes a Queue and delivers jobs, retrying transient failures
// with backoff before giving up on a job.
type WorkerPool struct {
	queue     *Queue
	deliverer Deliverer
	workers   int
	backoff   []time.Duration
	logger    core.Logger
}

func NewWorkerPool(queue *Queue, deliverer Deliverer, workers int, logger core.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		queue:     queue,
		deliverer: deliverer,
		workers:   workers,
		backoff:   deliveryBackoff,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled, then drains jobs already buffered.
func (p *WorkerPool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx)
		}()
	}
	wg.Wait()
}

func (p *WorkerPool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case job := <-p.queue.jobs():
			p.deliver(ctx, job)
		}
	}
}

// drainTimeout is the maximum time spent flushing buffered jobs on shutdown.
const drainTimeout = 30 * time.Second

func (p *WorkerPool) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue.jobs():
			p.deliver(ctx, job)
		default:
			return
		}
	}
}

func (p *WorkerPool) deliver(ctx context.Context, job Job) {
	var err error
	for attempt, wait := range p.backoff {
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				// shutting down; one last immediate try below
			case <-t.C:
				t.Stop()
			}
		}
		if err = p.deliverer.Deliver(ctx, job); err == nil {
			return
		}
		p.logger.Warn(
			fmt.Sprintf("notif: delivery attempt %d failed", attempt+1),
			err, map[string]interface{}{"job": job.ID.String(), "event": job.Event.Name()},
		)
		if ctx.Err() != nil {
			break
		}
	}
	p.logger.Error("notif: giving up on job", err, map[string]interface{}{
		"job":       job.ID.String(),
		"event":     job.Event.Name(),
		"recipient": job.Recipient.ID,
	})
}
