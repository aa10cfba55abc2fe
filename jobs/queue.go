package jobs

import (
	"context"
	"fmt"
	"sync"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const defaultQueueCapacity = 64

// MemoryQueue is a bounded in-process queue carrying digest execution
// messages between the cron trigger and the consumer loop. Nacked deliveries
// with Requeue set go back to the tail.
type MemoryQueue struct {
	mu       sync.Mutex
	messages chan *job.ExecutionMessage
	closed   bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &MemoryQueue{
		messages: make(chan *job.ExecutionMessage, capacity),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	if q == nil {
		return fmt.Errorf("jobs: queue is not configured")
	}
	if msg == nil {
		return fmt.Errorf("jobs: execution message is required")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("jobs: queue is closed")
	}
	select {
	case q.messages <- msg:
		return nil
	default:
		return fmt.Errorf("jobs: queue is full")
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (queue.Delivery, error) {
	if q == nil {
		return nil, fmt.Errorf("jobs: queue is not configured")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-q.messages:
		if !ok {
			return nil, fmt.Errorf("jobs: queue is closed")
		}
		return &memoryDelivery{queue: q, msg: msg}, nil
	}
}

// Close stops accepting new messages. Pending messages remain consumable.
func (q *MemoryQueue) Close() {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.messages)
}

func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.messages)
}

type memoryDelivery struct {
	queue *MemoryQueue
	msg   *job.ExecutionMessage
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	if d == nil {
		return nil
	}
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	return nil
}

func (d *memoryDelivery) Nack(ctx context.Context, opts queue.NackOptions) error {
	if d == nil || d.queue == nil {
		return fmt.Errorf("jobs: delivery is not configured")
	}
	if opts.Requeue {
		return d.queue.Enqueue(ctx, d.msg)
	}
	return nil
}

var (
	_ queue.Enqueuer = (*MemoryQueue)(nil)
	_ queue.Dequeuer = (*MemoryQueue)(nil)
	_ queue.Delivery = (*memoryDelivery)(nil)
)
