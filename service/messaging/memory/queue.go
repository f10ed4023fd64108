package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/atc/internal/idgen"
	"github.com/viant/atc/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	// MaxRetries is the number of times a nacked message is redelivered.
	MaxRetries int
	// RetryDelay is the delay before a nacked message is redelivered.
	RetryDelay time.Duration
	// DeadLetter keeps messages that exhausted their retries.
	DeadLetter bool
	// Buffer is the channel capacity.
	Buffer int
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		DeadLetter: true,
		Buffer:     256,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id        string
	payload   T
	queue     *Queue[T]
	attempts  int
	mu        sync.Mutex
	processed bool
}

// ID returns the message identifier
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack indicates a failure in processing the message; it is redelivered
// after RetryDelay until MaxRetries is exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	m.attempts++
	if m.attempts <= m.queue.config.MaxRetries {
		retry := &Message[T]{id: m.id, payload: m.payload, queue: m.queue, attempts: m.attempts}
		time.AfterFunc(m.queue.config.RetryDelay, func() {
			_ = m.queue.push(context.Background(), retry)
		})
		return nil
	}
	if m.queue.config.DeadLetter {
		m.queue.deadLetter(m)
	}
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	done     chan struct{}
	once     sync.Once
	dlq      []*Message[T]
	dlqMu    sync.Mutex
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
		done:     make(chan struct{}),
	}
}

// Publish adds a new item to the queue, blocking while the buffer is full
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("messaging: nil payload")
	}
	return q.push(ctx, &Message[T]{id: idgen.New(), payload: *t, queue: q})
}

func (q *Queue[T]) push(ctx context.Context, msg *Message[T]) error {
	if q.closed() {
		return messaging.ErrClosed
	}
	select {
	case q.messages <- msg:
		return nil
	case <-q.done:
		return messaging.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-q.done:
		return nil, messaging.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the queue. Pending messages go to the dead letter queue when
// it is enabled and are discarded otherwise.
func (q *Queue[T]) Close() {
	q.once.Do(func() {
		close(q.done)
		for {
			select {
			case msg := <-q.messages:
				if q.config.DeadLetter {
					q.deadLetter(msg)
				}
			default:
				return
			}
		}
	})
}

func (q *Queue[T]) deadLetter(msg *Message[T]) {
	q.dlqMu.Lock()
	q.dlq = append(q.dlq, msg)
	q.dlqMu.Unlock()
}

func (q *Queue[T]) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter queue, counting
// those pending at Close
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
