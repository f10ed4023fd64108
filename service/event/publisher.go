package event

import (
	"context"
	"sync/atomic"

	"github.com/viant/atc/service/messaging"
)

// Publisher delivers typed events to its queue and mirrors them to the
// untyped queue. Events are dropped while nobody listens, so a publisher
// never blocks the caller on an unconsumed queue.
type Publisher[T any] struct {
	queue     messaging.Queue[Event[T]]
	listening atomic.Bool
	any       *Publisher[any]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if p == nil || event == nil {
		return nil
	}
	if p.any != nil && p.any.listening.Load() {
		if err := p.any.queue.Publish(ctx, &Event[any]{
			ID:        event.ID,
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil {
			return err
		}
	}
	if !p.listening.Load() {
		return nil
	}
	return p.queue.Publish(ctx, event)
}

// Receive returns the next event message; the caller acks or nacks it.
func (p *Publisher[T]) Receive(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}
