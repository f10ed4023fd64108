package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/atc/service/messaging"
)

type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		done:      make(chan struct{}),
	}
}

// Stop cancels the consumer loop and waits for the handler in flight.
func (l *Listener[T]) Stop() {
	if l.cancel == nil {
		return
	}
	l.publisher.listening.Store(false)
	l.cancel()
	<-l.done
}

func (l *Listener[T]) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.publisher.listening.Store(true)
	go func() {
		defer close(l.done)
		for {
			msg, err := l.publisher.Receive(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, messaging.ErrClosed) {
					return
				}
				log.Warnf("failed to consume event: %v", err)
				continue
			}
			if err = l.handle(msg.T()); err != nil {
				log.Warnf("event %v: %v", msg.T().ID, err)
				err = msg.Nack(err)
			} else {
				err = msg.Ack()
			}
			if err != nil {
				log.Warnf("failed to settle event %v: %v", msg.T().ID, err)
			}
		}
	}()
}

// handle runs the handler; a panicking handler gets the event redelivered.
func (l *Listener[T]) handle(event *Event[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	l.handler(event)
	return nil
}
