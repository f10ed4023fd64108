package event

import (
	"context"
	"reflect"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/service/messaging"
	"github.com/viant/atc/service/messaging/memory"
)

var log = logging.Logger("atc/event")

// Service routes typed events over in-memory queues, one per payload type,
// plus an untyped queue receiving a copy of every event.
type Service struct {
	runID           string
	publisher       *Publisher[any]
	listener        *Listener[any]
	typedPublishers map[reflect.Type]any
	typedListener   map[reflect.Type]stopper
	queues          []interface{ Close() }
	mux             *sync.RWMutex
	newQueueConfig  func(name string) memory.Config
}

type stopper interface{ Stop() }

func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]stopper),
		mux:             &sync.RWMutex{},
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.publisher = NewPublisher[any](QueueOf[Event[any]](ret, "any"))
	return ret
}

// Context builds an event context stamped with the service run id.
func (s *Service) Context(eventType Type, flightID int, service string) *Context {
	if s == nil {
		return &Context{FlightID: flightID, Type: eventType, Service: service}
	}
	return &Context{RunID: s.runID, FlightID: flightID, Type: eventType, Service: service}
}

// SetListener registers the handler for every event regardless of payload.
func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler)
	s.listener.Start()
}

// Shutdown stops all listeners and closes the queues.
func (s *Service) Shutdown() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
	for key, listener := range s.typedListener {
		listener.Stop()
		delete(s.typedListener, key)
	}
	for _, queue := range s.queues {
		queue.Close()
	}
}

func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	queue := memory.NewQueue[T](s.newQueueConfig(name))
	s.queues = append(s.queues, queue)
	return queue
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf registers the handler for events carrying a T payload.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	publisher := PublisherOf[T](s)
	key := keyOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if previous, ok := s.typedListener[key]; ok {
		previous.Stop()
	}
	listener := NewListener[T](publisher, handler)
	s.typedListener[key] = listener
	listener.Start()
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](QueueOf[Event[T]](s, key.String()))
	publisher.any = s.publisher
	s.typedPublishers[key] = publisher
	return publisher
}

// Publish sends data as a typed event; it is a no-op on a nil service.
func Publish[T any](ctx context.Context, s *Service, eventContext *Context, data T) {
	if s == nil {
		return
	}
	if err := PublisherOf[T](s).Publish(ctx, NewEvent(eventContext, data)); err != nil {
		log.Debugf("dropped %v event: %v", eventContext.Type, err)
	}
}
