package processor

import (
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/messaging"
)

// Option represents a processor option
type Option func(s *Service)

// WithConfig sets the processor configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithAirport sets the resource manager flights acquire from
func WithAirport(airport Airport) Option {
	return func(s *Service) {
		s.airport = airport
	}
}

// WithQueue sets the arrival dispatch queue
func WithQueue(queue messaging.Queue[Arrival]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithOperate replaces the sleep based phase work
func WithOperate(fn OperateFunc) Option {
	return func(s *Service) {
		s.operate = fn
	}
}

// WithStats sets the run counters
func WithStats(stats *progress.Stats) Option {
	return func(s *Service) {
		s.stats = stats
	}
}

// WithEvents sets the event service notified about completed flights
func WithEvents(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}
