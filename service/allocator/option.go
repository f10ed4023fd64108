package allocator

import (
	"time"

	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/event"
)

// Option represents a resource manager option
type Option func(s *Service)

// WithStats sets the run counters updated on alerts and reallocations.
func WithStats(stats *progress.Stats) Option {
	return func(s *Service) {
		s.stats = stats
	}
}

// WithEvents sets the event service notified about alerts, starvation and
// reallocations.
func WithEvents(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithWaitObserver sets a callback invoked with the wait of every granted
// request.
func WithWaitObserver(fn func(kind model.Kind, wait time.Duration)) Option {
	return func(s *Service) {
		s.onWait = fn
	}
}
