// Package monitor runs the periodic deadlock check. On a suspected deadlock
// it warns every flight that holds a resource while waiting for another and
// asks the reallocator to strip the most warned flight once it reaches the
// warning limit.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/detector"
	"github.com/viant/atc/service/event"
)

var log = logging.Logger("atc/monitor")

// Config represents monitor configuration
type Config struct {
	// Period is how often the matrices are inspected.
	Period time.Duration `json:"period" yaml:"period"`
	// MaxWarnings is the warning count that makes a flight eligible for
	// reallocation.
	MaxWarnings int `json:"maxWarnings" yaml:"maxWarnings"`
}

// DefaultConfig returns the default monitor configuration
func DefaultConfig() Config {
	return Config{
		Period:      5 * time.Second,
		MaxWarnings: 3,
	}
}

// Airport exposes the shared state inspected by the monitor.
type Airport interface {
	Detect() detector.Detection
	WatchList() *detector.WatchList
	Flight(flightID int) (*model.Flight, bool)
}

// Reallocator strips the resources of a flight.
type Reallocator interface {
	Reallocate(ctx context.Context, flightID int) bool
}

// Outcome describes one monitor pass.
type Outcome struct {
	detector.Detection
	// Reallocated lists flights stripped during the pass.
	Reallocated []int
}

// Service is the deadlock monitor
type Service struct {
	config      Config
	airport     Airport
	reallocator Reallocator
	stats       *progress.Stats
	events      *event.Service
	shutdownCh  chan struct{}
	once        sync.Once
}

// Option represents a monitor option
type Option func(s *Service)

// WithStats sets the run counters receiving deadlock counts.
func WithStats(stats *progress.Stats) Option {
	return func(s *Service) { s.stats = stats }
}

// WithEvents sets the event service notified about suspected deadlocks.
func WithEvents(events *event.Service) Option {
	return func(s *Service) { s.events = events }
}

// New creates a deadlock monitor
func New(config Config, airport Airport, reallocator Reallocator, options ...Option) (*Service, error) {
	if airport == nil || reallocator == nil {
		return nil, fmt.Errorf("monitor requires airport and reallocator")
	}
	if config.Period <= 0 || config.MaxWarnings <= 0 {
		return nil, fmt.Errorf("invalid monitor config: %+v", config)
	}
	ret := &Service{
		config:      config,
		airport:     airport,
		reallocator: reallocator,
		shutdownCh:  make(chan struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Start runs the monitor loop until ctx is done or Shutdown is called
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check runs one detection pass.
func (s *Service) Check(ctx context.Context) Outcome {
	outcome := Outcome{Detection: s.airport.Detect()}
	if !outcome.Suspected {
		return outcome
	}
	s.stats.Update(progress.Delta{Deadlocks: 1})
	log.Warnf("deadlock suspected: stuck flights %v, exhausted %v", outcome.Stuck, outcome.Exhausted)
	exhausted := make([]string, 0, len(outcome.Exhausted))
	for _, kind := range outcome.Exhausted {
		exhausted = append(exhausted, kind.String())
	}
	event.Publish(ctx, s.events, s.events.Context(event.TypeDeadlockSuspected, 0, "monitor"),
		event.Deadlock{Stuck: outcome.Stuck, Exhausted: exhausted})

	watchList := s.airport.WatchList()
	stuck := make(map[int]bool, len(outcome.Stuck))
	for _, flightID := range outcome.Stuck {
		stuck[flightID] = true
		warnings := watchList.Warn(flightID)
		if f, ok := s.airport.Flight(flightID); ok {
			f.SetWarnings(warnings)
		}
	}

	for _, candidate := range watchList.Candidates(s.config.MaxWarnings) {
		if !stuck[candidate.FlightID] {
			continue
		}
		f, ok := s.airport.Flight(candidate.FlightID)
		if !ok || f.Reallocated() {
			continue
		}
		if s.reallocator.Reallocate(ctx, candidate.FlightID) {
			outcome.Reallocated = append(outcome.Reallocated, candidate.FlightID)
			break
		}
	}
	return outcome
}

// Shutdown stops the monitor loop
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}
