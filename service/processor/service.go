package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/allocator"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/messaging"
	"github.com/viant/atc/tracing"
)

var log = logging.Logger("atc/processor")

// Config represents lifecycle configuration
type Config struct {
	// Workers caps the number of concurrently active flights.
	Workers int `json:"workers" yaml:"workers"`
	// PhaseRetries is how many times a phase is retried after the flight's
	// resources were reallocated.
	PhaseRetries  int           `json:"phaseRetries" yaml:"phaseRetries"`
	LandingTime   time.Duration `json:"landingTime" yaml:"landingTime"`
	DeplaningTime time.Duration `json:"deplaningTime" yaml:"deplaningTime"`
	TakeoffTime   time.Duration `json:"takeoffTime" yaml:"takeoffTime"`
	// ReleaseGap separates the tower and gate releases after deplaning.
	ReleaseGap time.Duration `json:"releaseGap" yaml:"releaseGap"`
}

// DefaultConfig returns the default lifecycle configuration
func DefaultConfig() Config {
	return Config{
		Workers:       200,
		PhaseRetries:  3,
		LandingTime:   2 * time.Second,
		DeplaningTime: 3 * time.Second,
		TakeoffTime:   2 * time.Second,
		ReleaseGap:    300 * time.Millisecond,
	}
}

// Duration returns the simulated work time of phase.
func (c Config) Duration(phase model.Phase) time.Duration {
	switch phase {
	case model.PhaseLanding:
		return c.LandingTime
	case model.PhaseDeplaning:
		return c.DeplaningTime
	default:
		return c.TakeoffTime
	}
}

// Airport is the resource manager used by the lifecycle.
type Airport interface {
	Register(f *model.Flight) error
	Unregister(f *model.Flight)
	RequestPhase(ctx context.Context, phase model.Phase, f *model.Flight) error
	ReleasePhase(phase model.Phase, f *model.Flight)
	Release(kind model.Kind, f *model.Flight)
}

// OperateFunc performs the work of a phase while the flight holds its
// resources.
type OperateFunc func(ctx context.Context, phase model.Phase, f *model.Flight) error

// Arrival is the dispatch message creating a flight.
type Arrival struct {
	FlightID  int         `json:"flightId"`
	Class     model.Class `json:"class"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Service runs flight lifecycles
type Service struct {
	config  Config
	airport Airport
	queue   messaging.Queue[Arrival]
	operate OperateFunc
	stats   *progress.Stats
	events  *event.Service

	workerWg   sync.WaitGroup
	inflight   sync.WaitGroup
	cancel     context.CancelFunc
	once       sync.Once
}

// New creates a lifecycle service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.airport == nil {
		return nil, fmt.Errorf("airport is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("arrival queue is required")
	}
	if s.config.Workers <= 0 {
		return nil, fmt.Errorf("workers must be > 0, got %d", s.config.Workers)
	}
	if s.operate == nil {
		s.operate = s.sleep
	}
	return s, nil
}

// Start launches the workers; it does not block.
func (s *Service) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := 0; i < s.config.Workers; i++ {
		s.workerWg.Add(1)
		go s.run(workerCtx, i)
	}
	return nil
}

func (s *Service) run(ctx context.Context, id int) {
	defer s.workerWg.Done()
	for {
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, messaging.ErrClosed) {
				return
			}
			log.Warnf("worker %d: failed to consume arrival: %v", id, err)
			continue
		}
		arrival := msg.T()
		if ctx.Err() != nil {
			// shut down before the flight started
			if err = msg.Nack(ctx.Err()); err != nil {
				log.Warnf("worker %d: failed to nack flight %d: %v", id, arrival.FlightID, err)
			}
			s.inflight.Done()
			return
		}
		f := model.NewFlight(arrival.FlightID, arrival.Class, arrival.CreatedAt)
		if err = s.Fly(ctx, f); err != nil {
			log.Debugf("worker %d: flight %d ended: %v", id, f.ID, err)
		}
		if err = msg.Ack(); err != nil {
			log.Warnf("worker %d: failed to ack flight %d: %v", id, f.ID, err)
		}
		s.inflight.Done()
	}
}

// Dispatch queues an arrival for the workers.
func (s *Service) Dispatch(ctx context.Context, arrival Arrival) error {
	s.inflight.Add(1)
	if err := s.queue.Publish(ctx, &arrival); err != nil {
		s.inflight.Done()
		return fmt.Errorf("failed to dispatch flight %d: %w", arrival.FlightID, err)
	}
	return nil
}

// Drain waits until every dispatched flight finished or ctx is done.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the workers and waits for them to exit
func (s *Service) Shutdown() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.workerWg.Wait()
}

// Fly runs the whole lifecycle of a flight. On failure the flight ends in
// the failed state and is purged from the resource manager.
func (s *Service) Fly(ctx context.Context, f *model.Flight) (err error) {
	ctx, span := tracing.StartSpan(ctx, "flight")
	span.WithFlight(f.ID, f.Class.String())
	defer func() { tracing.EndSpan(span, err) }()

	if err = s.airport.Register(f); err != nil {
		return err
	}
	s.stats.Update(progress.Delta{Created: 1, Class: f.Class})
	defer s.airport.Unregister(f)

	for _, phase := range model.Phases() {
		if err = s.phase(ctx, phase, f); err != nil {
			s.fail(f, phase, err)
			return err
		}
	}
	f.SetState(model.StateDone)
	s.stats.Update(progress.Delta{Succeeded: 1, Class: f.Class})
	summary := f.Summary()
	log.Infof("flight %d (%v) done in %v", f.ID, f.Class, summary.Lifetime.Round(time.Millisecond))
	event.Publish(ctx, s.events, s.events.Context(event.TypeCompleted, f.ID, "processor"),
		event.Flight{Class: summary.Class, State: string(summary.State), Warnings: summary.Warnings})
	return nil
}

func (s *Service) phase(ctx context.Context, phase model.Phase, f *model.Flight) error {
	f.SetState(phase.State())
	for attempt := 0; ; attempt++ {
		err := s.airport.RequestPhase(ctx, phase, f)
		if err == nil {
			break
		}
		if errors.Is(err, allocator.ErrRevoked) && attempt < s.config.PhaseRetries {
			log.Infof("flight %d retrying %v after reallocation", f.ID, phase)
			continue
		}
		return fmt.Errorf("%v: %w", phase, err)
	}
	if phase == model.PhaseTakeoff {
		f.SetState(model.StateTakingOff)
	}
	err := s.operate(ctx, phase, f)
	s.release(phase, f)
	if err != nil {
		return fmt.Errorf("%v: %w", phase, err)
	}
	return nil
}

func (s *Service) release(phase model.Phase, f *model.Flight) {
	if phase != model.PhaseDeplaning || s.config.ReleaseGap <= 0 {
		s.airport.ReleasePhase(phase, f)
		return
	}
	for i, kind := range model.ReleaseOrder(phase) {
		if i > 0 {
			time.Sleep(s.config.ReleaseGap)
		}
		s.airport.Release(kind, f)
	}
}

func (s *Service) fail(f *model.Flight, phase model.Phase, err error) {
	f.SetState(model.StateFailed)
	if errors.Is(err, allocator.ErrStarvation) {
		s.stats.Update(progress.Delta{Starved: 1, Class: f.Class})
		log.Warnf("flight %d (%v) failed during %v: %v", f.ID, f.Class, phase, err)
		return
	}
	s.stats.Update(progress.Delta{Interrupted: 1, Class: f.Class})
	log.Infof("flight %d (%v) interrupted during %v: %v", f.ID, f.Class, phase, err)
}

func (s *Service) sleep(ctx context.Context, phase model.Phase, _ *model.Flight) error {
	timer := time.NewTimer(s.config.Duration(phase))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
