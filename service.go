package atc

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/internal/idgen"
	"github.com/viant/atc/metrics"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/aging"
	"github.com/viant/atc/service/allocator"
	"github.com/viant/atc/service/dao"
	"github.com/viant/atc/service/dao/report"
	rfs "github.com/viant/atc/service/dao/report/fs"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/messaging/memory"
	"github.com/viant/atc/service/monitor"
	"github.com/viant/atc/service/processor"
)

var (
	log       = logging.Logger("atc")
	eventsLog = logging.Logger("atc/events")
)

// Service wires every component of a simulation run.
type Service struct {
	config        *Config
	runID         string
	operate       processor.OperateFunc
	eventListener func(*event.Event[any])
	reportStore   dao.Service[string, report.Report]
	runtime       *Runtime
}

// New validates config and builds the components of a run. A nil config
// uses DefaultConfig.
func New(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ret := &Service{config: config}
	for _, option := range options {
		option(ret)
	}
	if ret.runID == "" {
		ret.runID = idgen.NewRunID()
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	r := &Runtime{
		config: s.config,
		runID:  s.runID,
		stats:  progress.New(s.runID),
		events: event.New(event.WithRunID(s.runID)),
		random: newRandom(s.config.Simulation.Seed),
	}
	listener := s.eventListener
	if listener == nil {
		listener = logEvent
	}
	r.events.SetListener(listener)

	var err error
	if r.airport, err = allocator.New(s.config.Airport,
		allocator.WithStats(r.stats),
		allocator.WithEvents(r.events),
		allocator.WithWaitObserver(r.observeWait)); err != nil {
		return err
	}
	r.metrics = metrics.New(r.stats, r.airport)
	if r.aging, err = aging.New(s.config.Aging, r.airport.Queues()...); err != nil {
		return err
	}
	if r.monitor, err = monitor.New(s.config.Monitor, r.airport, r.airport,
		monitor.WithStats(r.stats), monitor.WithEvents(r.events)); err != nil {
		return err
	}

	// arrivals never started are dead-lettered, not redelivered
	r.arrivals = memory.NewQueue[processor.Arrival](memory.Config{
		DeadLetter: true,
		Buffer:     s.config.Simulation.MaxFlights,
	})
	processorOptions := []processor.Option{
		processor.WithConfig(s.config.Processor),
		processor.WithAirport(r.airport),
		processor.WithQueue(r.arrivals),
		processor.WithStats(r.stats),
		processor.WithEvents(r.events),
	}
	if s.operate != nil {
		processorOptions = append(processorOptions, processor.WithOperate(s.operate))
	}
	if r.processor, err = processor.New(processorOptions...); err != nil {
		return err
	}

	r.reports = s.reportStore
	if r.reports == nil && s.config.ReportURL != "" {
		if r.reports, err = rfs.New(context.Background(), s.config.ReportURL); err != nil {
			return err
		}
	}
	s.runtime = r
	return nil
}

// Runtime returns the run built by New.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the validated configuration.
func (s *Service) Config() *Config {
	return s.config
}

func logEvent(e *event.Event[any]) {
	if e == nil || e.Context == nil {
		return
	}
	switch e.Context.Type {
	case event.TypeAlert, event.TypeStarvation, event.TypeDeadlockSuspected:
		eventsLog.Warnw(string(e.Context.Type), "flight", e.Context.FlightID, "data", e.Data)
	default:
		eventsLog.Debugw(string(e.Context.Type), "flight", e.Context.FlightID, "data", e.Data)
	}
}
