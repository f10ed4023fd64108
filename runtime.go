package atc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/viant/atc/internal/clock"
	"github.com/viant/atc/metrics"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/aging"
	"github.com/viant/atc/service/allocator"
	"github.com/viant/atc/service/api"
	"github.com/viant/atc/service/dao"
	"github.com/viant/atc/service/dao/report"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/messaging/memory"
	"github.com/viant/atc/service/monitor"
	"github.com/viant/atc/service/processor"
	"golang.org/x/sync/errgroup"
)

// Runtime is a single simulation run.
type Runtime struct {
	config    *Config
	runID     string
	stats     *progress.Stats
	events    *event.Service
	airport   *allocator.Service
	metrics   *metrics.Collector
	aging     *aging.Service
	monitor   *monitor.Service
	processor *processor.Service
	arrivals  *memory.Queue[processor.Arrival]
	reports   dao.Service[string, report.Report]
	random    *rand.Rand
	started   atomic.Bool
}

// Run generates arrivals for the configured simulation time, waits for the
// active flights and stops the background tasks. Cancelling ctx interrupts
// the run; the returned report then has the interrupted status. A Runtime
// runs once.
func (r *Runtime) Run(ctx context.Context) (*report.Report, error) {
	if !r.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("run %v already started", r.runID)
	}
	startedAt := clock.Now()
	log.Infof("run %v started: %d runways, %d gates, %d tower ops", r.runID,
		r.config.Airport.Runways, r.config.Airport.Gates, r.config.Airport.TowerOps)

	group, groupCtx := errgroup.WithContext(ctx)
	if err := r.processor.Start(groupCtx); err != nil {
		return nil, err
	}
	group.Go(func() error { return quiet(r.aging.Start(groupCtx)) })
	group.Go(func() error { return quiet(r.monitor.Start(groupCtx)) })
	done := make(chan struct{})
	if r.config.HTTPAddr != "" {
		group.Go(func() error { return r.serve(groupCtx, done) })
	}
	group.Go(func() error {
		defer close(done)
		defer r.aging.Shutdown()
		defer r.monitor.Shutdown()
		defer r.processor.Shutdown()
		defer r.airport.Shutdown()
		if err := r.generate(groupCtx); err != nil {
			return quiet(err)
		}
		return quiet(r.processor.Drain(groupCtx))
	})
	err := group.Wait()
	r.arrivals.Close()
	r.events.Shutdown()
	abandoned := r.arrivals.DLQSize()

	status := report.StatusCompleted
	if ctx.Err() != nil || err != nil {
		status = report.StatusInterrupted
	}
	result := r.report(startedAt, status)
	result.Abandoned = abandoned
	snapshot := result.Stats
	log.Infof("run %v %v: created %d, succeeded %d, starved %d, interrupted %d, abandoned %d, alerts %d, deadlocks %d, reallocations %d, average wait %v",
		r.runID, status, snapshot.Created, snapshot.Succeeded, snapshot.Starved, snapshot.Interrupted, abandoned,
		snapshot.Alerts, snapshot.Deadlocks, snapshot.Reallocations, snapshot.AverageWait().Round(time.Millisecond))
	if r.reports != nil {
		if saveErr := r.reports.Save(context.WithoutCancel(ctx), result); saveErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to save report: %w", saveErr))
		}
	}
	return result, err
}

// generate dispatches arrivals at random gaps until the simulation time
// elapsed or MaxFlights were created.
func (r *Runtime) generate(ctx context.Context) error {
	sim := r.config.Simulation
	deadline := time.NewTimer(sim.TotalTime)
	defer deadline.Stop()
	for id := 1; id <= sim.MaxFlights; id++ {
		class := model.Domestic
		if r.random.Float64() < sim.InternationalRatio {
			class = model.International
		}
		if err := r.processor.Dispatch(ctx, processor.Arrival{FlightID: id, Class: class, CreatedAt: clock.Now()}); err != nil {
			return err
		}
		gap := sim.MinArrival + time.Duration(r.random.Int64N(int64(sim.MaxArrival-sim.MinArrival)+1))
		timer := time.NewTimer(gap)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-deadline.C:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
	return nil
}

func (r *Runtime) serve(ctx context.Context, done <-chan struct{}) error {
	server := &http.Server{Addr: r.config.HTTPAddr, Handler: r.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server on %v: %w", r.config.HTTPAddr, err)
	case <-done:
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (r *Runtime) report(startedAt time.Time, status string) *report.Report {
	return &report.Report{
		RunID:      r.runID,
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: clock.Now(),
		Capacity: map[string]int{
			model.Runway.String(): r.config.Airport.Runways,
			model.Gate.String():   r.config.Airport.Gates,
			model.Tower.String():  r.config.Airport.TowerOps,
		},
		AlertThreshold:   r.config.Airport.AlertThreshold,
		FailureThreshold: r.config.Airport.FailureThreshold,
		Stats:            r.stats.Snapshot(),
		Flights:          r.airport.Flights(),
	}
}

func (r *Runtime) observeWait(kind model.Kind, wait time.Duration) {
	if r.metrics != nil {
		r.metrics.ObserveWait(kind, wait)
	}
}

// RunID returns the run identifier.
func (r *Runtime) RunID() string {
	return r.runID
}

// Stats returns the current counters.
func (r *Runtime) Stats() progress.Snapshot {
	return r.stats.Snapshot()
}

// Flights returns a summary of every flight created so far.
func (r *Runtime) Flights() []model.Summary {
	return r.airport.Flights()
}

// Airport returns the resource manager.
func (r *Runtime) Airport() *allocator.Service {
	return r.airport
}

// Metrics returns the Prometheus collector of the run.
func (r *Runtime) Metrics() *metrics.Collector {
	return r.metrics
}

// Handler returns the read-only HTTP API of the run.
func (r *Runtime) Handler() http.Handler {
	return api.New(r.airport, r.stats, r.metrics.Handler())
}

func newRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func quiet(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
