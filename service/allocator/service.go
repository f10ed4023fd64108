package allocator

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/detector"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/pool"
	"github.com/viant/atc/service/queue"
)

var log = logging.Logger("atc/allocator")

const serviceName = "allocator"

// Service is the airport resource manager. A single value is shared by the
// flight lifecycles and the background tasks; it holds no global state.
type Service struct {
	config    Config
	pools     [model.KindCount]*pool.Pool
	queues    [model.KindCount]*queue.Queue
	matrix    *detector.Matrix
	watchList *detector.WatchList
	stats     *progress.Stats
	events    *event.Service
	onWait    func(kind model.Kind, wait time.Duration)

	// grantMu orders a grant against a reallocation of the same flight.
	grantMu sync.Mutex
	closed  atomic.Bool
	mu      sync.RWMutex
	flights map[int]*model.Flight
}

// New creates a resource manager with every unit available.
func New(config Config, options ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid allocator config: %w", err)
	}
	ret := &Service{
		config:    config,
		matrix:    detector.NewMatrix(config.Capacity()),
		watchList: detector.NewWatchList(config.MaxWarnings),
		flights:   make(map[int]*model.Flight),
	}
	capacity := config.Capacity()
	for _, kind := range model.Kinds() {
		p, err := pool.New(kind, capacity[kind])
		if err != nil {
			return nil, err
		}
		ret.pools[kind] = p
		ret.queues[kind] = queue.New(kind, config.Queue)
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Config returns the manager configuration.
func (s *Service) Config() Config {
	return s.config
}

// Register adds the flight to the registry and creates its matrix row.
func (s *Service) Register(f *model.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flights[f.ID]; ok {
		return fmt.Errorf("flight %d already registered", f.ID)
	}
	s.flights[f.ID] = f
	s.matrix.AddRow(f.ID)
	return nil
}

// Unregister purges the flight from every queue, returns whatever it still
// holds and drops its matrix row and watch-list entry. The flight stays in the
// registry for reporting.
func (s *Service) Unregister(f *model.Flight) {
	for _, kind := range model.Kinds() {
		s.queues[kind].Remove(f.ID)
		s.Release(kind, f)
	}
	s.matrix.RemoveRow(f.ID)
	s.watchList.Unwatch(f.ID)
}

// Shutdown tears the queues down. Pending requests fail with ErrClosed, as
// does every later request; releases keep working so holders can hand their
// units back.
func (s *Service) Shutdown() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	pending := 0
	for _, q := range s.queues {
		pending += q.Len()
		q.Clear()
	}
	log.Infof("airport closed, %d pending requests dropped", pending)
}

// Flight returns a registered flight.
func (s *Service) Flight(flightID int) (*model.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[flightID]
	return f, ok
}

// Flights returns a summary of every registered flight ordered by id.
func (s *Service) Flights() []model.Summary {
	s.mu.RLock()
	result := make([]model.Summary, 0, len(s.flights))
	for _, f := range s.flights {
		result = append(result, f.Summary())
	}
	s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Pool returns the pool of kind.
func (s *Service) Pool(kind model.Kind) *pool.Pool {
	return s.pools[kind]
}

// Queue returns the wait queue of kind.
func (s *Service) Queue(kind model.Kind) *queue.Queue {
	return s.queues[kind]
}

// Queues returns every wait queue indexed by kind.
func (s *Service) Queues() []*queue.Queue {
	return s.queues[:]
}

// Matrix returns the allocation/request matrices.
func (s *Service) Matrix() *detector.Matrix {
	return s.matrix
}

// WatchList returns the deadlock watch-list.
func (s *Service) WatchList() *detector.WatchList {
	return s.watchList
}

// Detect evaluates the deadlock heuristic over the current matrices.
func (s *Service) Detect() detector.Detection {
	return s.matrix.Detect()
}

// Available returns the free units of kind.
func (s *Service) Available(kind model.Kind) int {
	return s.pools[kind].Available()
}

func (s *Service) flightEvent(f *model.Flight, kind model.Kind, wait time.Duration) event.Flight {
	return event.Flight{Class: f.Class.String(), Kind: kind.String(), State: string(f.State()), Wait: wait, Warnings: f.Warnings()}
}
