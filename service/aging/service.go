// Package aging periodically raises the priority of waiting requests so that
// every request eventually reaches the head of its queue.
package aging

import (
	"context"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/internal/clock"
	"github.com/viant/atc/service/queue"
)

var log = logging.Logger("atc/aging")

// Config represents aging configuration
type Config struct {
	// Period is how often queues are aged.
	Period time.Duration `json:"period" yaml:"period"`
	// Interval is the wait that earns one increment.
	Interval time.Duration `json:"interval" yaml:"interval"`
	// Increment is added to the priority per full interval waited.
	Increment int `json:"increment" yaml:"increment"`
}

// DefaultConfig returns the default aging configuration
func DefaultConfig() Config {
	return Config{
		Period:    time.Second,
		Interval:  5 * time.Second,
		Increment: 1,
	}
}

// Service ages a fixed set of queues
type Service struct {
	config     Config
	queues     []*queue.Queue
	shutdownCh chan struct{}
	once       sync.Once
}

// New creates an aging service
func New(config Config, queues ...*queue.Queue) (*Service, error) {
	if config.Period <= 0 || config.Interval <= 0 || config.Increment <= 0 {
		return nil, fmt.Errorf("invalid aging config: %+v", config)
	}
	return &Service{
		config:     config,
		queues:     queues,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Start runs the aging loop until ctx is done or Shutdown is called
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
			if aged := s.Tick(clock.Now()); aged > 0 {
				log.Debugf("aged %d requests", aged)
			}
		}
	}
}

// Tick ages every queue as of now and returns the number of requests whose
// priority changed.
func (s *Service) Tick(now time.Time) int {
	aged := 0
	for _, q := range s.queues {
		aged += q.Age(now, s.config.Interval, s.config.Increment)
	}
	return aged
}

// Shutdown stops the aging loop
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}
