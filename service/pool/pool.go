package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc/model"
	"golang.org/x/sync/semaphore"
)

var log = logging.Logger("atc/pool")

// Pool guards the units of one resource kind.
type Pool struct {
	kind      model.Kind
	capacity  int
	sem       *semaphore.Weighted
	mu        sync.Mutex
	available int
}

// New creates a pool with all units available.
func New(kind model.Kind, capacity int) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pool %v: capacity must be > 0, got %d", kind, capacity)
	}
	return &Pool{
		kind:      kind,
		capacity:  capacity,
		sem:       semaphore.NewWeighted(int64(capacity)),
		available: capacity,
	}, nil
}

// Kind returns the resource kind guarded by the pool.
func (p *Pool) Kind() model.Kind {
	return p.kind
}

// Capacity returns the configured number of units.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Available returns the number of units not handed out.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Acquire takes one unit, waiting until ctx is done. A deadline expiry is
// reported as ErrTimeout; other context errors are returned as is. The pool
// is left unchanged on failure.
func (p *Pool) Acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	p.mu.Lock()
	p.available--
	p.mu.Unlock()
	return nil
}

// Release returns one unit. Releasing into a full pool is ignored: callers
// must only release what they acquired.
func (p *Pool) Release() {
	p.mu.Lock()
	if p.available >= p.capacity {
		p.mu.Unlock()
		log.Warnf("%v pool: release ignored, all %d units already available", p.kind, p.capacity)
		return
	}
	p.available++
	p.mu.Unlock()
	p.sem.Release(1)
}
