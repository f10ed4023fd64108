// Package progress provides a lightweight tracker that keeps aggregated
// counters for a single simulation run.  Every component that receives the
// tracker can update the counters via the Delta helper without requiring a
// global registry.

package progress

import (
	"sync"
	"time"

	"github.com/viant/atc/model"
)

// Delta represents an incremental counter change emitted by the resource
// manager, the deadlock monitor or the flight lifecycle.
type Delta struct {
	Created       int
	Succeeded     int
	Starved       int
	Interrupted   int
	Alerts        int
	Deadlocks     int
	Reallocations int
	// Class attributes Succeeded/Starved/Interrupted to a flight class.
	Class model.Class
}

// ClassCounters keeps outcomes for one flight class.
type ClassCounters struct {
	Created   int `json:"created" yaml:"created"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Snapshot is an immutable copy of the counters.
type Snapshot struct {
	RunID         string                   `json:"runId" yaml:"runId"`
	StartedAt     time.Time                `json:"startedAt" yaml:"startedAt"`
	Created       int                      `json:"created" yaml:"created"`
	Succeeded     int                      `json:"succeeded" yaml:"succeeded"`
	Starved       int                      `json:"starved" yaml:"starved"`
	Interrupted   int                      `json:"interrupted" yaml:"interrupted"`
	Alerts        int                      `json:"alerts" yaml:"alerts"`
	Deadlocks     int                      `json:"deadlocks" yaml:"deadlocks"`
	Reallocations int                      `json:"reallocations" yaml:"reallocations"`
	Classes       map[string]ClassCounters `json:"classes" yaml:"classes"`
	WaitSamples   []time.Duration          `json:"waitSamples" yaml:"waitSamples"`
}

// Active returns flights neither completed nor failed.
func (s Snapshot) Active() int {
	return s.Created - s.Succeeded - s.Starved - s.Interrupted
}

// AverageWait returns the mean of the wait samples.
func (s Snapshot) AverageWait() time.Duration {
	if len(s.WaitSamples) == 0 {
		return 0
	}
	var total time.Duration
	for _, sample := range s.WaitSamples {
		total += sample
	}
	return total / time.Duration(len(s.WaitSamples))
}

// MaxWait returns the longest wait sample.
func (s Snapshot) MaxWait() time.Duration {
	var result time.Duration
	for _, sample := range s.WaitSamples {
		if sample > result {
			result = sample
		}
	}
	return result
}

// Stats keeps aggregated counters for a run.  It is safe for concurrent use.
type Stats struct {
	mu       sync.Mutex
	snapshot Snapshot
	classes  [2]ClassCounters
	onChange func(Snapshot)
}

// New creates a tracker for the run.
func New(runID string) *Stats {
	return &Stats{snapshot: Snapshot{RunID: runID, StartedAt: time.Now()}}
}

// Update applies the supplied delta.  If an onChange callback has been
// registered it is invoked with a copy of the counters outside the critical
// section.
func (s *Stats) Update(d Delta) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.snapshot.Created += d.Created
	s.snapshot.Succeeded += d.Succeeded
	s.snapshot.Starved += d.Starved
	s.snapshot.Interrupted += d.Interrupted
	s.snapshot.Alerts += d.Alerts
	s.snapshot.Deadlocks += d.Deadlocks
	s.snapshot.Reallocations += d.Reallocations
	if d.Class == model.Domestic || d.Class == model.International {
		counters := &s.classes[d.Class]
		counters.Created += d.Created
		counters.Succeeded += d.Succeeded
		counters.Failed += d.Starved + d.Interrupted
	}
	cb := s.onChange
	var snapshot Snapshot
	if cb != nil {
		snapshot = s.copy()
	}
	s.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// AddWait records how long a flight waited for a single resource.
func (s *Stats) AddWait(wait time.Duration) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.snapshot.WaitSamples = append(s.snapshot.WaitSamples, wait)
	s.mu.Unlock()
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (s *Stats) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copy()
}

// Counters returns the run counters without the wait samples or the per-class
// breakdown, for frequent readers that need totals only.
func (s *Stats) Counters() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.snapshot
	result.WaitSamples = nil
	return result
}

// OnChange registers a callback that is invoked after every Update.  Passing
// nil disables the callback.
func (s *Stats) OnChange(cb func(Snapshot)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onChange = cb
	s.mu.Unlock()
}

func (s *Stats) copy() Snapshot {
	result := s.snapshot
	result.WaitSamples = append([]time.Duration(nil), s.snapshot.WaitSamples...)
	result.Classes = map[string]ClassCounters{
		model.Domestic.String():      s.classes[model.Domestic],
		model.International.String(): s.classes[model.International],
	}
	return result
}
