package queue

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/viant/atc/internal/clock"
	"github.com/viant/atc/model"
)

// Config represents queue configuration
type Config struct {
	// DomesticPriority is the initial priority of a domestic request.
	DomesticPriority int `json:"domesticPriority" yaml:"domesticPriority"`
	// InternationalPriority is the initial priority of an international request.
	InternationalPriority int `json:"internationalPriority" yaml:"internationalPriority"`
	// OverridePriority is granted to a flight whose resources were reallocated.
	OverridePriority int `json:"overridePriority" yaml:"overridePriority"`
	// Limit caps the number of queued requests; zero means unlimited.
	Limit int `json:"limit" yaml:"limit"`
}

// DefaultConfig returns the default queue configuration
func DefaultConfig() Config {
	return Config{
		DomesticPriority:      8,
		InternationalPriority: 13,
		OverridePriority:      50,
		Limit:                 200,
	}
}

// Queue is a priority wait queue for a single resource kind. It is safe for
// concurrent use; every operation holds the queue's own lock only.
type Queue struct {
	kind     model.Kind
	config   Config
	mu       sync.Mutex
	items    requestHeap
	byFlight map[int]*Request
	seq      uint64
}

// New creates an empty queue for kind
func New(kind model.Kind, config Config) *Queue {
	return &Queue{
		kind:     kind,
		config:   config,
		byFlight: make(map[int]*Request),
	}
}

// Kind returns the resource kind served by the queue.
func (q *Queue) Kind() model.Kind {
	return q.kind
}

// InitialPriority returns the priority a new request starts with.
func (q *Queue) InitialPriority(class model.Class, reallocated bool) int {
	switch {
	case reallocated:
		return q.config.OverridePriority
	case class == model.International:
		return q.config.InternationalPriority
	default:
		return q.config.DomesticPriority
	}
}

// Enqueue adds a request for the flight. A new request is placed after every
// request with the same priority.
func (q *Queue) Enqueue(flightID int, class model.Class, reallocated bool) (*Request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.byFlight[flightID]; ok {
		return nil, fmt.Errorf("%w: flight %d, %v", ErrDuplicate, flightID, q.kind)
	}
	if q.config.Limit > 0 && len(q.items) >= q.config.Limit {
		return nil, fmt.Errorf("%w: %v queue holds %d requests", ErrAllocation, q.kind, len(q.items))
	}
	q.seq++
	request := &Request{
		FlightID:  flightID,
		Kind:      q.kind,
		ArrivedAt: clock.Now(),
		priority:  q.InitialPriority(class, reallocated),
		seq:       q.seq,
		wake:      make(chan struct{}, 1),
	}
	previous := q.head()
	heap.Push(&q.items, request)
	q.byFlight[flightID] = request
	q.signalIfChanged(previous)
	return request, nil
}

// IsHead reports whether the flight's request is next to be served.
func (q *Queue) IsHead(flightID int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	head := q.head()
	return head != nil && head.FlightID == flightID
}

// Remove drops the flight's request, if any, and wakes the new head.
func (q *Queue) Remove(flightID int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	request, ok := q.byFlight[flightID]
	if !ok {
		return false
	}
	previous := q.head()
	heap.Remove(&q.items, request.index)
	delete(q.byFlight, flightID)
	q.signalIfChanged(previous)
	return true
}

// Reorder restores priority order after priorities were mutated.
func (q *Queue) Reorder() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reorder()
}

func (q *Queue) reorder() {
	previous := q.head()
	heap.Init(&q.items)
	q.signalIfChanged(previous)
}

// Age raises the priority of every request by increment for each full
// interval waited since it arrived that has not been credited yet, then
// reorders the queue. Priorities never decrease. It returns the number of
// requests whose priority changed.
func (q *Queue) Age(now time.Time, interval time.Duration, increment int) int {
	if interval <= 0 || increment <= 0 {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	aged := 0
	for _, request := range q.items {
		waited := now.Sub(request.ArrivedAt)
		if waited <= 0 {
			continue
		}
		intervals := int(waited / interval)
		if intervals <= request.credited {
			continue
		}
		request.priority += (intervals - request.credited) * increment
		request.credited = intervals
		aged++
	}
	if aged > 0 {
		q.reorder()
	}
	return aged
}

// SignalHead wakes the current head, typically after a unit was returned to
// the pool.
func (q *Queue) SignalHead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if head := q.head(); head != nil {
		head.signal()
	}
}

// Priority returns the current priority of the flight's request.
func (q *Queue) Priority(flightID int) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	request, ok := q.byFlight[flightID]
	if !ok {
		return 0, false
	}
	return request.priority, true
}

// Contains reports whether the flight has a request in the queue.
func (q *Queue) Contains(flightID int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.byFlight[flightID]
	return ok
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Entries returns the queued requests in service order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	ordered := make([]*Request, len(q.items))
	copy(ordered, q.items)
	result := make([]Entry, 0, len(ordered))
	sort.Slice(ordered, func(i, j int) bool {
		return requestHeap(ordered).Less(i, j)
	})
	for _, request := range ordered {
		result = append(result, Entry{FlightID: request.FlightID, Priority: request.priority, ArrivedAt: request.ArrivedAt})
	}
	q.mu.Unlock()
	return result
}

// Clear drops every request, waking each so that waiters re-check their state.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, request := range q.items {
		request.index = -1
		request.signal()
	}
	q.items = nil
	q.byFlight = make(map[int]*Request)
}

func (q *Queue) head() *Request {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *Queue) signalIfChanged(previous *Request) {
	if head := q.head(); head != nil && head != previous {
		head.signal()
	}
}
