package detector

import (
	"sort"
	"sync"
)

type watchEntry struct {
	flightID int
	warnings int
	order    uint64
}

// Candidate is a flight eligible for forced reallocation.
type Candidate struct {
	FlightID int
	Warnings int
}

// WatchList tracks deadlock warnings per flight. Flights are registered once
// when they first request a resource and dropped when their lifecycle ends.
type WatchList struct {
	mu      sync.Mutex
	limit   int
	seq     uint64
	entries map[int]*watchEntry
}

// NewWatchList creates a watch-list whose counters are capped at limit.
func NewWatchList(limit int) *WatchList {
	return &WatchList{limit: limit, entries: make(map[int]*watchEntry)}
}

// Watch registers the flight. Registering twice has no effect.
func (w *WatchList) Watch(flightID int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[flightID]; ok {
		return
	}
	w.seq++
	w.entries[flightID] = &watchEntry{flightID: flightID, order: w.seq}
}

// Unwatch drops the flight.
func (w *WatchList) Unwatch(flightID int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, flightID)
}

// Watched reports whether the flight is registered.
func (w *WatchList) Watched(flightID int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[flightID]
	return ok
}

// Warn increments the flight's counter up to the limit and returns the new
// value. Unregistered flights are ignored and report zero.
func (w *WatchList) Warn(flightID int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.entries[flightID]
	if !ok {
		return 0
	}
	if w.limit <= 0 || entry.warnings < w.limit {
		entry.warnings++
	}
	return entry.warnings
}

// Warnings returns the flight's counter.
func (w *WatchList) Warnings(flightID int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if entry, ok := w.entries[flightID]; ok {
		return entry.warnings
	}
	return 0
}

// Len returns the number of watched flights.
func (w *WatchList) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Candidates returns flights whose counter reached threshold, ordered by
// warnings (highest first) and then by registration order.
func (w *WatchList) Candidates(threshold int) []Candidate {
	w.mu.Lock()
	defer w.mu.Unlock()
	var selected []*watchEntry
	for _, entry := range w.entries {
		if entry.warnings >= threshold {
			selected = append(selected, entry)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].warnings != selected[j].warnings {
			return selected[i].warnings > selected[j].warnings
		}
		return selected[i].order < selected[j].order
	})
	result := make([]Candidate, len(selected))
	for i, entry := range selected {
		result[i] = Candidate{FlightID: entry.flightID, Warnings: entry.warnings}
	}
	return result
}
