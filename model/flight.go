package model

import (
	"sync"
	"time"
)

// Flight is one client competing for airport resources. The identity fields
// are immutable; the status fields are guarded so the resource manager can
// flag a flight (alert, reallocation) while its lifecycle goroutine runs.
type Flight struct {
	ID        int       `json:"id"`
	Class     Class     `json:"class"`
	CreatedAt time.Time `json:"createdAt"`

	mu          sync.RWMutex
	state       State
	alert       bool
	reallocated bool
	warnings    int
	held        [KindCount]bool
	revoked     chan struct{}
	finishedAt  time.Time
}

// NewFlight creates a flight in the flying state.
func NewFlight(id int, class Class, createdAt time.Time) *Flight {
	return &Flight{
		ID:        id,
		Class:     class,
		CreatedAt: createdAt,
		state:     StateFlying,
		revoked:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (f *Flight) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// SetState moves the flight to the supplied state. Terminal states are final.
func (f *Flight) SetState(state State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.IsTerminal() {
		return false
	}
	f.state = state
	if state.IsTerminal() {
		f.finishedAt = time.Now()
	}
	return true
}

// RaiseAlert sets the alert flag. It returns true only for the call that
// actually raised it.
func (f *Flight) RaiseAlert() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alert {
		return false
	}
	f.alert = true
	return true
}

// Alert reports whether the alert flag was raised.
func (f *Flight) Alert() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.alert
}

// Reallocated reports whether the flight had its resources revoked.
func (f *Flight) Reallocated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.reallocated
}

// Warnings returns the deadlock warning count last recorded for the flight.
func (f *Flight) Warnings() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.warnings
}

// SetWarnings records the deadlock warning count.
func (f *Flight) SetWarnings(count int) {
	f.mu.Lock()
	f.warnings = count
	f.mu.Unlock()
}

// Hold marks kind as allocated to the flight.
func (f *Flight) Hold(kind Kind) {
	f.mu.Lock()
	f.held[kind] = true
	f.mu.Unlock()
}

// Drop clears the allocation bit for kind and reports whether it was set.
// Exactly one of several concurrent callers observes true, which makes it the
// only one allowed to return the unit to its pool.
func (f *Flight) Drop(kind Kind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.held[kind] {
		return false
	}
	f.held[kind] = false
	return true
}

// Holds reports whether kind is allocated to the flight.
func (f *Flight) Holds(kind Kind) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.held[kind]
}

// Held returns the allocated kinds in index order.
func (f *Flight) Held() []Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []Kind
	for i, ok := range f.held {
		if ok {
			result = append(result, Kind(i))
		}
	}
	return result
}

// Revoked returns a channel closed by the next revocation. Callers capture it
// before waiting and test it afterwards to learn whether resources were taken
// away in the meantime.
func (f *Flight) Revoked() <-chan struct{} {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.revoked
}

// Revoke marks the flight as reallocated and wakes anything waiting on the
// current Revoked channel. It returns false when the flight was already
// reallocated once.
func (f *Flight) Revoke() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reallocated {
		return false
	}
	f.reallocated = true
	close(f.revoked)
	f.revoked = make(chan struct{})
	return true
}

// Summary returns a point-in-time copy of the flight suitable for reporting.
func (f *Flight) Summary() Summary {
	f.mu.RLock()
	defer f.mu.RUnlock()
	end := f.finishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return Summary{
		ID:          f.ID,
		Class:       f.Class.String(),
		State:       f.state,
		Alert:       f.alert,
		Reallocated: f.reallocated,
		Warnings:    f.warnings,
		Lifetime:    end.Sub(f.CreatedAt),
	}
}

// Summary is a read-only view of a flight.
type Summary struct {
	ID          int           `json:"id" yaml:"id"`
	Class       string        `json:"class" yaml:"class"`
	State       State         `json:"state" yaml:"state"`
	Alert       bool          `json:"alert" yaml:"alert"`
	Reallocated bool          `json:"reallocated" yaml:"reallocated"`
	Warnings    int           `json:"warnings" yaml:"warnings"`
	Lifetime    time.Duration `json:"lifetime" yaml:"lifetime"`
}
