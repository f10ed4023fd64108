package detector

import (
	"sort"
	"sync"

	"github.com/viant/atc/model"
)

type row struct {
	allocation [model.KindCount]bool
	request    [model.KindCount]bool
}

// Matrix holds allocation[flight][kind] and request[flight][kind] together
// with a mirrored count of available units per kind.
type Matrix struct {
	mu        sync.Mutex
	capacity  [model.KindCount]int
	available [model.KindCount]int
	rows      map[int]*row
}

// NewMatrix creates a matrix for the supplied capacities, indexed by kind.
func NewMatrix(capacity [model.KindCount]int) *Matrix {
	return &Matrix{
		capacity:  capacity,
		available: capacity,
		rows:      make(map[int]*row),
	}
}

// AddRow creates an empty row for the flight.
func (m *Matrix) AddRow(flightID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[flightID]; !ok {
		m.rows[flightID] = &row{}
	}
}

// RemoveRow drops the flight's row. Allocations still recorded in the row are
// credited back to the mirrored availability.
func (m *Matrix) RemoveRow(flightID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[flightID]
	if !ok {
		return
	}
	for kind, allocated := range r.allocation {
		if allocated {
			m.available[kind]++
		}
	}
	delete(m.rows, flightID)
}

// HasRow reports whether the flight has a row.
func (m *Matrix) HasRow(flightID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[flightID]
	return ok
}

// SetRequest records whether the flight is waiting for kind.
func (m *Matrix) SetRequest(flightID int, kind model.Kind, waiting bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rowOf(flightID)
	r.request[kind] = waiting
}

// SetAllocation records whether the flight holds kind and adjusts the
// mirrored availability when the bit changes.
func (m *Matrix) SetAllocation(flightID int, kind model.Kind, allocated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rowOf(flightID)
	if r.allocation[kind] == allocated {
		return
	}
	r.allocation[kind] = allocated
	if allocated {
		m.available[kind]--
	} else {
		m.available[kind]++
	}
}

// Grant clears the request bit and sets the allocation bit in one step.
func (m *Matrix) Grant(flightID int, kind model.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rowOf(flightID)
	r.request[kind] = false
	if !r.allocation[kind] {
		r.allocation[kind] = true
		m.available[kind]--
	}
}

// Allocated reports allocation[flight][kind].
func (m *Matrix) Allocated(flightID int, kind model.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[flightID]
	return ok && r.allocation[kind]
}

// Requested reports request[flight][kind].
func (m *Matrix) Requested(flightID int, kind model.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[flightID]
	return ok && r.request[kind]
}

// Available returns the mirrored number of free units of kind.
func (m *Matrix) Available(kind model.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available[kind]
}

// Stuck reports whether the flight holds at least one resource while waiting
// for another.
func (m *Matrix) Stuck(flightID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[flightID]
	return ok && r.stuck()
}

// Detect evaluates the deadlock heuristic: at least two flights hold
// something while waiting for something else, and at least two resource
// kinds are exhausted.
func (m *Matrix) Detect() Detection {
	m.mu.Lock()
	defer m.mu.Unlock()
	var detection Detection
	for flightID, r := range m.rows {
		if r.stuck() {
			detection.Stuck = append(detection.Stuck, flightID)
		}
	}
	sort.Ints(detection.Stuck)
	for _, kind := range model.Kinds() {
		if m.available[kind] <= 0 {
			detection.Exhausted = append(detection.Exhausted, kind)
		}
	}
	detection.Suspected = len(detection.Stuck) >= 2 && len(detection.Exhausted) >= 2
	return detection
}

func (m *Matrix) rowOf(flightID int) *row {
	r, ok := m.rows[flightID]
	if !ok {
		r = &row{}
		m.rows[flightID] = r
	}
	return r
}

func (r *row) stuck() bool {
	holds, wants := false, false
	for i := 0; i < model.KindCount; i++ {
		holds = holds || r.allocation[i]
		wants = wants || r.request[i]
	}
	return holds && wants
}

// Detection is the outcome of one heuristic evaluation.
type Detection struct {
	Suspected bool         `json:"suspected"`
	Stuck     []int        `json:"stuck"`
	Exhausted []model.Kind `json:"exhausted"`
}
