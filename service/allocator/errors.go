package allocator

import (
	"errors"

	"github.com/viant/atc/service/queue"
)

var (
	// ErrStarvation is returned when a single resource wait reaches the
	// failure threshold. It is terminal for the flight.
	ErrStarvation = errors.New("allocator: starvation")

	// ErrAllocation is returned when a request cannot be queued.
	ErrAllocation = queue.ErrAllocation

	// ErrRevoked is returned when the flight's resources were reallocated
	// while it was waiting. The flight may retry the phase.
	ErrRevoked = errors.New("allocator: resources revoked")

	// ErrClosed is returned for requests made or pending when the airport
	// shut down.
	ErrClosed = errors.New("allocator: closed")
)
