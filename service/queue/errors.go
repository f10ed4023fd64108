package queue

import "errors"

var (
	// ErrAllocation is returned when the queue cannot hold another request.
	ErrAllocation = errors.New("queue: request allocation exhausted")

	// ErrDuplicate is returned when a flight already waits in the queue.
	ErrDuplicate = errors.New("queue: flight already has an outstanding request")
)
