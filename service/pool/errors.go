package pool

import "errors"

// ErrTimeout is returned when no unit became available before the deadline.
var ErrTimeout = errors.New("pool: acquire timed out")
