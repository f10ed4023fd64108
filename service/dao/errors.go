package dao

import "errors"

var (
	// ErrNotFound is returned when no record exists under the key.
	ErrNotFound = errors.New("dao: not found")
	// ErrInvalidID is returned for an empty key, such as a report without a run id.
	ErrInvalidID = errors.New("dao: invalid id")
	// ErrNilEntity is returned when saving a nil record.
	ErrNilEntity = errors.New("dao: nil entity")
)
