// Package dao defines the persistence contract used for run reports.
package dao

import (
	"context"
)

// Service stores records of type T under keys of type K. Load and Delete
// return ErrNotFound for a missing key.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
