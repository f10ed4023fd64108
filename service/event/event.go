package event

import (
	"time"

	"github.com/viant/atc/internal/clock"
	"github.com/viant/atc/internal/idgen"
)

// Type identifies what happened.
type Type string

const (
	TypeAlert             Type = "alert"
	TypeStarvation        Type = "starvation"
	TypeDeadlockSuspected Type = "deadlockSuspected"
	TypeReallocated       Type = "reallocated"
	TypeCompleted         Type = "completed"
)

type Context struct {
	RunID    string `json:"runID,omitempty"`
	FlightID int    `json:"flightID,omitempty"`
	Type     Type   `json:"type"`
	Service  string `json:"service"`
}

type Event[T any] struct {
	ID        string                 `json:"id"`
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		ID:        idgen.New(),
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Flight is the payload of per-flight events.
type Flight struct {
	Class    string        `json:"class"`
	Kind     string        `json:"kind,omitempty"`
	State    string        `json:"state,omitempty"`
	Wait     time.Duration `json:"wait,omitempty"`
	Warnings int           `json:"warnings,omitempty"`
	Released []string      `json:"released,omitempty"`
}

// Deadlock is the payload of a suspected deadlock.
type Deadlock struct {
	Stuck     []int    `json:"stuck"`
	Exhausted []string `json:"exhausted"`
}
