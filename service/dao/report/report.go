// Package report defines the persisted summary of a simulation run.
package report

import (
	"time"

	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/dao"
	"github.com/viant/atc/service/dao/criteria"
	"github.com/viant/atc/service/dao/store"
)

const (
	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
)

// Report is the outcome of one run.
type Report struct {
	RunID            string            `json:"runId" yaml:"runId"`
	Status           string            `json:"status" yaml:"status"`
	StartedAt        time.Time         `json:"startedAt" yaml:"startedAt"`
	FinishedAt       time.Time         `json:"finishedAt" yaml:"finishedAt"`
	Capacity         map[string]int    `json:"capacity" yaml:"capacity"`
	AlertThreshold   time.Duration     `json:"alertThreshold" yaml:"alertThreshold"`
	FailureThreshold time.Duration     `json:"failureThreshold" yaml:"failureThreshold"`
	Stats            progress.Snapshot `json:"stats" yaml:"stats"`
	Flights          []model.Summary   `json:"flights" yaml:"flights"`
	// Abandoned counts arrivals dispatched but never started before shutdown.
	Abandoned        int               `json:"abandoned" yaml:"abandoned"`
}

// Matches applies RunID and Status parameters.
func (r *Report) Matches(parameters []*dao.Parameter) bool {
	return criteria.Match("RunID", r.RunID, parameters) && criteria.Match("Status", r.Status, parameters)
}

// NewMemory returns an in-memory report store.
func NewMemory() *store.MemoryStore[string, Report] {
	return store.NewMemoryStore[string, Report](
		func(r *Report) string { return r.RunID },
		func(r *Report, parameters []*dao.Parameter) bool { return r.Matches(parameters) },
	)
}
