package allocator

import (
	"fmt"
	"time"

	"github.com/viant/atc/model"
	"github.com/viant/atc/service/queue"
)

// Config represents resource manager configuration
type Config struct {
	Runways  int `json:"runways" yaml:"runways"`
	Gates    int `json:"gates" yaml:"gates"`
	TowerOps int `json:"towerOps" yaml:"towerOps"`
	// AlertThreshold raises the one-shot alert of a flight waiting that long
	// for a single resource.
	AlertThreshold time.Duration `json:"alertThreshold" yaml:"alertThreshold"`
	// FailureThreshold fails a flight waiting that long for a single resource.
	FailureThreshold time.Duration `json:"failureThreshold" yaml:"failureThreshold"`
	// QueueWaitTimeout bounds each wait for the head of a queue.
	QueueWaitTimeout time.Duration `json:"queueWaitTimeout" yaml:"queueWaitTimeout"`
	// AcquireTimeout bounds each pool acquire attempt.
	AcquireTimeout time.Duration `json:"acquireTimeout" yaml:"acquireTimeout"`
	// MaxWarnings caps the deadlock warnings of a flight.
	MaxWarnings int          `json:"maxWarnings" yaml:"maxWarnings"`
	Queue       queue.Config `json:"queue" yaml:"queue"`
}

// DefaultConfig returns the default resource manager configuration
func DefaultConfig() Config {
	return Config{
		Runways:          3,
		Gates:            5,
		TowerOps:         2,
		AlertThreshold:   30 * time.Second,
		FailureThreshold: 90 * time.Second,
		QueueWaitTimeout: 2 * time.Second,
		AcquireTimeout:   5 * time.Second,
		MaxWarnings:      3,
		Queue:            queue.DefaultConfig(),
	}
}

// Capacity returns the unit count per resource kind.
func (c Config) Capacity() [model.KindCount]int {
	var result [model.KindCount]int
	result[model.Runway] = c.Runways
	result[model.Gate] = c.Gates
	result[model.Tower] = c.TowerOps
	return result
}

// Validate checks the configuration.
func (c Config) Validate() error {
	for _, kind := range model.Kinds() {
		if c.Capacity()[kind] <= 0 {
			return fmt.Errorf("%v capacity must be > 0", kind)
		}
	}
	if c.AlertThreshold <= 0 || c.FailureThreshold <= 0 {
		return fmt.Errorf("alert and failure thresholds must be > 0")
	}
	if c.AlertThreshold > c.FailureThreshold {
		return fmt.Errorf("alert threshold %v exceeds failure threshold %v", c.AlertThreshold, c.FailureThreshold)
	}
	if c.QueueWaitTimeout <= 0 || c.AcquireTimeout <= 0 {
		return fmt.Errorf("queue wait and acquire timeouts must be > 0")
	}
	if c.MaxWarnings <= 0 {
		return fmt.Errorf("max warnings must be > 0")
	}
	return nil
}
