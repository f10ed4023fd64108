package event

import "github.com/viant/atc/service/messaging/memory"

type Option func(s *Service)

// WithQueueConfig sets the per-type memory queue configuration
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}

// WithRunID stamps every event context built by the service.
func WithRunID(runID string) Option {
	return func(s *Service) {
		s.runID = runID
	}
}
