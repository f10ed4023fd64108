package atc

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/atc/service/aging"
	"github.com/viant/atc/service/allocator"
	"github.com/viant/atc/service/monitor"
	"github.com/viant/atc/service/processor"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the simulation configuration.
// Fields missing from a loaded document keep their DefaultConfig values.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Airport    allocator.Config `json:"airport" yaml:"airport"`
	Aging      aging.Config     `json:"aging" yaml:"aging"`
	Monitor    monitor.Config   `json:"monitor" yaml:"monitor"`
	Processor  processor.Config `json:"processor" yaml:"processor"`
	// ReportURL, when set, receives the run report as JSON.
	ReportURL string `json:"reportURL,omitempty" yaml:"reportURL,omitempty"`
	// HTTPAddr, when set, serves the read-only API.
	HTTPAddr string `json:"httpAddr,omitempty" yaml:"httpAddr,omitempty"`
}

type SimulationConfig struct {
	// TotalTime is how long new flights keep arriving.
	TotalTime time.Duration `json:"totalTime" yaml:"totalTime"`
	// MinArrival and MaxArrival bound the random gap between arrivals.
	MinArrival time.Duration `json:"minArrival" yaml:"minArrival"`
	MaxArrival time.Duration `json:"maxArrival" yaml:"maxArrival"`
	// MaxFlights caps the number of flights created in a run.
	MaxFlights int `json:"maxFlights" yaml:"maxFlights"`
	// InternationalRatio is the probability of an arrival being international.
	InternationalRatio float64 `json:"internationalRatio" yaml:"internationalRatio"`
	// Seed makes arrivals reproducible; zero picks a time based seed.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns a Config populated with the default value of every
// sub-service.
func DefaultConfig() *Config {
	ret := &Config{
		Simulation: SimulationConfig{
			TotalTime:          60 * time.Second,
			MinArrival:         time.Second,
			MaxArrival:         3 * time.Second,
			MaxFlights:         200,
			InternationalRatio: 0.5,
		},
		Airport:   allocator.DefaultConfig(),
		Aging:     aging.DefaultConfig(),
		Monitor:   monitor.DefaultConfig(),
		Processor: processor.DefaultConfig(),
	}
	ret.Monitor.MaxWarnings = ret.Airport.MaxWarnings
	return ret
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config was nil")
	}
	s := c.Simulation
	if s.TotalTime <= 0 {
		return fmt.Errorf("simulation.totalTime must be > 0")
	}
	if s.MinArrival <= 0 || s.MaxArrival < s.MinArrival {
		return fmt.Errorf("simulation arrival gap [%v, %v] is invalid", s.MinArrival, s.MaxArrival)
	}
	if s.MaxFlights <= 0 {
		return fmt.Errorf("simulation.maxFlights must be > 0")
	}
	if s.InternationalRatio < 0 || s.InternationalRatio > 1 {
		return fmt.Errorf("simulation.internationalRatio must be within [0, 1]")
	}
	if err := c.Airport.Validate(); err != nil {
		return fmt.Errorf("airport: %w", err)
	}
	if c.Aging.Period <= 0 || c.Aging.Interval <= 0 || c.Aging.Increment <= 0 {
		return fmt.Errorf("aging period, interval and increment must be > 0")
	}
	if c.Monitor.Period <= 0 || c.Monitor.MaxWarnings <= 0 {
		return fmt.Errorf("monitor period and maxWarnings must be > 0")
	}
	if c.Monitor.MaxWarnings > c.Airport.MaxWarnings {
		return fmt.Errorf("monitor.maxWarnings %d exceeds airport.maxWarnings %d", c.Monitor.MaxWarnings, c.Airport.MaxWarnings)
	}
	if c.Processor.Workers <= 0 {
		return fmt.Errorf("processor.workers must be > 0")
	}
	return nil
}

// LoadConfig reads a YAML (or JSON) document from URL over the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
