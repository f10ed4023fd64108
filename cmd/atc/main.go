// Command atc runs an airport resource contention simulation.
//
// Usage:
//
//	atc [-config URL] [-http :8080] [-trace file] [-report URL] [runways gates towerOps total alert failure]
//
// Durations accept Go syntax ("90s"); plain integers are seconds.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/atc"
	"github.com/viant/atc/tracing"
)

var log = logging.Logger("atc/cmd")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("atc", flag.ContinueOnError)
	configURL := flags.String("config", "", "YAML config URL")
	httpAddr := flags.String("http", "", "serve the read-only API on this address")
	traceFile := flags.String("trace", "", "write spans to this file")
	reportURL := flags.String("report", "", "save the run report under this URL")
	logLevel := flags.String("log", "info", "log level")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := logging.SetLogLevelRegex("atc.*", *logLevel); err != nil {
		return fmt.Errorf("invalid log level %v: %w", *logLevel, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config := atc.DefaultConfig()
	if *configURL != "" {
		var err error
		if config, err = atc.LoadConfig(ctx, *configURL); err != nil {
			return err
		}
	}
	if err := applyPositional(config, flags.Args()); err != nil {
		return err
	}
	if *httpAddr != "" {
		config.HTTPAddr = *httpAddr
	}
	if *reportURL != "" {
		config.ReportURL = *reportURL
	}

	var options []atc.Option
	if *traceFile != "" {
		options = append(options, atc.WithTracing("atc", "0.1.0", *traceFile))
		defer func() {
			if err := tracing.Shutdown(context.Background()); err != nil {
				log.Warnf("failed to flush spans: %v", err)
			}
		}()
	}
	srv, err := atc.New(config, options...)
	if err != nil {
		return err
	}
	result, err := srv.Runtime().Run(ctx)
	if err != nil {
		return err
	}
	stats := result.Stats
	log.Infof("%v: %d flights, %d succeeded, %d starved, %d alerts, %d deadlocks suspected, %d reallocations, average wait %v",
		result.Status, stats.Created, stats.Succeeded, stats.Starved, stats.Alerts, stats.Deadlocks, stats.Reallocations,
		stats.AverageWait().Round(time.Millisecond))
	return nil
}

// applyPositional maps "runways gates towerOps total alert failure" onto
// config; any prefix of the list may be given.
func applyPositional(config *atc.Config, args []string) error {
	if len(args) > 6 {
		return fmt.Errorf("expected at most 6 arguments, got %d", len(args))
	}
	capacities := []*int{&config.Airport.Runways, &config.Airport.Gates, &config.Airport.TowerOps}
	durations := []*time.Duration{&config.Simulation.TotalTime, &config.Airport.AlertThreshold, &config.Airport.FailureThreshold}
	for i, arg := range args {
		if i < len(capacities) {
			value, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid capacity %q: %w", arg, err)
			}
			*capacities[i] = value
			continue
		}
		value, err := parseDuration(arg)
		if err != nil {
			return err
		}
		*durations[i-len(capacities)] = value
	}
	return config.Validate()
}

func parseDuration(arg string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(arg); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	value, err := time.ParseDuration(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", arg, err)
	}
	return value, nil
}
