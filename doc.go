// Package atc simulates contention for runways, gates and control tower
// slots among concurrently active flights.
//
// A Service wires the resource manager, the aging scheduler, the deadlock
// monitor and the flight lifecycle workers from a Config. Its Runtime
// generates arrivals for the configured simulation time, waits for every
// active flight to finish and returns a report of the run.
//
//	srv, err := atc.New(atc.DefaultConfig())
//	if err != nil { ... }
//	result, err := srv.Runtime().Run(ctx)
package atc
