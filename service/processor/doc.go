// Package processor drives flights through landing, deplaning and takeoff.
// Arrivals are consumed from a dispatch queue by a fixed pool of workers, one
// flight per worker at a time, so the worker count caps the number of
// concurrently active flights.
package processor
