// Package progress defines the aggregated counters of a simulation run
// (flights created, completed, starved, alerts, deadlock suspicions,
// reallocations and wait-time samples).  The tracker is the read-only source
// for reporting collaborators such as the HTTP API, the metrics collector and
// the report DAO.
package progress
