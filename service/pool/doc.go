// Package pool provides the counting guard for a single resource kind. Units
// are handed out with a bounded wait and returned by whoever holds them,
// including the deadlock reallocator acting on a stuck flight's behalf.
package pool
