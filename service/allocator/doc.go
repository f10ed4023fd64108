// Package allocator owns the airport's shared resources: one pool and one
// priority queue per resource kind, the allocation/request matrices and the
// deadlock watch-list. It is the only service allowed to hand units to a
// flight or take them back, either on release, on abort or when the deadlock
// monitor asks for a forced reallocation.
//
// Acquisition follows a bounded-wait admission protocol: a flight first waits
// to become the head of the kind's queue, then waits on the pool. Both waits
// are re-entered on a short timeout so the alert and starvation thresholds are
// evaluated against the total time spent on the request.
package allocator
