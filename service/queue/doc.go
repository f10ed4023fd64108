// Package queue implements the per-resource-kind priority wait queue. Requests
// are kept in non-increasing priority order with ties served in arrival order;
// the head of the queue is the only request allowed to compete for the
// resource pool.
package queue
