package queue

import (
	"time"

	"github.com/viant/atc/model"
)

// Request is a pending claim for one unit of a resource kind.
type Request struct {
	FlightID  int
	Kind      model.Kind
	ArrivedAt time.Time

	priority int
	// credited counts aging intervals already added to priority.
	credited int
	seq      uint64
	index    int
	wake     chan struct{}
}

// Wake returns the channel signalled when the request may have become the
// head of its queue or when a unit of its resource was returned.
func (r *Request) Wake() <-chan struct{} {
	return r.wake
}

func (r *Request) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Entry is a read-only view of a queued request.
type Entry struct {
	FlightID  int       `json:"flightId"`
	Priority  int       `json:"priority"`
	ArrivedAt time.Time `json:"arrivedAt"`
}

type requestHeap []*Request

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *requestHeap) Push(x interface{}) {
	item := x.(*Request)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}
