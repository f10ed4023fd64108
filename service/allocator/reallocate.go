package allocator

import (
	"context"

	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/event"
)

// Reallocate strips every unit the flight holds and returns them to their
// pools, waking each pool's queue head. The flight is marked reallocated so
// its next requests carry the override priority, and a wait it is blocked in
// returns ErrRevoked. Only a flight holding a unit while waiting for another
// can be stripped, and only once; any other flight returns false.
func (s *Service) Reallocate(ctx context.Context, flightID int) bool {
	f, ok := s.Flight(flightID)
	if !ok || f.State().IsTerminal() {
		return false
	}
	released, ok := s.strip(f)
	if !ok {
		return false
	}
	s.stats.Update(progress.Delta{Reallocations: 1})
	log.Infof("flight %d reallocated, released %v", f.ID, released)
	payload := event.Flight{Class: f.Class.String(), State: string(f.State()), Warnings: f.Warnings(), Released: released}
	event.Publish(ctx, s.events, s.events.Context(event.TypeReallocated, f.ID, serviceName), payload)
	return true
}

func (s *Service) strip(f *model.Flight) ([]string, bool) {
	s.grantMu.Lock()
	defer s.grantMu.Unlock()
	if !s.matrix.Stuck(f.ID) || !f.Revoke() {
		return nil, false
	}
	var released []string
	for _, kind := range model.Kinds() {
		if !f.Drop(kind) {
			continue
		}
		s.matrix.SetAllocation(f.ID, kind, false)
		s.pools[kind].Release()
		s.queues[kind].SignalHead()
		released = append(released, kind.String())
	}
	return released, true
}
