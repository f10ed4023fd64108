package allocator

import (
	"context"

	"github.com/viant/atc/model"
	"github.com/viant/atc/tracing"
)

// RequestPhase acquires every resource the phase needs, in the order the
// flight's class prescribes. When a step fails the resources taken by earlier
// steps are released in reverse order before the error is returned.
func (s *Service) RequestPhase(ctx context.Context, phase model.Phase, f *model.Flight) (err error) {
	ctx, span := tracing.StartSpan(ctx, "phase."+phase.String())
	span.WithFlight(f.ID, f.Class.String())
	defer func() { tracing.EndSpan(span, err) }()

	revoked := f.Revoked()
	order := model.AcquisitionOrder(phase, f.Class)
	acquired := make([]model.Kind, 0, len(order))
	defer func() {
		if err == nil {
			return
		}
		for i := len(acquired) - 1; i >= 0; i-- {
			s.Release(acquired[i], f)
		}
	}()
	for _, kind := range order {
		if err = s.request(ctx, kind, f, revoked); err != nil {
			return err
		}
		acquired = append(acquired, kind)
	}
	select {
	case <-revoked:
		err = ErrRevoked
	default:
	}
	return err
}

// ReleasePhase hands the phase's resources back.
func (s *Service) ReleasePhase(phase model.Phase, f *model.Flight) {
	for _, kind := range model.ReleaseOrder(phase) {
		s.Release(kind, f)
	}
}

// Release returns the flight's unit of kind to its pool and wakes the head of
// the kind's queue. Releasing a unit the flight does not hold, for instance
// one already taken back by the reallocator, has no effect.
func (s *Service) Release(kind model.Kind, f *model.Flight) {
	if !f.Drop(kind) {
		return
	}
	s.matrix.SetAllocation(f.ID, kind, false)
	s.pools[kind].Release()
	s.queues[kind].SignalHead()
}
