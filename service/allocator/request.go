package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/atc/internal/clock"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/pool"
	"github.com/viant/atc/tracing"
)

// Request acquires one unit of kind for the flight. It returns nil once the
// unit is allocated, ErrStarvation when the wait reached the failure
// threshold, ErrRevoked when the flight's resources were reallocated in the
// meantime, or ctx.Err() on shutdown. A failed request leaves no queue entry
// and no allocation behind.
func (s *Service) Request(ctx context.Context, kind model.Kind, f *model.Flight) error {
	return s.request(ctx, kind, f, f.Revoked())
}

func (s *Service) request(ctx context.Context, kind model.Kind, f *model.Flight, revoked <-chan struct{}) (err error) {
	ctx, span := tracing.StartSpan(ctx, "request."+kind.String())
	span.WithFlight(f.ID, f.Class.String())
	defer func() { tracing.EndSpan(span, err) }()

	if s.closed.Load() {
		return ErrClosed
	}
	q := s.queues[kind]
	request, err := q.Enqueue(f.ID, f.Class, f.Reallocated())
	if err != nil {
		return fmt.Errorf("flight %d: %w", f.ID, err)
	}
	s.matrix.SetRequest(f.ID, kind, true)
	s.watchList.Watch(f.ID)
	started := request.ArrivedAt
	abort := func() {
		q.Remove(f.ID)
		s.matrix.SetRequest(f.ID, kind, false)
	}
	if s.closed.Load() {
		abort()
		return ErrClosed
	}

	for !q.IsHead(f.ID) {
		if err = s.checkQueued(ctx, kind, f, started); err != nil {
			abort()
			return err
		}
		timer := time.NewTimer(s.config.QueueWaitTimeout)
		select {
		case <-request.Wake():
		case <-timer.C:
		case <-revoked:
			err = ErrRevoked
		case <-ctx.Done():
			err = ctx.Err()
		}
		timer.Stop()
		if err != nil {
			abort()
			return err
		}
	}
	span.Event("head")

	for {
		if err = s.checkQueued(ctx, kind, f, started); err != nil {
			abort()
			return err
		}
		err = s.acquire(ctx, kind, revoked)
		if err == nil {
			break
		}
		if !errors.Is(err, pool.ErrTimeout) {
			abort()
			return err
		}
	}

	if err = s.grant(kind, f, revoked); err != nil {
		return err
	}
	wait := clock.Since(started)
	s.stats.AddWait(wait)
	if s.onWait != nil {
		s.onWait(kind, wait)
	}
	log.Debugf("flight %d acquired %v after %v", f.ID, kind, wait)
	return nil
}

// grant records the acquired unit unless the flight was revoked meanwhile,
// in which case the unit goes back to its pool.
func (s *Service) grant(kind model.Kind, f *model.Flight, revoked <-chan struct{}) error {
	s.grantMu.Lock()
	defer s.grantMu.Unlock()
	s.queues[kind].Remove(f.ID)
	s.matrix.Grant(f.ID, kind)
	f.Hold(kind)
	select {
	case <-revoked:
		s.Release(kind, f)
		return ErrRevoked
	default:
	}
	return nil
}

// acquire makes one bounded attempt on the pool; a revocation cancels it.
func (s *Service) acquire(ctx context.Context, kind model.Kind, revoked <-chan struct{}) error {
	attemptCtx, cancel := context.WithTimeout(ctx, s.config.AcquireTimeout)
	defer cancel()
	go func() {
		select {
		case <-revoked:
			cancel()
		case <-attemptCtx.Done():
		}
	}()
	err := s.pools[kind].Acquire(attemptCtx)
	if err == nil {
		return nil
	}
	select {
	case <-revoked:
		return ErrRevoked
	default:
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// checkQueued fails a request dropped by Shutdown, then checks the wait
// thresholds.
func (s *Service) checkQueued(ctx context.Context, kind model.Kind, f *model.Flight, started time.Time) error {
	if !s.queues[kind].Contains(f.ID) {
		return fmt.Errorf("%w: flight %d waiting for %v", ErrClosed, f.ID, kind)
	}
	return s.checkThresholds(ctx, kind, f, started)
}

// checkThresholds fails the request past the failure threshold and raises
// the flight's one-shot alert past the alert threshold.
func (s *Service) checkThresholds(ctx context.Context, kind model.Kind, f *model.Flight, started time.Time) error {
	wait := clock.Since(started)
	if wait >= s.config.FailureThreshold {
		log.Warnf("flight %d starved waiting %v for %v", f.ID, wait.Round(time.Millisecond), kind)
		event.Publish(ctx, s.events, s.events.Context(event.TypeStarvation, f.ID, serviceName), s.flightEvent(f, kind, wait))
		return fmt.Errorf("%w: flight %d waited %v for %v", ErrStarvation, f.ID, wait.Round(time.Millisecond), kind)
	}
	if wait >= s.config.AlertThreshold && f.RaiseAlert() {
		log.Warnf("alert: flight %d waiting %v for %v", f.ID, wait.Round(time.Millisecond), kind)
		s.stats.Update(progress.Delta{Alerts: 1})
		event.Publish(ctx, s.events, s.events.Context(event.TypeAlert, f.ID, serviceName), s.flightEvent(f, kind, wait))
	}
	return nil
}
