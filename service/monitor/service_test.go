package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/allocator"
	"github.com/viant/atc/service/messaging/memory"
	"github.com/viant/atc/service/processor"
)

func newAirport(t *testing.T, stats *progress.Stats) *allocator.Service {
	config := allocator.DefaultConfig()
	config.Runways, config.Gates, config.TowerOps = 1, 1, 1
	config.AlertThreshold = 5 * time.Second
	config.FailureThreshold = 10 * time.Second
	config.QueueWaitTimeout = 10 * time.Millisecond
	config.AcquireTimeout = 20 * time.Millisecond
	airport, err := allocator.New(config, allocator.WithStats(stats))
	require.NoError(t, err)
	return airport
}

func TestNew(t *testing.T) {
	airport := newAirport(t, nil)
	testCases := []struct {
		description string
		config      Config
		airport     Airport
		expectErr   bool
	}{
		{description: "valid", config: DefaultConfig(), airport: airport},
		{description: "missing airport", config: DefaultConfig(), expectErr: true},
		{description: "no period", config: Config{MaxWarnings: 3}, airport: airport, expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			var reallocator Reallocator
			if testCase.airport != nil {
				reallocator = airport
			}
			_, err := New(testCase.config, testCase.airport, reallocator)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_CheckWithoutDeadlock(t *testing.T) {
	stats := progress.New("test")
	airport := newAirport(t, stats)
	srv, err := New(DefaultConfig(), airport, airport, WithStats(stats))
	require.NoError(t, err)

	f := model.NewFlight(1, model.Domestic, time.Now())
	require.NoError(t, airport.Register(f))
	require.NoError(t, airport.Request(context.Background(), model.Tower, f))

	outcome := srv.Check(context.Background())
	assert.False(t, outcome.Suspected)
	assert.Empty(t, outcome.Reallocated)
	assert.Equal(t, 0, stats.Snapshot().Deadlocks)
}

func TestService_BreaksCircularWait(t *testing.T) {
	stats := progress.New("test")
	airport := newAirport(t, stats)
	srv, err := New(Config{Period: time.Hour, MaxWarnings: 3}, airport, airport, WithStats(stats))
	require.NoError(t, err)
	ctx := context.Background()

	domestic := model.NewFlight(1, model.Domestic, time.Now())
	international := model.NewFlight(2, model.International, time.Now())
	require.NoError(t, airport.Register(domestic))
	require.NoError(t, airport.Register(international))

	// domestic landing takes the tower first, international the runway
	require.NoError(t, airport.Request(ctx, model.Tower, domestic))
	require.NoError(t, airport.Request(ctx, model.Runway, international))
	domesticDone := make(chan error, 1)
	internationalDone := make(chan error, 1)
	go func() { domesticDone <- airport.Request(ctx, model.Runway, domestic) }()
	go func() { internationalDone <- airport.Request(ctx, model.Tower, international) }()
	require.Eventually(t, func() bool { return airport.Detect().Suspected }, time.Second, 5*time.Millisecond)

	for i := 1; i < 3; i++ {
		outcome := srv.Check(ctx)
		assert.True(t, outcome.Suspected)
		assert.Equal(t, []int{1, 2}, outcome.Stuck)
		assert.Empty(t, outcome.Reallocated)
		assert.Equal(t, i, domestic.Warnings())
	}
	outcome := srv.Check(ctx)
	assert.Equal(t, []int{1}, outcome.Reallocated)
	assert.True(t, domestic.Reallocated())
	assert.False(t, international.Reallocated())

	select {
	case err = <-domesticDone:
		assert.ErrorIs(t, err, allocator.ErrRevoked)
	case <-time.After(time.Second):
		t.Fatal("stripped flight kept waiting")
	}
	select {
	case err = <-internationalDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("surviving flight was not served")
	}
	assert.True(t, international.Holds(model.Tower))
	assert.Empty(t, domestic.Held())

	outcome = srv.Check(ctx)
	assert.False(t, outcome.Suspected)
	snapshot := stats.Snapshot()
	assert.Equal(t, 3, snapshot.Deadlocks)
	assert.Equal(t, 1, snapshot.Reallocations)
}

func TestService_CircularWaitFlightsComplete(t *testing.T) {
	stats := progress.New("test")
	airport := newAirport(t, stats)
	srv, err := New(Config{Period: time.Hour, MaxWarnings: 3}, airport, airport, WithStats(stats))
	require.NoError(t, err)
	config := processor.DefaultConfig()
	config.ReleaseGap = 0
	lifecycle, err := processor.New(
		processor.WithConfig(config),
		processor.WithAirport(airport),
		processor.WithQueue(memory.NewQueue[processor.Arrival](memory.DefaultConfig())),
		processor.WithStats(stats),
		processor.WithOperate(func(ctx context.Context, phase model.Phase, f *model.Flight) error { return nil }),
	)
	require.NoError(t, err)
	ctx := context.Background()

	blocker := model.NewFlight(9, model.Domestic, time.Now())
	require.NoError(t, airport.Register(blocker))
	require.NoError(t, airport.Request(ctx, model.Runway, blocker))
	// an overriding request keeps both flights off the runway queue head
	_, err = airport.Queue(model.Runway).Enqueue(100, model.Domestic, true)
	require.NoError(t, err)

	domestic := model.NewFlight(1, model.Domestic, time.Now())
	international := model.NewFlight(2, model.International, time.Now())
	domesticDone := make(chan error, 1)
	internationalDone := make(chan error, 1)
	// domestic takes the tower and queues for the runway
	go func() { domesticDone <- lifecycle.Fly(ctx, domestic) }()
	require.Eventually(t, func() bool { return airport.Matrix().Stuck(1) }, time.Second, 5*time.Millisecond)
	// international outranks it on the runway queue
	go func() { internationalDone <- lifecycle.Fly(ctx, international) }()
	require.Eventually(t, func() bool { return airport.Queue(model.Runway).Contains(2) }, time.Second, 5*time.Millisecond)
	airport.Queue(model.Runway).Remove(100)
	airport.Release(model.Runway, blocker)
	require.Eventually(t, func() bool { return airport.Detect().Suspected }, time.Second, 5*time.Millisecond)

	var outcome Outcome
	for i := 0; i < 3; i++ {
		outcome = srv.Check(ctx)
		assert.True(t, outcome.Suspected)
	}
	assert.Equal(t, []int{1}, outcome.Reallocated)

	for _, done := range []chan error{internationalDone, domesticDone} {
		select {
		case err = <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("flight did not finish")
		}
	}
	assert.Equal(t, model.StateDone, international.State())
	assert.Equal(t, model.StateDone, domestic.State())
	assert.True(t, domestic.Reallocated())
	assert.False(t, international.Reallocated())
	for _, kind := range model.Kinds() {
		assert.Equal(t, 1, airport.Available(kind))
	}
	snapshot := stats.Snapshot()
	assert.Equal(t, 2, snapshot.Succeeded)
	assert.Equal(t, 1, snapshot.Reallocations)
	assert.False(t, srv.Check(ctx).Suspected)
}

func TestService_StartShutdown(t *testing.T) {
	airport := newAirport(t, nil)
	srv, err := New(Config{Period: 5 * time.Millisecond, MaxWarnings: 3}, airport, airport)
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	srv.Shutdown()
	srv.Shutdown()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
