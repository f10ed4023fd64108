package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc/service/messaging/memory"
)

func TestService_TypedListener(t *testing.T) {
	srv := New(WithRunID("run-1"))
	defer srv.Shutdown()

	var mu sync.Mutex
	var received []*Event[Flight]
	SetListenerOf[Flight](srv, func(e *Event[Flight]) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	ctx := context.Background()
	Publish(ctx, srv, srv.Context(TypeAlert, 7, "allocator"), Flight{Class: "domestic", Kind: "runway"})
	Publish(ctx, srv, srv.Context(TypeDeadlockSuspected, 0, "monitor"), Deadlock{Stuck: []int{1, 2}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "run-1", received[0].Context.RunID)
	assert.Equal(t, 7, received[0].Context.FlightID)
	assert.Equal(t, TypeAlert, received[0].Context.Type)
	assert.Equal(t, "runway", received[0].Data.Kind)
	assert.NotEmpty(t, received[0].ID)
}

func TestService_AnyListener(t *testing.T) {
	srv := New()
	defer srv.Shutdown()

	var mu sync.Mutex
	types := map[Type]int{}
	srv.SetListener(func(e *Event[any]) {
		mu.Lock()
		types[e.Context.Type]++
		mu.Unlock()
	})

	ctx := context.Background()
	Publish(ctx, srv, srv.Context(TypeReallocated, 1, "allocator"), Flight{Released: []string{"tower"}})
	Publish(ctx, srv, srv.Context(TypeDeadlockSuspected, 0, "monitor"), Deadlock{Stuck: []int{1, 2}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return types[TypeReallocated] == 1 && types[TypeDeadlockSuspected] == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPublish_WithoutListener(t *testing.T) {
	srv := New()
	defer srv.Shutdown()
	for i := 0; i < 1000; i++ {
		Publish(context.Background(), srv, srv.Context(TypeCompleted, i, "processor"), Flight{})
	}
	Publish[Flight](context.Background(), nil, (*Service)(nil).Context(TypeCompleted, 1, "processor"), Flight{})
}

func TestListener_RedeliversAfterPanic(t *testing.T) {
	testCases := []struct {
		description string
		failures    int32
		expectCalls int32
	}{
		{description: "handled first time", failures: 0, expectCalls: 1},
		{description: "redelivered after a panic", failures: 1, expectCalls: 2},
		{description: "dropped after retries", failures: 10, expectCalls: 3},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			srv := New(WithQueueConfig(func(string) memory.Config {
				config := memory.DefaultConfig()
				config.MaxRetries = 2
				config.RetryDelay = time.Millisecond
				return config
			}))
			defer srv.Shutdown()

			var calls atomic.Int32
			SetListenerOf[Flight](srv, func(e *Event[Flight]) {
				if calls.Add(1) <= testCase.failures {
					panic("handler failure")
				}
			})
			Publish(context.Background(), srv, srv.Context(TypeAlert, 3, "allocator"), Flight{})

			require.Eventually(t, func() bool { return calls.Load() == testCase.expectCalls }, time.Second, time.Millisecond)
			time.Sleep(20 * time.Millisecond)
			assert.Equal(t, testCase.expectCalls, calls.Load())
		})
	}
}
