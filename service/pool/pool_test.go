package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc/model"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		description string
		capacity    int
		expectErr   bool
	}{
		{description: "valid capacity", capacity: 3},
		{description: "zero capacity", capacity: 0, expectErr: true},
		{description: "negative capacity", capacity: -1, expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			p, err := New(model.Runway, testCase.capacity)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.capacity, p.Available())
			assert.Equal(t, testCase.capacity, p.Capacity())
		})
	}
}

func acquireWithin(p *Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Acquire(ctx)
}

func TestPool_AcquireTimeout(t *testing.T) {
	p, err := New(model.Gate, 1)
	require.NoError(t, err)
	require.NoError(t, acquireWithin(p, 10*time.Millisecond))
	assert.Equal(t, 0, p.Available())

	err = acquireWithin(p, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 0, p.Available())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Acquire(ctx), context.Canceled)

	p.Release()
	assert.Equal(t, 1, p.Available())
	assert.NoError(t, acquireWithin(p, 10*time.Millisecond))
}

func TestPool_ReleaseIntoFullPoolIgnored(t *testing.T) {
	p, err := New(model.Tower, 2)
	require.NoError(t, err)
	p.Release()
	assert.Equal(t, 2, p.Available())
	assert.NoError(t, acquireWithin(p, 10*time.Millisecond))
	assert.NoError(t, acquireWithin(p, 10*time.Millisecond))
	assert.ErrorIs(t, acquireWithin(p, 10*time.Millisecond), ErrTimeout)
}

func TestPool_NeverOversubscribes(t *testing.T) {
	const capacity = 3
	p, err := New(model.Runway, capacity)
	require.NoError(t, err)

	var holders, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := acquireWithin(p, time.Second); err != nil {
				return
			}
			current := atomic.AddInt32(&holders, 1)
			for {
				seen := atomic.LoadInt32(&peak)
				if current <= seen || atomic.CompareAndSwapInt32(&peak, seen, current) {
					break
				}
			}
			assert.GreaterOrEqual(t, p.Available(), 0)
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&holders, -1)
			p.Release()
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, int(peak), capacity)
	assert.Equal(t, capacity, p.Available())
}
