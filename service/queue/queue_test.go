package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc/internal/clock"
	"github.com/viant/atc/model"
)

type enqueue struct {
	flightID    int
	class       model.Class
	reallocated bool
}

func flightIDs(entries []Entry) []int {
	var result []int
	for _, entry := range entries {
		result = append(result, entry.FlightID)
	}
	return result
}

func TestQueue_Order(t *testing.T) {
	testCases := []struct {
		description string
		requests    []enqueue
		expect      []int
	}{
		{
			description: "international ahead of domestic",
			requests:    []enqueue{{1, model.Domestic, false}, {2, model.International, false}},
			expect:      []int{2, 1},
		},
		{
			description: "ties served by arrival",
			requests:    []enqueue{{1, model.Domestic, false}, {2, model.Domestic, false}, {3, model.Domestic, false}},
			expect:      []int{1, 2, 3},
		},
		{
			description: "reallocated flight overrides class",
			requests:    []enqueue{{1, model.International, false}, {2, model.Domestic, true}, {3, model.International, false}},
			expect:      []int{2, 1, 3},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			q := New(model.Runway, DefaultConfig())
			for _, r := range testCase.requests {
				_, err := q.Enqueue(r.flightID, r.class, r.reallocated)
				require.NoError(t, err)
			}
			assert.Equal(t, testCase.expect, flightIDs(q.Entries()))
			assert.True(t, q.IsHead(testCase.expect[0]))
		})
	}
}

func TestQueue_EnqueueErrors(t *testing.T) {
	config := DefaultConfig()
	config.Limit = 2
	q := New(model.Gate, config)
	_, err := q.Enqueue(1, model.Domestic, false)
	require.NoError(t, err)

	_, err = q.Enqueue(1, model.Domestic, false)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = q.Enqueue(2, model.Domestic, false)
	require.NoError(t, err)
	_, err = q.Enqueue(3, model.Domestic, false)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, 2, q.Len())
}

func TestQueue_RemoveWakesNewHead(t *testing.T) {
	q := New(model.Tower, DefaultConfig())
	_, err := q.Enqueue(1, model.International, false)
	require.NoError(t, err)
	second, err := q.Enqueue(2, model.Domestic, false)
	require.NoError(t, err)

	assert.True(t, q.Remove(1))
	assert.False(t, q.Remove(1))
	assert.True(t, q.IsHead(2))
	select {
	case <-second.Wake():
	default:
		t.Fatal("new head was not signalled")
	}
	assert.False(t, q.Contains(1))
}

func TestQueue_Age(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	q := New(model.Runway, DefaultConfig())
	_, err := q.Enqueue(1, model.International, false)
	require.NoError(t, err)
	clock.NowFunc = func() time.Time { return now.Add(20 * time.Second) }
	_, err = q.Enqueue(2, model.Domestic, false)
	require.NoError(t, err)

	testCases := []struct {
		description  string
		at           time.Duration
		expectFirst  int
		expectSecond int
	}{
		{description: "partial interval credits nothing", at: 24 * time.Second, expectFirst: 13 + 4, expectSecond: 8},
		{description: "one interval for the newcomer", at: 25 * time.Second, expectFirst: 13 + 5, expectSecond: 9},
		{description: "repeated tick credits once", at: 25 * time.Second, expectFirst: 13 + 5, expectSecond: 9},
		{description: "monotonic over many intervals", at: 70 * time.Second, expectFirst: 13 + 14, expectSecond: 8 + 10},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			q.Age(now.Add(testCase.at), 5*time.Second, 1)
			first, ok := q.Priority(1)
			require.True(t, ok)
			second, ok := q.Priority(2)
			require.True(t, ok)
			assert.Equal(t, testCase.expectFirst, first)
			assert.Equal(t, testCase.expectSecond, second)
		})
	}
}

func TestQueue_AgingReorders(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	q := New(model.Gate, DefaultConfig())
	domestic, err := q.Enqueue(1, model.Domestic, false)
	require.NoError(t, err)
	<-domestic.Wake()
	clock.NowFunc = func() time.Time { return now.Add(30 * time.Second) }
	_, err = q.Enqueue(2, model.International, false)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, flightIDs(q.Entries()))

	// 30s at 5 per interval gives the domestic request 8+6 > 13
	assert.Equal(t, 1, q.Age(now.Add(30*time.Second), 5*time.Second, 1))
	assert.Equal(t, []int{1, 2}, flightIDs(q.Entries()))
	select {
	case <-domestic.Wake():
	default:
		t.Fatal("promoted head was not signalled")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New(model.Runway, DefaultConfig())
	request, err := q.Enqueue(1, model.Domestic, false)
	require.NoError(t, err)
	// drain the signal sent on becoming head
	<-request.Wake()
	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Contains(1))
	select {
	case <-request.Wake():
	default:
		t.Fatal("cleared request was not woken")
	}
}
