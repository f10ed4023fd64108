package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/allocator"
)

func newServer(t *testing.T) http.Handler {
	stats := progress.New("run-api")
	// no WithStats: the wait samples are the two added below
	airport, err := allocator.New(allocator.DefaultConfig())
	require.NoError(t, err)
	done := model.NewFlight(1, model.International, time.Now())
	require.NoError(t, airport.Register(done))
	done.SetState(model.StateDone)
	waiting := model.NewFlight(2, model.Domestic, time.Now())
	require.NoError(t, airport.Register(waiting))
	require.NoError(t, airport.Request(context.Background(), model.Runway, waiting))
	stats.Update(progress.Delta{Created: 2, Succeeded: 1, Class: model.International})
	stats.AddWait(2 * time.Second)
	stats.AddWait(4 * time.Second)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("atc_up 1")) })
	return New(airport, stats, metrics)
}

func TestServer(t *testing.T) {
	handler := newServer(t)
	testCases := []struct {
		description  string
		path         string
		expectStatus int
		verify       func(t *testing.T, body []byte)
	}{
		{
			description:  "health",
			path:         "/health",
			expectStatus: http.StatusOK,
			verify:       func(t *testing.T, body []byte) { assert.Equal(t, "ok", string(body)) },
		},
		{
			description:  "stats",
			path:         "/stats",
			expectStatus: http.StatusOK,
			verify: func(t *testing.T, body []byte) {
				var stats StatsResponse
				require.NoError(t, json.Unmarshal(body, &stats))
				assert.Equal(t, "run-api", stats.RunID)
				assert.Equal(t, 1, stats.Active)
				assert.Equal(t, "3s", stats.AverageWait)
				assert.Equal(t, "4s", stats.MaxWait)
				assert.Empty(t, stats.WaitSamples)
			},
		},
		{
			description:  "stats with samples",
			path:         "/stats?samples=true",
			expectStatus: http.StatusOK,
			verify: func(t *testing.T, body []byte) {
				var stats StatsResponse
				require.NoError(t, json.Unmarshal(body, &stats))
				assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, stats.WaitSamples)
				assert.Equal(t, "3s", stats.AverageWait)
			},
		},
		{
			description:  "flights filtered by state",
			path:         "/flights?state=done",
			expectStatus: http.StatusOK,
			verify: func(t *testing.T, body []byte) {
				var flights []model.Summary
				require.NoError(t, json.Unmarshal(body, &flights))
				require.Len(t, flights, 1)
				assert.Equal(t, 1, flights[0].ID)
			},
		},
		{
			description:  "single flight",
			path:         "/flights/2",
			expectStatus: http.StatusOK,
			verify: func(t *testing.T, body []byte) {
				var flight model.Summary
				require.NoError(t, json.Unmarshal(body, &flight))
				assert.Equal(t, "domestic", flight.Class)
			},
		},
		{description: "unknown flight", path: "/flights/42", expectStatus: http.StatusNotFound},
		{description: "invalid flight id", path: "/flights/abc", expectStatus: http.StatusBadRequest},
		{
			description:  "resources",
			path:         "/resources",
			expectStatus: http.StatusOK,
			verify: func(t *testing.T, body []byte) {
				var resources []Resource
				require.NoError(t, json.Unmarshal(body, &resources))
				require.Len(t, resources, 3)
				assert.Equal(t, "runway", resources[0].Kind)
				assert.Equal(t, 3, resources[0].Capacity)
				assert.Equal(t, 2, resources[0].Available)
			},
		},
		{
			description:  "metrics",
			path:         "/metrics",
			expectStatus: http.StatusOK,
			verify:       func(t *testing.T, body []byte) { assert.Equal(t, "atc_up 1", string(body)) },
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, testCase.path, nil))
			assert.Equal(t, testCase.expectStatus, recorder.Code)
			if testCase.verify != nil {
				testCase.verify(t, recorder.Body.Bytes())
			}
		})
	}
}
