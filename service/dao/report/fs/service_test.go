package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/dao"
	"github.com/viant/atc/service/dao/report"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	srv, err := New(ctx, t.TempDir())
	require.NoError(t, err)

	completed := &report.Report{
		RunID:            "run-1",
		Status:           report.StatusCompleted,
		StartedAt:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Capacity:         map[string]int{"runway": 3, "gate": 5, "tower": 2},
		AlertThreshold:   30 * time.Second,
		FailureThreshold: 90 * time.Second,
		Stats:            progress.Snapshot{RunID: "run-1", Created: 2, Succeeded: 2},
		Flights:          []model.Summary{{ID: 1, Class: "domestic", State: model.StateDone}},
	}
	interrupted := &report.Report{RunID: "run-2", Status: report.StatusInterrupted}
	require.NoError(t, srv.Save(ctx, completed))
	require.NoError(t, srv.Save(ctx, interrupted))
	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, srv.Save(ctx, &report.Report{}), dao.ErrInvalidID)

	loaded, err := srv.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, completed.Capacity, loaded.Capacity)
	assert.Equal(t, completed.FailureThreshold, loaded.FailureThreshold)
	assert.Equal(t, completed.Flights, loaded.Flights)
	assert.Equal(t, 2, loaded.Stats.Succeeded)

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []string
	}{
		{description: "all", expect: []string{"run-1", "run-2"}},
		{description: "by status", parameters: []*dao.Parameter{dao.NewParameter("Status", report.StatusInterrupted)}, expect: []string{"run-2"}},
		{description: "by run ids", parameters: []*dao.Parameter{dao.NewParameter("RunID", "run-1", "run-3")}, expect: []string{"run-1"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			reports, err := srv.List(ctx, testCase.parameters...)
			require.NoError(t, err)
			var ids []string
			for _, r := range reports {
				ids = append(ids, r.RunID)
			}
			assert.ElementsMatch(t, testCase.expect, ids)
		})
	}

	require.NoError(t, srv.Delete(ctx, "run-2"))
	_, err = srv.Load(ctx, "run-2")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, srv.Delete(ctx, "run-2"), dao.ErrNotFound)
}
