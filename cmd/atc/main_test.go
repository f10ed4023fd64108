package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/atc"
)

func TestApplyPositional(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr bool
		verify  func(t *testing.T, c *atc.Config)
	}{
		{
			name: "none",
			verify: func(t *testing.T, c *atc.Config) {
				assert.Equal(t, 3, c.Airport.Runways)
			},
		},
		{
			name: "all",
			args: []string{"1", "2", "1", "30", "5s", "15"},
			verify: func(t *testing.T, c *atc.Config) {
				assert.Equal(t, 1, c.Airport.Runways)
				assert.Equal(t, 2, c.Airport.Gates)
				assert.Equal(t, 1, c.Airport.TowerOps)
				assert.Equal(t, 30*time.Second, c.Simulation.TotalTime)
				assert.Equal(t, 5*time.Second, c.Airport.AlertThreshold)
				assert.Equal(t, 15*time.Second, c.Airport.FailureThreshold)
			},
		},
		{name: "bad capacity", args: []string{"x"}, wantErr: true},
		{name: "bad duration", args: []string{"1", "1", "1", "soon"}, wantErr: true},
		{name: "alert after failure", args: []string{"1", "1", "1", "10", "20", "10"}, wantErr: true},
		{name: "too many", args: []string{"1", "1", "1", "1", "1", "1", "1"}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := atc.DefaultConfig()
			err := applyPositional(config, tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.verify(t, config)
		})
	}
}
