package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquisitionOrder(t *testing.T) {
	testCases := []struct {
		description string
		phase       Phase
		class       Class
		expect      []Kind
	}{
		{description: "domestic landing", phase: PhaseLanding, class: Domestic, expect: []Kind{Tower, Runway}},
		{description: "international landing", phase: PhaseLanding, class: International, expect: []Kind{Runway, Tower}},
		{description: "domestic deplaning", phase: PhaseDeplaning, class: Domestic, expect: []Kind{Tower, Gate}},
		{description: "international deplaning", phase: PhaseDeplaning, class: International, expect: []Kind{Gate, Tower}},
		{description: "domestic takeoff", phase: PhaseTakeoff, class: Domestic, expect: []Kind{Tower, Gate, Runway}},
		{description: "international takeoff", phase: PhaseTakeoff, class: International, expect: []Kind{Gate, Runway, Tower}},
		{description: "unknown phase", phase: Phase(9), class: Domestic, expect: nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, AcquisitionOrder(testCase.phase, testCase.class))
		})
	}
}

func TestAcquisitionOrder_ReturnsCopy(t *testing.T) {
	order := AcquisitionOrder(PhaseLanding, Domestic)
	order[0] = Gate
	assert.Equal(t, []Kind{Tower, Runway}, AcquisitionOrder(PhaseLanding, Domestic))
}

func TestReleaseOrder(t *testing.T) {
	assert.Equal(t, []Kind{Runway, Tower}, ReleaseOrder(PhaseLanding))
	assert.Equal(t, []Kind{Tower, Gate}, ReleaseOrder(PhaseDeplaning))
	assert.Equal(t, []Kind{Gate, Runway, Tower}, ReleaseOrder(PhaseTakeoff))
}

func TestPhase_State(t *testing.T) {
	assert.Equal(t, StateLanding, PhaseLanding.State())
	assert.Equal(t, StateDeplaning, PhaseDeplaning.State())
	assert.Equal(t, StateAwaitingTakeoff, PhaseTakeoff.State())
}

func TestParseClass(t *testing.T) {
	testCases := []struct {
		input     string
		expect    Class
		expectErr bool
	}{
		{input: "Domestic", expect: Domestic},
		{input: " intl ", expect: International},
		{input: "international", expect: International},
		{input: "cargo", expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.input, func(t *testing.T) {
			actual, err := ParseClass(testCase.input)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}
