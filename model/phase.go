package model

import "fmt"

// Phase is one of the three sequential steps of a flight's visit.
type Phase int

const (
	PhaseLanding Phase = iota
	PhaseDeplaning
	PhaseTakeoff
)

// Phases returns the phases in the order a flight goes through them.
func Phases() []Phase {
	return []Phase{PhaseLanding, PhaseDeplaning, PhaseTakeoff}
}

func (p Phase) String() string {
	switch p {
	case PhaseLanding:
		return "landing"
	case PhaseDeplaning:
		return "deplaning"
	case PhaseTakeoff:
		return "takeoff"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State returns the flight state entered when the phase starts.
func (p Phase) State() State {
	switch p {
	case PhaseLanding:
		return StateLanding
	case PhaseDeplaning:
		return StateDeplaning
	default:
		return StateAwaitingTakeoff
	}
}

// acquisitionOrder is indexed by phase, then class. The two classes take the
// tower in opposite positions, which makes a circular wait between them
// possible; the deadlock monitor exists to break it.
var acquisitionOrder = [3][2][]Kind{
	PhaseLanding: {
		Domestic:      {Tower, Runway},
		International: {Runway, Tower},
	},
	PhaseDeplaning: {
		Domestic:      {Tower, Gate},
		International: {Gate, Tower},
	},
	PhaseTakeoff: {
		Domestic:      {Tower, Gate, Runway},
		International: {Gate, Runway, Tower},
	},
}

var releaseOrder = [3][]Kind{
	PhaseLanding:   {Runway, Tower},
	PhaseDeplaning: {Tower, Gate},
	PhaseTakeoff:   {Gate, Runway, Tower},
}

// AcquisitionOrder returns the order in which a flight of the given class
// acquires resources for the phase. The returned slice is a copy.
func AcquisitionOrder(phase Phase, class Class) []Kind {
	if phase < PhaseLanding || phase > PhaseTakeoff || class < Domestic || class > International {
		return nil
	}
	return append([]Kind(nil), acquisitionOrder[phase][class]...)
}

// ReleaseOrder returns the order in which a completed phase hands its
// resources back.
func ReleaseOrder(phase Phase) []Kind {
	if phase < PhaseLanding || phase > PhaseTakeoff {
		return nil
	}
	return append([]Kind(nil), releaseOrder[phase]...)
}
