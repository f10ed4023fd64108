package model

// State represents the lifecycle state of a flight
type State string

const (
	StateFlying          State = "flying"
	StateLanding         State = "landing"
	StateDeplaning       State = "deplaning"
	StateAwaitingTakeoff State = "awaitingTakeoff"
	StateTakingOff       State = "takingOff"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// IsTerminal returns true for states a flight never leaves.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}
