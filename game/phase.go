package game

import "errors"

// Phase is the coarse state of a room's game.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseRolling  Phase = "rolling"
	PhaseScoring  Phase = "scoring"
	PhaseFinished Phase = "finished"
)

// ErrTransitionNotAllowed is returned when a phase transition is not allowed.
var ErrTransitionNotAllowed = errors.New("phase transition not allowed")

// transitions lists the permitted phase changes. rolling -> rolling covers a
// turn handed over before the current player exhausted their rolls.
var transitions = map[Phase][]Phase{
	PhaseWaiting:  {PhaseRolling},
	PhaseRolling:  {PhaseRolling, PhaseScoring, PhaseFinished},
	PhaseScoring:  {PhaseRolling, PhaseFinished},
	PhaseFinished: {PhaseRolling},
}

// CanTransition reports whether the phase machine permits moving to next.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *State) transition(next Phase) error {
	if !s.Phase.CanTransition(next) {
		return ErrTransitionNotAllowed
	}
	s.Phase = next
	return nil
}
