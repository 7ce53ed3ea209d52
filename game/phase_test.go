package game

import (
	"testing"
)

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{PhaseWaiting, PhaseRolling, true},
		{PhaseWaiting, PhaseScoring, false},
		{PhaseWaiting, PhaseFinished, false},
		{PhaseRolling, PhaseRolling, true},
		{PhaseRolling, PhaseScoring, true},
		{PhaseRolling, PhaseFinished, true},
		{PhaseRolling, PhaseWaiting, false},
		{PhaseScoring, PhaseRolling, true},
		{PhaseScoring, PhaseFinished, true},
		{PhaseScoring, PhaseWaiting, false},
		{PhaseScoring, PhaseScoring, false},
		{PhaseFinished, PhaseRolling, true},
		{PhaseFinished, PhaseWaiting, false},
		{PhaseFinished, PhaseScoring, false},
		{PhaseFinished, PhaseFinished, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTransition_Blocked(t *testing.T) {
	s := NewState("room-1")
	if err := s.transition(PhaseScoring); err != ErrTransitionNotAllowed {
		t.Errorf("expected ErrTransitionNotAllowed, got %v", err)
	}
	if s.Phase != PhaseWaiting {
		t.Errorf("blocked transition changed the phase to %s", s.Phase)
	}
}
