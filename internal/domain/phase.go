package domain

// Phase represents the current phase of a game
type Phase string

const (
	PhaseSetup     Phase = "SETUP"     // Waiting for a generated puzzle
	PhasePlaying   Phase = "PLAYING"   // Player is dragging over the grid
	PhaseCompleted Phase = "COMPLETED" // Every word found or solve invoked
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseSetup:     {PhasePlaying},
		PhasePlaying:   {PhasePlaying, PhaseCompleted},
		PhaseCompleted: {PhaseCompleted}, // Solve on a finished board is harmless
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// AcceptsPointer reports whether drags are processed in this phase
func (p Phase) AcceptsPointer() bool {
	return p == PhasePlaying || p == PhaseCompleted
}
