package domain

// Phase represents the current phase of a game.
type Phase string

const (
	PhaseLobby         Phase = "LOBBY"
	PhaseNight         Phase = "NIGHT"
	PhaseDayDiscussion Phase = "DAY_DISCUSSION"
	PhaseDayVoting     Phase = "DAY_VOTING"
	PhaseGameOver      Phase = "GAME_OVER"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from the current phase to the
// target phase is valid. GAME_OVER is reachable from any phase the moment
// a win condition fires.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseGameOver {
		return p != PhaseLobby && p != PhaseGameOver
	}

	validTransitions := map[Phase][]Phase{
		PhaseLobby:         {PhaseNight},
		PhaseNight:         {PhaseDayDiscussion},
		PhaseDayDiscussion: {PhaseDayVoting, PhaseNight},
		PhaseDayVoting:     {PhaseNight},
	}

	for _, phase := range validTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}
