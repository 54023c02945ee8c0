package domain

// legalActions is the per-phase action legality table. LOBBY and
// GAME_OVER admit nothing.
var legalActions = map[Phase]map[ActionType]bool{
	PhaseDayDiscussion: {ActionSpeak: true, ActionNominate: true, ActionPass: true},
	PhaseDayVoting:     {ActionVote: true},
	PhaseNight:         {ActionNightAction: true},
}

// nightRoles maps each night ability to the only role allowed to use it.
var nightRoles = map[NightActionType]Role{
	NightKill:        RoleMafia,
	NightSave:        RoleDoctor,
	NightInvestigate: RoleDetective,
}

// Validate checks a submitted action against the current phase, turn
// ownership, liveness and target legality. It is pure: it never mutates
// the game, and acceptance is necessary but not sufficient for
// application.
func Validate(g *Game, a Action) error {
	if !a.wellFormed() {
		return ErrMalformedAction
	}
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}

	actor, ok := g.player(a.PlayerID)
	if !ok {
		return ErrUnknownPlayer
	}
	if !actor.IsAlive {
		return ErrPlayerDead
	}
	if !legalActions[g.Phase][a.Type] {
		return ErrWrongPhase
	}

	switch a.Type {
	case ActionSpeak, ActionNominate, ActionPass:
		speaker := g.CurrentSpeaker()
		if speaker == nil || speaker.ID != a.PlayerID {
			return ErrNotYourTurn
		}
		if a.Type == ActionNominate {
			return validateNomination(g, actor, a)
		}

	case ActionVote:
		if g.Voting.HasVoted(a.PlayerID) {
			return ErrAlreadyActed
		}
		if !g.Voting.IsNominee(a.NomineeID) {
			return ErrInvalidTarget
		}

	case ActionNightAction:
		return validateNightAction(g, actor, a)
	}

	return nil
}

func validateNomination(g *Game, actor *Player, a Action) error {
	target, ok := g.player(a.TargetID)
	if !ok || !target.IsAlive {
		return ErrInvalidTarget
	}
	if a.TargetID == actor.ID {
		return ErrInvalidTarget
	}
	for _, nominator := range g.Nominations[a.TargetID] {
		if nominator == actor.ID {
			return ErrAlreadyActed
		}
	}
	return nil
}

func validateNightAction(g *Game, actor *Player, a Action) error {
	if nightRoles[a.NightType] != actor.Role {
		return ErrWrongPhase
	}
	if g.Night.Acted[actor.ID] {
		return ErrAlreadyActed
	}

	target, ok := g.player(a.TargetID)
	if !ok || !target.IsAlive {
		return ErrInvalidTarget
	}
	// Only the doctor's save may self-target.
	if a.TargetID == actor.ID && a.NightType != NightSave {
		return ErrInvalidTarget
	}
	if a.NightType == NightKill && target.Team == TeamMafia {
		return ErrInvalidTarget
	}
	return nil
}
