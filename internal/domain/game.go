package domain

import (
	"fmt"
	"time"
)

// Game is the aggregate root for one Mafia session. It is exclusively
// owned by a single orchestration worker: no method on Game is safe for
// concurrent use, and all mutation must be serialized by the owner.
type Game struct {
	ID      string
	Phase   Phase
	Day     int
	Players []*Player // seating order; never reordered after creation
	byID    map[string]*Player

	// Discussion turn tracking. speakerSeat is the seat index of the
	// current speaker; turnsTaken counts turns consumed this round.
	speakerSeat int
	turnsTaken  int

	// Nominations accumulated during the current day: target id to the
	// nominator ids backing it, in nomination order.
	Nominations map[string][]string
	// Nominees are the targets that crossed the support threshold, in
	// crossing order. Capped at two; the second crossing opens voting.
	Nominees []string

	Voting *VotingState // non-nil iff Phase == DAY_VOTING
	Night  *NightState  // non-nil iff Phase == NIGHT

	Winner     Team // set exactly once, iff Phase == GAME_OVER
	DaySummary string
	Events     *EventLog

	Started   bool
	CreatedAt time.Time
}

// Result reports the domain-level outcome of an applied action. An
// accepted action may still be a no-op beyond its direct effect; Note
// carries anything worth telling the submitter.
type Result struct {
	Note string
}

// NewGame creates a game in LOBBY over a finalized roster. Roles must
// already be assigned; membership is fixed for the game's lifetime.
func NewGame(id string, players []*Player) (*Game, error) {
	if len(players) == 0 {
		return nil, &ConfigurationError{Reason: "empty roster"}
	}

	byID := make(map[string]*Player, len(players))
	for seat, p := range players {
		if p.Seat != seat {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("player %s has seat %d, want %d", p.ID, p.Seat, seat)}
		}
		if _, dup := byID[p.ID]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate player id %s", p.ID)}
		}
		byID[p.ID] = p
	}

	return &Game{
		ID:          id,
		Phase:       PhaseLobby,
		Players:     players,
		byID:        byID,
		Nominations: make(map[string][]string),
		Events:      NewEventLog(),
		CreatedAt:   time.Now(),
	}, nil
}

func (g *Game) player(id string) (*Player, bool) {
	p, ok := g.byID[id]
	return p, ok
}

// Player returns a player by id.
func (g *Game) Player(id string) (*Player, bool) {
	return g.player(id)
}

// AlivePlayers returns the alive players in seating order.
func (g *Game) AlivePlayers() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.IsAlive {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) aliveCount() int {
	return len(g.AlivePlayers())
}

// CurrentSpeaker returns the player whose turn it is, non-nil exactly
// while the game is in DAY_DISCUSSION.
func (g *Game) CurrentSpeaker() *Player {
	if g.Phase != PhaseDayDiscussion {
		return nil
	}
	p := g.Players[g.speakerSeat]
	if !p.IsAlive {
		return nil
	}
	return p
}

// Complete reports whether the game has finished.
func (g *Game) Complete() bool {
	return g.Phase == PhaseGameOver
}

// ClaimSeat converts the first agent-controlled seat to a human seat.
// Only possible while the game is still in LOBBY.
func (g *Game) ClaimSeat(name string) (*Player, error) {
	if g.Phase != PhaseLobby {
		return nil, ErrGameStarted
	}
	for _, p := range g.Players {
		if !p.IsHuman {
			p.IsHuman = true
			p.Name = name
			p.ModelID = ""
			p.Persona = ""
			return p, nil
		}
	}
	return nil, ErrSeatsTaken
}

// Start moves the game out of LOBBY into the first night.
func (g *Game) Start() error {
	if g.Phase != PhaseLobby {
		return ErrGameStarted
	}
	g.Started = true
	g.toNight()
	return nil
}

// Apply validates an action against the current state and, if legal,
// applies it through the phase machine. It returns the rejection reason
// otherwise; game state is untouched on rejection.
func (g *Game) Apply(a Action) (Result, error) {
	if err := Validate(g, a); err != nil {
		return Result{}, err
	}

	switch g.Phase {
	case PhaseDayDiscussion:
		return g.applyDiscussion(a), nil
	case PhaseDayVoting:
		return g.applyVote(a), nil
	case PhaseNight:
		return g.applyNight(a), nil
	}
	// Validate only admits actions in the three playable phases.
	panic(fmt.Sprintf("apply reached phase %s", g.Phase))
}

// applyDiscussion handles SPEAK, NOMINATE and PASS by the current
// speaker. Every accepted action consumes the speaker's turn.
func (g *Game) applyDiscussion(a Action) Result {
	switch a.Type {
	case ActionSpeak:
		g.Events.Append(Event{
			Type:     EventSpeak,
			Phase:    g.Phase,
			Day:      g.Day,
			PlayerID: a.PlayerID,
			Data:     map[string]string{"message": a.Message},
		})

	case ActionNominate:
		g.Nominations[a.TargetID] = append(g.Nominations[a.TargetID], a.PlayerID)
		g.Events.Append(Event{
			Type:     EventNominate,
			Phase:    g.Phase,
			Day:      g.Day,
			PlayerID: a.PlayerID,
			TargetID: a.TargetID,
		})

		if g.nominationQualified(a.TargetID) {
			g.Nominees = append(g.Nominees, a.TargetID)
			if len(g.Nominees) == 2 {
				g.beginVoting()
				return Result{Note: "voting opened"}
			}
		}

	case ActionPass:
		// Turn consumed, nothing else.
	}

	g.advanceSpeaker()
	return Result{}
}

// nominationQualified reports whether target just crossed the support
// threshold and is not already on the ballot.
func (g *Game) nominationQualified(targetID string) bool {
	if len(g.Nominees) >= 2 {
		return false
	}
	for _, id := range g.Nominees {
		if id == targetID {
			return false
		}
	}
	return len(g.Nominations[targetID]) >= nominationThreshold(g.aliveCount())
}

// advanceSpeaker moves the turn to the next alive player in seating
// order, wrapping. When the round has given every alive player one turn
// without filling the ballot, the day ends with no elimination.
func (g *Game) advanceSpeaker() {
	g.turnsTaken++
	if g.turnsTaken >= g.aliveCount() {
		g.toNight()
		return
	}

	n := len(g.Players)
	for i := 1; i <= n; i++ {
		seat := (g.speakerSeat + i) % n
		if g.Players[seat].IsAlive {
			g.speakerSeat = seat
			return
		}
	}
}

// beginVoting opens the two-nominee ballot.
func (g *Game) beginVoting() {
	g.Voting = newVotingState(g.Nominees[0], g.Nominees[1])
	g.setPhase(PhaseDayVoting, map[string]string{
		"nominee1Id": g.Nominees[0],
		"nominee2Id": g.Nominees[1],
	})
}

// applyVote records a vote and closes the ballot once every alive player
// has voted.
func (g *Game) applyVote(a Action) Result {
	g.Voting.Votes[a.PlayerID] = a.NomineeID
	g.Events.Append(Event{
		Type:     EventVote,
		Phase:    g.Phase,
		Day:      g.Day,
		PlayerID: a.PlayerID,
		TargetID: a.NomineeID,
	})

	if g.Voting.Complete(g.aliveCount()) {
		return g.finishVoting()
	}
	return Result{}
}

// ExpireVoting force-closes the ballot at the voting deadline with
// whatever votes were cast.
func (g *Game) ExpireVoting() (Result, error) {
	if g.Phase != PhaseDayVoting {
		return Result{}, ErrWrongPhase
	}
	return g.finishVoting(), nil
}

// finishVoting tallies the ballot, applies the elimination (a tie means
// none), re-evaluates win conditions and moves to night if the game
// continues.
func (g *Game) finishVoting() Result {
	eliminatedID := g.Voting.Result()
	g.Voting = nil

	if eliminatedID == "" {
		g.toNight()
		return Result{Note: "vote tied, no elimination"}
	}

	eliminated, _ := g.player(eliminatedID)
	eliminated.IsAlive = false
	g.Events.Append(Event{
		Type:     EventEliminate,
		Phase:    g.Phase,
		Day:      g.Day,
		PlayerID: eliminated.ID,
		Data: map[string]string{
			"role": string(eliminated.Role),
			"team": string(eliminated.Team),
		},
	})

	if g.EvaluateWin() != "" {
		return Result{Note: fmt.Sprintf("%s eliminated, %s wins", eliminated.Name, g.Winner)}
	}
	g.toNight()
	return Result{Note: fmt.Sprintf("%s eliminated", eliminated.Name)}
}

// applyNight records a night action and resolves the night once every
// night role has acted.
func (g *Game) applyNight(a Action) Result {
	actor, _ := g.player(a.PlayerID)
	g.Night.record(actor, a)

	if g.nightComplete() {
		return g.finishNight()
	}
	return Result{}
}

// NightPass marks a night-role player as having passed. Used for the
// per-night deadline and for failed agent decisions; never blocks the
// night from resolving.
func (g *Game) NightPass(playerID string) error {
	if g.Phase != PhaseNight {
		return ErrWrongPhase
	}
	p, ok := g.player(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	g.Night.pass(p.ID)
	if g.nightComplete() {
		g.finishNight()
	}
	return nil
}

// ExpireNight resolves the night at the deadline, treating every player
// who has not acted as having passed.
func (g *Game) ExpireNight() (Result, error) {
	if g.Phase != PhaseNight {
		return Result{}, ErrWrongPhase
	}
	for _, p := range g.Players {
		if p.IsAlive && p.Role.HasNightAction() {
			g.Night.pass(p.ID)
		}
	}
	return g.finishNight(), nil
}

// finishNight resolves night actions, re-evaluates win conditions, and
// brings the dawn.
func (g *Game) finishNight() Result {
	victimID := g.resolveNight()

	var victim *Player
	if victimID != "" {
		victim, _ = g.player(victimID)
	}
	g.Night = nil

	if g.EvaluateWin() != "" {
		return Result{Note: fmt.Sprintf("%s wins", g.Winner)}
	}

	g.dawn(victim)
	if victim == nil {
		return Result{Note: "night resolved, no one died"}
	}
	return Result{Note: fmt.Sprintf("night resolved, %s died", victim.Name)}
}

// dawn starts a new day: bumps the day counter, writes the day summary,
// clears nominations, and hands the first turn to the first alive seat.
func (g *Game) dawn(victim *Player) {
	g.Day++
	g.Night = nil
	g.DaySummary = nightSummary(g.Day, victim)
	g.Nominations = make(map[string][]string)
	g.Nominees = nil
	g.turnsTaken = 0
	for seat, p := range g.Players {
		if p.IsAlive {
			g.speakerSeat = seat
			break
		}
	}
	g.setPhase(PhaseDayDiscussion, nil)
}

// toNight ends the day (or the lobby) and opens a fresh night.
func (g *Game) toNight() {
	g.Voting = nil
	g.Night = newNightState()
	g.setPhase(PhaseNight, nil)
}

// setPhase performs a transition and logs it. Transitions not in the
// phase table indicate a state-machine defect, not a user error.
func (g *Game) setPhase(target Phase, data map[string]string) {
	if !g.Phase.CanTransitionTo(target) {
		panic(fmt.Sprintf("illegal phase transition %s -> %s", g.Phase, target))
	}
	g.Phase = target
	g.Events.Append(Event{
		Type:  EventPhaseChange,
		Phase: target,
		Day:   g.Day,
		Data:  data,
	})
}

// EvaluateWin recomputes win conditions and latches the winner. Town wins
// when zero mafia remain; mafia wins at elimination parity. When both
// would hold, the mafia branch governs. Idempotent: once a winner is set,
// re-invocation changes nothing.
func (g *Game) EvaluateWin() Team {
	if g.Winner != "" {
		return g.Winner
	}

	mafia, town := 0, 0
	for _, p := range g.AlivePlayers() {
		if p.Team == TeamMafia {
			mafia++
		} else {
			town++
		}
	}

	var winner Team
	switch {
	case mafia == 0 && town > 0:
		winner = TeamTown
	case mafia >= town:
		winner = TeamMafia
	default:
		return ""
	}

	g.Winner = winner
	g.setPhase(PhaseGameOver, map[string]string{"winner": string(winner)})
	return winner
}
