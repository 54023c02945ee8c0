package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGame builds a started game with one player per given role,
// seated in argument order with ids p0, p1, ...
func newTestGame(t *testing.T, roles ...Role) *Game {
	t.Helper()

	players := make([]*Player, len(roles))
	for i, role := range roles {
		id := fmt.Sprintf("p%d", i)
		players[i] = NewPlayer(id, fmt.Sprintf("Player %d", i), i, role)
	}

	g, err := NewGame("test-game", players)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	return g
}

// resolveQuietNight passes every night role so the game moves to day
// with no death.
func resolveQuietNight(t *testing.T, g *Game) {
	t.Helper()
	require.Equal(t, PhaseNight, g.Phase)
	for _, p := range g.AlivePlayers() {
		if p.Role.HasNightAction() {
			require.NoError(t, g.NightPass(p.ID))
		}
	}
	require.Equal(t, PhaseDayDiscussion, g.Phase)
}

func speak(t *testing.T, g *Game, playerID, message string) {
	t.Helper()
	_, err := g.Apply(Action{PlayerID: playerID, Type: ActionSpeak, Message: message})
	require.NoError(t, err)
}

func nominate(t *testing.T, g *Game, playerID, targetID string) {
	t.Helper()
	_, err := g.Apply(Action{PlayerID: playerID, Type: ActionNominate, TargetID: targetID})
	require.NoError(t, err)
}

func vote(t *testing.T, g *Game, playerID, nomineeID string) {
	t.Helper()
	_, err := g.Apply(Action{PlayerID: playerID, Type: ActionVote, NomineeID: nomineeID})
	require.NoError(t, err)
}

func TestNewGameRejectsBadRosters(t *testing.T) {
	_, err := NewGame("g", nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	// Seat out of order.
	players := []*Player{
		NewPlayer("a", "A", 0, RoleMafia),
		NewPlayer("b", "B", 2, RoleVillager),
	}
	_, err = NewGame("g", players)
	require.ErrorAs(t, err, &cfgErr)

	// Duplicate id.
	players = []*Player{
		NewPlayer("a", "A", 0, RoleMafia),
		NewPlayer("a", "A2", 1, RoleVillager),
	}
	_, err = NewGame("g", players)
	require.ErrorAs(t, err, &cfgErr)
}

func TestStartMovesLobbyToNight(t *testing.T) {
	players := []*Player{
		NewPlayer("a", "A", 0, RoleMafia),
		NewPlayer("b", "B", 1, RoleVillager),
		NewPlayer("c", "C", 2, RoleVillager),
	}
	g, err := NewGame("g", players)
	require.NoError(t, err)
	assert.Equal(t, PhaseLobby, g.Phase)

	require.NoError(t, g.Start())
	assert.Equal(t, PhaseNight, g.Phase)
	assert.NotNil(t, g.Night)

	assert.ErrorIs(t, g.Start(), ErrGameStarted)
}

func TestClaimSeatConvertsFirstAgentSeat(t *testing.T) {
	players := []*Player{
		NewPlayer("a", "A", 0, RoleMafia),
		NewPlayer("b", "gpt 1", 1, RoleVillager),
		NewPlayer("c", "gpt 2", 2, RoleVillager),
	}
	players[0].IsHuman = true
	players[1].ModelID = "openai/gpt-5"
	players[2].ModelID = "openai/gpt-5"

	g, err := NewGame("g", players)
	require.NoError(t, err)

	p, err := g.ClaimSeat("Morgan")
	require.NoError(t, err)
	assert.Equal(t, "b", p.ID)
	assert.Equal(t, "Morgan", p.Name)
	assert.True(t, p.IsHuman)
	assert.Empty(t, p.ModelID)

	// Role assignment is untouched by the claim.
	assert.Equal(t, RoleVillager, p.Role)

	require.NoError(t, g.Start())
	_, err = g.ClaimSeat("Late")
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestDiscussionTurnOrderAndRoundEnd(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	require.Equal(t, "p0", g.CurrentSpeaker().ID)

	// Out-of-turn speech is rejected and consumes nothing.
	_, err := g.Apply(Action{PlayerID: "p2", Type: ActionSpeak, Message: "hello"})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	require.Equal(t, "p0", g.CurrentSpeaker().ID)

	speak(t, g, "p0", "good morning")
	assert.Equal(t, "p1", g.CurrentSpeaker().ID)

	speak(t, g, "p1", "suspicious of p0")
	speak(t, g, "p2", "no idea")

	// Last speaker of the round; with no full ballot the day ends.
	_, err = g.Apply(PassAction("p3"))
	require.NoError(t, err)
	assert.Equal(t, PhaseNight, g.Phase)
}

func TestNominationThresholdOpensVoting(t *testing.T) {
	// Eight alive players: threshold is four supporters per nominee.
	g := newTestGame(t,
		RoleMafia, RoleMafia, RoleDetective, RoleDoctor,
		RoleVillager, RoleVillager, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	// First four speakers back p6.
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		nominate(t, g, id, "p6")
	}
	assert.Equal(t, []string{"p6"}, g.Nominees)
	assert.Equal(t, PhaseDayDiscussion, g.Phase)

	// Next three back p0; voting opens on the fourth supporter.
	nominate(t, g, "p4", "p0")
	nominate(t, g, "p5", "p0")
	nominate(t, g, "p6", "p0")
	assert.Equal(t, PhaseDayDiscussion, g.Phase)

	nominate(t, g, "p7", "p0")
	assert.Equal(t, PhaseDayVoting, g.Phase)
	require.NotNil(t, g.Voting)
	assert.Equal(t, "p6", g.Voting.Nominee1)
	assert.Equal(t, "p0", g.Voting.Nominee2)
}

func TestRepeatNominationSupportRejected(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	nominate(t, g, "p0", "p3")

	// p0 already backed p3; a second backing is rejected.
	actor, _ := g.Player("p0")
	err := validateNomination(g, actor, Action{PlayerID: "p0", Type: ActionNominate, TargetID: "p3"})
	assert.ErrorIs(t, err, ErrAlreadyActed)
}

func TestVotingMajorityEliminates(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	// Threshold with four alive is two supporters.
	nominate(t, g, "p0", "p2")
	nominate(t, g, "p1", "p2")
	nominate(t, g, "p2", "p0")
	nominate(t, g, "p3", "p0")
	require.Equal(t, PhaseDayVoting, g.Phase)

	vote(t, g, "p1", "p0")
	vote(t, g, "p2", "p0")
	vote(t, g, "p3", "p0")
	vote(t, g, "p0", "p2")

	// Mafia voted out: town wins on the spot.
	p0, _ := g.Player("p0")
	assert.False(t, p0.IsAlive)
	assert.Equal(t, PhaseGameOver, g.Phase)
	assert.Equal(t, TeamTown, g.Winner)
}

func TestSingleNomineeRoundEndsWithoutBallot(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	nominate(t, g, "p0", "p2")
	nominate(t, g, "p1", "p2")
	nominate(t, g, "p2", "p3")
	nominate(t, g, "p3", "p1")

	// Only p2 crossed the threshold; the round is exhausted with one
	// nominee, so the day ends with no vote and no elimination.
	assert.Equal(t, PhaseNight, g.Phase)
	assert.Equal(t, []string{"p2"}, g.Nominees)
	assert.Equal(t, 4, len(g.AlivePlayers()))
}

func TestVotingExactTieGoesToNight(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	nominate(t, g, "p0", "p2")
	nominate(t, g, "p1", "p2")
	nominate(t, g, "p2", "p0")
	nominate(t, g, "p3", "p0")
	require.Equal(t, PhaseDayVoting, g.Phase)

	vote(t, g, "p1", "p0")
	vote(t, g, "p2", "p0")
	vote(t, g, "p3", "p2")
	res, err := g.Apply(Action{PlayerID: "p0", Type: ActionVote, NomineeID: "p2"})
	require.NoError(t, err)

	assert.Equal(t, "vote tied, no elimination", res.Note)
	assert.Equal(t, PhaseNight, g.Phase)
	assert.Equal(t, 4, len(g.AlivePlayers()))
}

func TestExpireVotingClosesBallotEarly(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	nominate(t, g, "p0", "p2")
	nominate(t, g, "p1", "p2")
	nominate(t, g, "p2", "p0")
	nominate(t, g, "p3", "p0")
	require.Equal(t, PhaseDayVoting, g.Phase)

	// Only one vote cast before the deadline.
	vote(t, g, "p1", "p2")

	_, err := g.ExpireVoting()
	require.NoError(t, err)

	p2, _ := g.Player("p2")
	assert.False(t, p2.IsAlive)
	// A villager died; game continues into night.
	assert.Equal(t, PhaseNight, g.Phase)
}

func TestDawnResetsDayState(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)
	require.Equal(t, 1, g.Day)

	nominate(t, g, "p0", "p2")
	speak(t, g, "p1", "hm")
	speak(t, g, "p2", "hm")
	_, err := g.Apply(PassAction("p3"))
	require.NoError(t, err)
	require.Equal(t, PhaseNight, g.Phase)

	resolveQuietNight(t, g)
	assert.Equal(t, 2, g.Day)
	assert.Empty(t, g.Nominations)
	assert.Empty(t, g.Nominees)
	assert.Equal(t, "p0", g.CurrentSpeaker().ID)
	assert.Contains(t, g.DaySummary, "Night 2")
}

func TestEvaluateWinParity(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager)

	// Kill a villager: one mafia vs one town is parity.
	p2, _ := g.Player("p2")
	p2.IsAlive = false

	assert.Equal(t, TeamMafia, g.EvaluateWin())
	assert.Equal(t, PhaseGameOver, g.Phase)

	// Latched: further deaths cannot change the outcome.
	p0, _ := g.Player("p0")
	p0.IsAlive = false
	assert.Equal(t, TeamMafia, g.EvaluateWin())
	assert.Equal(t, TeamMafia, g.Winner)
}

func TestEvaluateWinTownWhenNoMafia(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager)

	p0, _ := g.Player("p0")
	p0.IsAlive = false

	assert.Equal(t, TeamTown, g.EvaluateWin())
	assert.Equal(t, TeamTown, g.Winner)
}

func TestEvaluateWinNoWinnerYet(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	assert.Equal(t, Team(""), g.EvaluateWin())
	assert.NotEqual(t, PhaseGameOver, g.Phase)
}

func TestActionsRejectedAfterGameOver(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager)
	p2, _ := g.Player("p2")
	p2.IsAlive = false
	require.Equal(t, TeamMafia, g.EvaluateWin())

	_, err := g.Apply(PassAction("p0"))
	assert.ErrorIs(t, err, ErrGameOver)
}
