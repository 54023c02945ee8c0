package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMalformedActions(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)

	cases := []Action{
		{PlayerID: "p0", Type: "DANCE"},
		{PlayerID: "p0", Type: ActionSpeak},    // missing message
		{PlayerID: "p0", Type: ActionNominate}, // missing target
		{PlayerID: "p0", Type: ActionVote},     // missing nominee
		{PlayerID: "p0", Type: ActionNightAction, TargetID: "p2"},       // missing night type
		{PlayerID: "p0", Type: ActionNightAction, NightType: "HEX"},     // unknown ability
		{PlayerID: "p0", Type: ActionNightAction, NightType: NightKill}, // missing target
	}
	for _, a := range cases {
		assert.ErrorIs(t, Validate(g, a), ErrMalformedAction, "%+v", a)
	}
}

func TestValidateUnknownAndDeadPlayers(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)

	err := Validate(g, PassAction("ghost"))
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	p2, _ := g.Player("p2")
	p2.IsAlive = false
	err = Validate(g, Action{PlayerID: "p2", Type: ActionNightAction, NightType: NightKill, TargetID: "p3"})
	assert.ErrorIs(t, err, ErrPlayerDead)
}

func TestValidatePhaseLegality(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	require.Equal(t, PhaseNight, g.Phase)

	// Day actions are illegal at night.
	err := Validate(g, Action{PlayerID: "p2", Type: ActionSpeak, Message: "hi"})
	assert.ErrorIs(t, err, ErrWrongPhase)

	resolveQuietNight(t, g)

	// Night actions are illegal by day.
	err = Validate(g, Action{PlayerID: "p0", Type: ActionNightAction, NightType: NightKill, TargetID: "p2"})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestValidateNightRoleOwnership(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDoctor, RoleDetective, RoleVillager)

	// A detective cannot kill, a mafia cannot investigate.
	err := Validate(g, Action{PlayerID: "p2", Type: ActionNightAction, NightType: NightKill, TargetID: "p3"})
	assert.ErrorIs(t, err, ErrWrongPhase)
	err = Validate(g, Action{PlayerID: "p0", Type: ActionNightAction, NightType: NightInvestigate, TargetID: "p3"})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestValidateNightTargets(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDoctor, RoleDetective, RoleVillager)

	// Mafia cannot kill mafia.
	err := Validate(g, Action{PlayerID: "p0", Type: ActionNightAction, NightType: NightKill, TargetID: "p0"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// Detective cannot investigate themselves.
	err = Validate(g, Action{PlayerID: "p2", Type: ActionNightAction, NightType: NightInvestigate, TargetID: "p2"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// Doctor self-save is allowed.
	err = Validate(g, Action{PlayerID: "p1", Type: ActionNightAction, NightType: NightSave, TargetID: "p1"})
	assert.NoError(t, err)

	// Dead or unknown targets are rejected.
	err = Validate(g, Action{PlayerID: "p0", Type: ActionNightAction, NightType: NightKill, TargetID: "ghost"})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestValidateNightDoubleAct(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDoctor, RoleDetective, RoleVillager)

	nightAction(t, g, "p0", NightKill, "p3")
	err := Validate(g, Action{PlayerID: "p0", Type: ActionNightAction, NightType: NightKill, TargetID: "p1"})
	assert.ErrorIs(t, err, ErrAlreadyActed)
}

func TestValidateVoting(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	nominate(t, g, "p0", "p2")
	nominate(t, g, "p1", "p2")
	nominate(t, g, "p2", "p0")
	nominate(t, g, "p3", "p0")
	require.Equal(t, PhaseDayVoting, g.Phase)

	// Votes must pick one of the two nominees.
	err := Validate(g, Action{PlayerID: "p1", Type: ActionVote, NomineeID: "p3"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	vote(t, g, "p1", "p0")
	err = Validate(g, Action{PlayerID: "p1", Type: ActionVote, NomineeID: "p2"})
	assert.ErrorIs(t, err, ErrAlreadyActed)
}

func TestValidateSelfNomination(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	err := Validate(g, Action{PlayerID: "p0", Type: ActionNominate, TargetID: "p0"})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
