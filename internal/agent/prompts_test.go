package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mafia/internal/domain"
)

func buildGame(t *testing.T, roles ...domain.Role) *domain.Game {
	t.Helper()
	players := make([]*domain.Player, len(roles))
	names := []string{"Ada", "Ben", "Cleo", "Dan", "Eve", "Fox", "Gil", "Hal"}
	for i, role := range roles {
		id := names[i]
		players[i] = domain.NewPlayer(id, id, i, role)
		players[i].ModelID = "test/model"
	}
	g, err := domain.NewGame("g1", players)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	return g
}

func TestActionPromptMafiaSeesTeammates(t *testing.T) {
	g := buildGame(t, domain.RoleMafia, domain.RoleMafia, domain.RoleDetective, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)

	prompt := BuildActionPrompt(g, "Ada", "", "")
	assert.Contains(t, prompt, "Mafia teammates")
	assert.Contains(t, prompt, "Ben")
	assert.Contains(t, prompt, `"night_action_type": "KILL"`)

	// A villager's prompt reveals no mafia.
	villagerPrompt := BuildActionPrompt(g, "Dan", "", "")
	assert.NotContains(t, villagerPrompt, "Mafia teammates")
}

func TestActionPromptDetectiveSeesPriorResults(t *testing.T) {
	g := buildGame(t, domain.RoleMafia, domain.RoleDoctor, domain.RoleDetective, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)

	act := func(id string, kind domain.NightActionType, target string) {
		_, err := g.Apply(domain.Action{PlayerID: id, Type: domain.ActionNightAction, NightType: kind, TargetID: target})
		require.NoError(t, err)
	}
	act("Ada", domain.NightKill, "Dan")
	act("Ben", domain.NightSave, "Dan")
	act("Cleo", domain.NightInvestigate, "Ada")

	prompt := BuildActionPrompt(g, "Cleo", "", "")
	assert.Contains(t, prompt, "Night 1: Ada is **MAFIA**")

	// No other seat sees the result.
	other := BuildActionPrompt(g, "Dan", "", "")
	assert.NotContains(t, other, "MAFIA**")
}

func TestActionPromptIncludesMemoryAndRecap(t *testing.T) {
	g := buildGame(t, domain.RoleMafia, domain.RoleDetective, domain.RoleVillager, domain.RoleVillager)

	prompt := BuildActionPrompt(g, "Cleo", "Yesterday Ben was accused.", "Ada talks too much.")
	assert.Contains(t, prompt, "## Your Working Memory\nAda talks too much.")
	assert.Contains(t, prompt, "## Summary of Previous Day\nYesterday Ben was accused.")
}

func TestActionPromptPersona(t *testing.T) {
	g := buildGame(t, domain.RoleMafia, domain.RoleDetective, domain.RoleVillager, domain.RoleVillager)
	p, _ := g.Player("Dan")
	p.Persona = "You are cautious and analytical."

	prompt := BuildActionPrompt(g, "Dan", "", "")
	assert.Contains(t, prompt, "## Your Persona\nYou are cautious and analytical.")
}

func TestActionPromptVotingListsNominees(t *testing.T) {
	g := buildGame(t, domain.RoleMafia, domain.RoleDetective, domain.RoleVillager, domain.RoleVillager)
	for _, p := range g.AlivePlayers() {
		if p.Role.HasNightAction() {
			require.NoError(t, g.NightPass(p.ID))
		}
	}

	nom := func(id, target string) {
		_, err := g.Apply(domain.Action{PlayerID: id, Type: domain.ActionNominate, TargetID: target})
		require.NoError(t, err)
	}
	nom("Ada", "Cleo")
	nom("Ben", "Cleo")
	nom("Cleo", "Ada")
	nom("Dan", "Ada")
	require.Equal(t, domain.PhaseDayVoting, g.Phase)

	prompt := BuildActionPrompt(g, "Ben", "", "")
	assert.Contains(t, prompt, "## Voting Phase")
	assert.Contains(t, prompt, "Cleo")
	assert.Contains(t, prompt, `"action_type": "VOTE"`)
}

func TestRecapPromptCoversDayEvents(t *testing.T) {
	g := buildGame(t, domain.RoleMafia, domain.RoleDetective, domain.RoleVillager, domain.RoleVillager)
	for _, p := range g.AlivePlayers() {
		if p.Role.HasNightAction() {
			require.NoError(t, g.NightPass(p.ID))
		}
	}

	_, err := g.Apply(domain.Action{PlayerID: "Ada", Type: domain.ActionSpeak, Message: "Ben is lying"})
	require.NoError(t, err)
	_, err = g.Apply(domain.Action{PlayerID: "Ben", Type: domain.ActionNominate, TargetID: "Ada"})
	require.NoError(t, err)

	prompt := BuildRecapPrompt(g, 1)
	assert.Contains(t, prompt, "Ada said: Ben is lying")
	assert.Contains(t, prompt, "Ben nominated Ada")
}

func TestFallbackRecap(t *testing.T) {
	assert.Equal(t, "Day 3 ended.", FallbackRecap(3))
}
