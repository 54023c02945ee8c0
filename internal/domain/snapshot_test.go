package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerView(t *testing.T, snap Snapshot, id string) PlayerView {
	t.Helper()
	for _, v := range snap.Players {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("player %s not in snapshot", id)
	return PlayerView{}
}

func TestSnapshotRedactsLivingRoles(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)

	snap := g.SnapshotFor("p2")

	// Own role visible, living others redacted.
	assert.Equal(t, string(RoleVillager), playerView(t, snap, "p2").Role)
	assert.Empty(t, playerView(t, snap, "p0").Role)
	assert.Empty(t, playerView(t, snap, "p0").Team)
	assert.Empty(t, playerView(t, snap, "p1").Role)
}

func TestSnapshotRevealsDeadRoles(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	p3, _ := g.Player("p3")
	p3.IsAlive = false

	snap := g.SnapshotFor("p2")
	view := playerView(t, snap, "p3")
	assert.False(t, view.IsAlive)
	assert.Equal(t, string(RoleVillager), view.Role)
	assert.Equal(t, string(TeamTown), view.Team)
}

func TestSpectatorSnapshotFullyRedacted(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)

	snap := g.SnapshotFor("")
	for _, v := range snap.Players {
		assert.Empty(t, v.Role)
	}
	assert.Empty(t, snap.Investigations)
}

func TestSnapshotInvestigationsOnlyForDetective(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDoctor, RoleDetective, RoleVillager, RoleVillager)

	nightAction(t, g, "p0", NightKill, "p3")
	nightAction(t, g, "p1", NightSave, "p3")
	nightAction(t, g, "p2", NightInvestigate, "p0")

	det := g.SnapshotFor("p2")
	require.Len(t, det.Investigations, 1)
	assert.Equal(t, "p0", det.Investigations[0].TargetID)
	assert.Equal(t, string(RoleMafia), det.Investigations[0].Result)
	assert.Equal(t, 1, det.Investigations[0].Night)

	assert.Empty(t, g.SnapshotFor("p0").Investigations)
	assert.Empty(t, g.SnapshotFor("p4").Investigations)
}

func TestSnapshotVotesAreAttributed(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	nominate(t, g, "p0", "p2")
	nominate(t, g, "p1", "p2")
	nominate(t, g, "p2", "p0")
	nominate(t, g, "p3", "p0")
	vote(t, g, "p1", "p0")

	snap := g.SnapshotFor("p3")
	require.NotNil(t, snap.Voting)
	assert.Equal(t, map[string]string{"p1": "p0"}, snap.Voting.Votes)
}

func TestSnapshotCurrentSpeaker(t *testing.T) {
	g := newTestGame(t, RoleMafia, RoleDetective, RoleVillager, RoleVillager)
	resolveQuietNight(t, g)

	snap := g.SnapshotFor("")
	assert.Equal(t, "p0", snap.CurrentSpeakerID)

	speak(t, g, "p0", "hi")
	snap = g.SnapshotFor("")
	assert.Equal(t, "p1", snap.CurrentSpeakerID)
}
