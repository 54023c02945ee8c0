package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoleCounts(t *testing.T) {
	tests := []struct {
		n     int
		mafia int
		doc   int
		det   int
	}{
		{4, 1, 0, 1},
		{5, 1, 0, 1},
		{6, 2, 1, 1},
		{8, 2, 1, 1},
		{12, 3, 1, 1},
		{16, 4, 1, 1},
	}

	for _, tt := range tests {
		counts := DefaultRoleCounts(tt.n)
		assert.Equal(t, tt.mafia, counts[RoleMafia], "mafia for n=%d", tt.n)
		assert.Equal(t, tt.doc, counts[RoleDoctor], "doctor for n=%d", tt.n)
		assert.Equal(t, tt.det, counts[RoleDetective], "detective for n=%d", tt.n)

		total := 0
		for _, c := range counts {
			total += c
		}
		assert.Equal(t, tt.n, total, "total for n=%d", tt.n)
	}
}

func TestAssignRolesDeterministicPerSeed(t *testing.T) {
	counts := DefaultRoleCounts(8)

	first, err := AssignRoles(8, counts, 42)
	require.NoError(t, err)
	second, err := AssignRoles(8, counts, 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := AssignRoles(8, counts, 43)
	require.NoError(t, err)
	// Overwhelmingly likely to differ for an 8-seat deal.
	assert.NotEqual(t, first, other)
}

func TestAssignRolesMatchesCounts(t *testing.T) {
	counts := RoleCounts{RoleMafia: 2, RoleDoctor: 1, RoleDetective: 1, RoleVillager: 4}
	roles, err := AssignRoles(8, counts, 7)
	require.NoError(t, err)
	require.Len(t, roles, 8)

	got := make(RoleCounts)
	for _, r := range roles {
		got[r]++
	}
	assert.Equal(t, counts, got)
}

func TestAssignRolesRejectsBadCounts(t *testing.T) {
	var cfgErr *ConfigurationError

	_, err := AssignRoles(5, RoleCounts{RoleMafia: 1, RoleVillager: 3}, 1)
	assert.ErrorAs(t, err, &cfgErr, "counts must sum to n")

	_, err = AssignRoles(4, RoleCounts{RoleVillager: 4}, 1)
	assert.ErrorAs(t, err, &cfgErr, "at least one mafia")

	_, err = AssignRoles(2, RoleCounts{RoleMafia: 2}, 1)
	assert.ErrorAs(t, err, &cfgErr, "at least one non-mafia")

	_, err = AssignRoles(3, RoleCounts{RoleMafia: 1, "JESTER": 2}, 1)
	assert.ErrorAs(t, err, &cfgErr, "unknown role")
}
