package domain

import (
	"fmt"
	"math/rand"
)

// RoleCounts is a target role distribution: how many seats get each role.
type RoleCounts map[Role]int

// DefaultRoleCounts scales a standard distribution to n seats: fixed mafia
// count scaled to n, one detective, one doctor (games of six or more),
// remainder villagers.
func DefaultRoleCounts(n int) RoleCounts {
	if n < 6 {
		return RoleCounts{
			RoleMafia:     1,
			RoleDetective: 1,
			RoleVillager:  n - 2,
		}
	}
	mafia := n / 4
	if mafia < 2 {
		mafia = 2
	}
	return RoleCounts{
		RoleMafia:     mafia,
		RoleDetective: 1,
		RoleDoctor:    1,
		RoleVillager:  n - mafia - 2,
	}
}

// AssignRoles produces a role per seat: a uniformly random permutation of
// the role multiset over the n seats, deterministic for a given seed.
// Every seat-to-role mapping consistent with the counts is equally likely.
func AssignRoles(n int, counts RoleCounts, seed int64) ([]Role, error) {
	if err := checkCounts(n, counts); err != nil {
		return nil, err
	}

	roles := make([]Role, 0, n)
	for _, role := range []Role{RoleMafia, RoleDoctor, RoleDetective, RoleVillager} {
		for i := 0; i < counts[role]; i++ {
			roles = append(roles, role)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	return roles, nil
}

func checkCounts(n int, counts RoleCounts) error {
	total := 0
	for role, count := range counts {
		if count < 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("negative count for %s", role)}
		}
		switch role {
		case RoleMafia, RoleDoctor, RoleDetective, RoleVillager:
		default:
			return &ConfigurationError{Reason: fmt.Sprintf("unknown role %q", role)}
		}
		total += count
	}
	if total != n {
		return &ConfigurationError{Reason: fmt.Sprintf("role counts sum to %d, want %d", total, n)}
	}
	if counts[RoleMafia] < 1 {
		return &ConfigurationError{Reason: "at least one mafia required"}
	}
	if n-counts[RoleMafia] < 1 {
		return &ConfigurationError{Reason: "at least one non-mafia required"}
	}
	return nil
}
