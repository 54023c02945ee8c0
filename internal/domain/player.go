package domain

// Role is a player's role, assigned once at game start and immutable.
type Role string

const (
	RoleMafia     Role = "MAFIA"
	RoleDoctor    Role = "DOCTOR"
	RoleDetective Role = "DETECTIVE"
	RoleVillager  Role = "VILLAGER"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Team returns the team a role belongs to.
func (r Role) Team() Team {
	if r == RoleMafia {
		return TeamMafia
	}
	return TeamTown
}

// HasNightAction reports whether the role acts during the night phase.
func (r Role) HasNightAction() bool {
	switch r {
	case RoleMafia, RoleDoctor, RoleDetective:
		return true
	}
	return false
}

// Team represents one of the two opposing teams.
type Team string

const (
	TeamMafia Team = "MAFIA_TEAM"
	TeamTown  Team = "TOWN_TEAM"
)

// String returns the string representation of the team.
func (t Team) String() string {
	return string(t)
}

// Player represents a seat in the game. Seats are fixed for the game's
// lifetime: no joins or leaves once the game has started, and the seating
// order never changes.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Seat    int    `json:"seat"`
	Role    Role   `json:"role"`
	Team    Team   `json:"team"`
	IsAlive bool   `json:"isAlive"`
	IsHuman bool   `json:"isHuman"`

	// ModelID identifies the language model controlling this seat.
	// Set iff the player is not human.
	ModelID string `json:"modelId,omitempty"`

	// Persona is an optional playstyle hint passed to the model.
	// Never disclosed in snapshots.
	Persona string `json:"-"`
}

// NewPlayer creates a player bound to a seat and role.
func NewPlayer(id, name string, seat int, role Role) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Seat:    seat,
		Role:    role,
		Team:    role.Team(),
		IsAlive: true,
	}
}
