package agent

import (
	"fmt"
	"strings"

	"mafia/internal/domain"
)

// GameRules is the standing rules section included in every action
// prompt.
const GameRules = `## Game Rules

Mafia is a social deduction game between two teams:
- **Town** (Villagers, Detective, Doctor): win by eliminating all Mafia
- **Mafia**: win when they equal or outnumber Town

### Roles
- **Villager**: no special ability. Use logic and discussion to find Mafia.
- **Detective**: each night, investigate one player to learn their role.
- **Doctor**: each night, protect one player (including yourself) from being killed.
- **Mafia**: know each other. Each night, choose one Town player to kill.

### Game Flow
1. **Night**: Mafia kills, Doctor protects, Detective investigates
2. **Discussion**: players speak in turn, sharing suspicions; a player may
   nominate a suspect on their turn
3. **Voting**: once two players are nominated, everyone votes; the
   majority nominee is eliminated

### Strategy
- Town: find inconsistencies, share information carefully, vote out suspects
- Mafia: blend in, deflect suspicion, eliminate threats at night
- Do not reveal power roles too early - Mafia will target you!`

// BuildActionPrompt assembles the full prompt for a seat's next move.
// Must be called by the session worker while it owns the game; the
// resulting string is safe to hand to a gateway goroutine.
func BuildActionPrompt(g *domain.Game, playerID, recap, memory string) string {
	player, ok := g.Player(playerID)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Mafia Game - You are playing as an AI agent\n")
	if player.Persona != "" {
		fmt.Fprintf(&b, "\n## Your Persona\n%s\n", player.Persona)
	}
	b.WriteString(GameRules)

	fmt.Fprintf(&b, "\n\n## Current State\n- Phase: %s\n- Day: %d\n", g.Phase, g.Day)

	fmt.Fprintf(&b, "\n## Your Identity\n- **Name**: %s\n- **ID**: `%s`\n- **Role**: %s\n- **Team**: %s\n",
		player.Name, player.ID, player.Role, player.Team)

	writeRoleKnowledge(&b, g, player)
	writePlayerList(&b, g)

	if memory != "" {
		fmt.Fprintf(&b, "\n## Your Working Memory\n%s\n", memory)
	}
	if recap != "" {
		fmt.Fprintf(&b, "\n## Summary of Previous Day\n%s\n", recap)
	}
	writeEventsSummary(&b, g)

	switch g.Phase {
	case domain.PhaseNight:
		writeNightPrompt(&b, g, player)
	case domain.PhaseDayDiscussion:
		writeDiscussionPrompt(&b, g)
	case domain.PhaseDayVoting:
		writeVotingPrompt(&b, g)
	}

	return b.String()
}

func writeRoleKnowledge(b *strings.Builder, g *domain.Game, player *domain.Player) {
	switch player.Role {
	case domain.RoleMafia:
		var mates []string
		for _, p := range g.AlivePlayers() {
			if p.Role == domain.RoleMafia {
				mates = append(mates, fmt.Sprintf("%s (`%s`)", p.Name, p.ID))
			}
		}
		fmt.Fprintf(b, "\n**Mafia teammates**: %s\n", strings.Join(mates, ", "))
		b.WriteString("Your goal: eliminate Town without getting caught.\n")

	case domain.RoleDetective:
		b.WriteString("\n**Your ability**: investigate one player each night.\n")
		for _, e := range g.Events.ByType(domain.EventNightAction) {
			if e.PlayerID != player.ID || e.Data["actionType"] != string(domain.NightInvestigate) {
				continue
			}
			if target, ok := g.Player(e.TargetID); ok {
				fmt.Fprintf(b, "- Night %d: %s is **%s**\n", e.Day+1, target.Name, e.Data["result"])
			}
		}

	case domain.RoleDoctor:
		b.WriteString("\n**Your ability**: protect one player each night (including yourself).\n")

	case domain.RoleVillager:
		b.WriteString("\n**Your role**: use observation and logic to find Mafia!\n")
	}
}

func writePlayerList(b *strings.Builder, g *domain.Game) {
	alive := g.AlivePlayers()
	fmt.Fprintf(b, "\n## Players\n\n**Alive (%d)**:\n", len(alive))
	for _, p := range alive {
		fmt.Fprintf(b, "- %s (`%s`)\n", p.Name, p.ID)
	}

	var dead []*domain.Player
	for _, p := range g.Players {
		if !p.IsAlive {
			dead = append(dead, p)
		}
	}
	if len(dead) > 0 {
		fmt.Fprintf(b, "\n**Dead (%d)**:\n", len(dead))
		for _, p := range dead {
			fmt.Fprintf(b, "- %s - was %s\n", p.Name, p.Role)
		}
	}
}

func writeEventsSummary(b *strings.Builder, g *domain.Game) {
	var lines []string
	for _, e := range g.Events.ByType(domain.EventKill) {
		if target, ok := g.Player(e.TargetID); ok {
			lines = append(lines, fmt.Sprintf("Night %d: %s killed (was %s)", e.Day+1, target.Name, e.Data["role"]))
		}
	}
	for _, e := range g.Events.ByType(domain.EventEliminate) {
		if target, ok := g.Player(e.PlayerID); ok {
			lines = append(lines, fmt.Sprintf("Day %d: %s eliminated by vote (was %s)", e.Day, target.Name, e.Data["role"]))
		}
	}
	if len(lines) > 0 {
		fmt.Fprintf(b, "\n## Recent Events\n%s\n", strings.Join(lines, "\n"))
	}
}

func writeNightPrompt(b *strings.Builder, g *domain.Game, player *domain.Player) {
	b.WriteString("\n## Night Phase - Use Your Ability\n")

	switch player.Role {
	case domain.RoleMafia:
		b.WriteString("\n**Choose a Town player to kill:**\n")
		for _, p := range g.AlivePlayers() {
			if p.Team == domain.TeamTown {
				fmt.Fprintf(b, "- %s (`%s`)\n", p.Name, p.ID)
			}
		}
		writeJSONExample(b, `{"action_type": "NIGHT_ACTION", "night_action_type": "KILL", "target_id": "<id>"}`)

	case domain.RoleDoctor:
		b.WriteString("\n**Choose a player to protect:**\n")
		for _, p := range g.AlivePlayers() {
			marker := ""
			if p.ID == player.ID {
				marker = " (you)"
			}
			fmt.Fprintf(b, "- %s (`%s`)%s\n", p.Name, p.ID, marker)
		}
		writeJSONExample(b, `{"action_type": "NIGHT_ACTION", "night_action_type": "SAVE", "target_id": "<id>"}`)

	case domain.RoleDetective:
		b.WriteString("\n**Choose a player to investigate:**\n")
		for _, p := range g.AlivePlayers() {
			if p.ID != player.ID {
				fmt.Fprintf(b, "- %s (`%s`)\n", p.Name, p.ID)
			}
		}
		writeJSONExample(b, `{"action_type": "NIGHT_ACTION", "night_action_type": "INVESTIGATE", "target_id": "<id>"}`)
	}
}

func writeDiscussionPrompt(b *strings.Builder, g *domain.Game) {
	b.WriteString("\n## Discussion Phase - It Is Your Turn\n")
	b.WriteString("\nYou may SPEAK to share suspicions, NOMINATE a suspect for elimination, or PASS.\n")

	if len(g.Nominations) > 0 {
		b.WriteString("\n**Current nominations (target: supporters):**\n")
		for target, nominators := range g.Nominations {
			if p, ok := g.Player(target); ok {
				fmt.Fprintf(b, "- %s: %d\n", p.Name, len(nominators))
			}
		}
	}

	b.WriteString("\nRespond with JSON, one of:\n")
	writeJSONExample(b, `{"action_type": "SPEAK", "message": "<what you want to say>"}`)
	writeJSONExample(b, `{"action_type": "NOMINATE", "target_id": "<id>"}`)
	writeJSONExample(b, `{"action_type": "PASS"}`)
}

func writeVotingPrompt(b *strings.Builder, g *domain.Game) {
	b.WriteString("\n## Voting Phase - Cast Your Vote\n")
	if g.Voting != nil {
		for _, id := range []string{g.Voting.Nominee1, g.Voting.Nominee2} {
			if p, ok := g.Player(id); ok {
				fmt.Fprintf(b, "- %s (`%s`)\n", p.Name, p.ID)
			}
		}
	}
	b.WriteString("\nVote for the nominee you want eliminated.\n")
	writeJSONExample(b, `{"action_type": "VOTE", "nominee_id": "<id>"}`)
}

func writeJSONExample(b *strings.Builder, example string) {
	fmt.Fprintf(b, "```json\n%s\n```\n", example)
}
