package domain

import "fmt"

// NightState accumulates role actions for the current night. A player who
// never acts before the deadline is treated as having passed.
type NightState struct {
	Acted          map[string]bool   // player id -> submitted (or passed)
	Kills          map[string]string // mafia id -> kill target id
	SaveTarget     string            // doctor's save target, "" if none
	Investigations map[string]string // detective id -> investigated target id
}

func newNightState() *NightState {
	return &NightState{
		Acted:          make(map[string]bool),
		Kills:          make(map[string]string),
		Investigations: make(map[string]string),
	}
}

// record stores an accepted night action. The caller has already validated
// phase, liveness, role and target legality.
func (n *NightState) record(actor *Player, a Action) {
	n.Acted[actor.ID] = true
	switch a.NightType {
	case NightKill:
		n.Kills[actor.ID] = a.TargetID
	case NightSave:
		n.SaveTarget = a.TargetID
	case NightInvestigate:
		n.Investigations[actor.ID] = a.TargetID
	}
}

// pass marks a player as having acted without effect.
func (n *NightState) pass(playerID string) {
	n.Acted[playerID] = true
}

// killTarget resolves the mafia's collective kill choice: the target named
// by a majority of acting mafia, ties broken by seating order with the
// lowest seat index winning. Returns "" when no mafia acted.
func (n *NightState) killTarget(g *Game) string {
	if len(n.Kills) == 0 {
		return ""
	}

	tally := make(map[string]int)
	for _, target := range n.Kills {
		tally[target]++
	}

	best := ""
	bestVotes := -1
	bestSeat := -1
	for targetID, votes := range tally {
		target, ok := g.player(targetID)
		if !ok {
			continue
		}
		if votes > bestVotes || (votes == bestVotes && target.Seat < bestSeat) {
			best = targetID
			bestVotes = votes
			bestSeat = target.Seat
		}
	}
	return best
}

// resolveNight applies the night's actions in fixed priority order:
// investigations first (results visible only to the detective), the save
// second, the kill last and negated if its target matches the save.
// Returns the id of the player who died, or "".
func (g *Game) resolveNight() string {
	night := g.Night

	for detectiveID, targetID := range night.Investigations {
		target, ok := g.player(targetID)
		if !ok {
			continue
		}
		g.Events.Append(Event{
			Type:     EventNightAction,
			Phase:    g.Phase,
			Day:      g.Day,
			PlayerID: detectiveID,
			TargetID: targetID,
			Data: map[string]string{
				"actionType": string(NightInvestigate),
				"result":     string(target.Role),
			},
		})
	}

	killTarget := night.killTarget(g)
	if killTarget == "" || killTarget == night.SaveTarget {
		return ""
	}

	victim, ok := g.player(killTarget)
	if !ok || !victim.IsAlive {
		return ""
	}
	victim.IsAlive = false
	g.Events.Append(Event{
		Type:     EventKill,
		Phase:    g.Phase,
		Day:      g.Day,
		TargetID: victim.ID,
		Data: map[string]string{
			"role": string(victim.Role),
			"team": string(victim.Team),
		},
	})
	return victim.ID
}

// nightComplete reports whether every alive player with a night ability
// has acted (or passed) this night.
func (g *Game) nightComplete() bool {
	for _, p := range g.Players {
		if p.IsAlive && p.Role.HasNightAction() && !g.Night.Acted[p.ID] {
			return false
		}
	}
	return true
}

// nightSummary describes the night's outcome for the coming day. It names
// who died and nothing about roles beyond what death reveals.
func nightSummary(day int, victim *Player) string {
	if victim == nil {
		return fmt.Sprintf("Night %d passed quietly. No one died.", day)
	}
	return fmt.Sprintf("Night %d: %s was killed. They were a %s.", day, victim.Name, victim.Role)
}
