package agent

import (
	"context"
	"fmt"
	"strings"

	"mafia/internal/domain"
)

// BuildRecapPrompt assembles the prompt for a narrative recap of one
// finished day. Worker-owned game access; call before handing off to a
// goroutine.
func BuildRecapPrompt(g *domain.Game, day int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize day %d of a Mafia game in two or three sentences, neutral tone.\n", day)
	b.WriteString("Cover who was accused, how the vote went, and who (if anyone) was eliminated.\n")
	b.WriteString("Do not reveal the roles of living players.\n\n## Events\n")

	for _, e := range g.Events.ByDay(day) {
		switch e.Type {
		case domain.EventSpeak:
			if p, ok := g.Player(e.PlayerID); ok {
				fmt.Fprintf(&b, "- %s said: %s\n", p.Name, e.Data["message"])
			}
		case domain.EventNominate:
			if p, ok := g.Player(e.PlayerID); ok {
				if t, ok := g.Player(e.TargetID); ok {
					fmt.Fprintf(&b, "- %s nominated %s\n", p.Name, t.Name)
				}
			}
		case domain.EventVote:
			if p, ok := g.Player(e.PlayerID); ok {
				if t, ok := g.Player(e.TargetID); ok {
					fmt.Fprintf(&b, "- %s voted against %s\n", p.Name, t.Name)
				}
			}
		case domain.EventEliminate:
			if p, ok := g.Player(e.PlayerID); ok {
				fmt.Fprintf(&b, "- %s was eliminated by vote (was %s)\n", p.Name, e.Data["role"])
			}
		}
	}
	return b.String()
}

// Summarize asks the model for a day recap. The caller supplies a
// fallback on error; a failed recap never surfaces to players.
func Summarize(ctx context.Context, gw Gateway, req Request) (string, error) {
	recap, err := gw.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(recap), nil
}

// FallbackRecap is the deterministic recap used when the model call
// fails.
func FallbackRecap(day int) string {
	return fmt.Sprintf("Day %d ended.", day)
}
