package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"mafia/internal/domain"
)

// MemoryStore holds each agent player's freeform working memory between
// prompts. It is owned by one session worker and is not safe for
// concurrent use.
type MemoryStore struct {
	memories map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memories: make(map[string]string)}
}

// Get returns a player's memory text, "" if none yet.
func (m *MemoryStore) Get(playerID string) string {
	return m.memories[playerID]
}

// Set replaces a player's memory text.
func (m *MemoryStore) Set(playerID, text string) {
	m.memories[playerID] = text
}

// BuildMemoryPrompt asks the model to rewrite its own working memory
// after a phase. The model owns the format; the game only stores the
// blob.
func BuildMemoryPrompt(g *domain.Game, playerID, current string) string {
	player, ok := g.Player(playerID)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Update Your Working Memory\n\n")
	fmt.Fprintf(&b, "**Your identity**: %s, role %s, team %s.\n\n", player.Name, player.Role, player.Team)
	b.WriteString("Based on what has happened so far, update your working memory.\n")
	b.WriteString("Write whatever you want to remember - suspicions, facts, strategies, patterns.\n")
	b.WriteString("This is YOUR memory; organize it however you think is best.\n\n")

	if events := visibleEventLines(g, playerID); events != "" {
		fmt.Fprintf(&b, "**Recent events:**\n%s\n\n", events)
	}
	if current != "" {
		fmt.Fprintf(&b, "**Your current memory:**\n%s\n\n", current)
	}

	b.WriteString("Respond with JSON:\n```json\n{\"memory\": \"your updated memory text\"}\n```\n")
	return b.String()
}

// ParseMemory decodes the memory-update completion.
func ParseMemory(content string) (string, error) {
	raw := extractJSON(content)
	if raw == "" {
		return "", fmt.Errorf("%w: no JSON object", ErrBadActionJSON)
	}
	var payload struct {
		Memory string `json:"memory"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", err
	}
	return strings.TrimSpace(payload.Memory), nil
}

func visibleEventLines(g *domain.Game, playerID string) string {
	var lines []string
	for _, e := range g.VisibleEvents(playerID) {
		switch e.Type {
		case domain.EventKill:
			if t, ok := g.Player(e.TargetID); ok {
				lines = append(lines, fmt.Sprintf("Night %d: %s killed (was %s)", e.Day+1, t.Name, e.Data["role"]))
			}
		case domain.EventEliminate:
			if p, ok := g.Player(e.PlayerID); ok {
				lines = append(lines, fmt.Sprintf("Day %d: %s eliminated (was %s)", e.Day, p.Name, e.Data["role"]))
			}
		case domain.EventNightAction:
			if e.Data["actionType"] == string(domain.NightInvestigate) {
				if t, ok := g.Player(e.TargetID); ok {
					lines = append(lines, fmt.Sprintf("Night %d: you investigated %s: %s", e.Day+1, t.Name, e.Data["result"]))
				}
			}
		}
	}
	return strings.Join(lines, "\n")
}
