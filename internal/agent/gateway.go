// Package agent connects game seats to autonomous language-model
// players. The orchestrator consumes it as a capability: ask for the
// seat's next move given the visible game context, asynchronously,
// tolerating timeouts and failures.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mafia/internal/domain"
)

// Request carries everything a gateway call needs. Prompts are built by
// the session worker while it owns the game; the gateway itself never
// touches game state.
type Request struct {
	GameID   string
	PlayerID string
	Model    string
	Prompt   string
}

// Gateway is the external decision-making capability. Implementations
// must tolerate concurrent outstanding requests from many sessions.
type Gateway interface {
	// Decide asks the model for the player's next action. The returned
	// action still gets validated against the current game state on
	// arrival; a slow answer may be stale by then.
	Decide(ctx context.Context, req Request) (domain.Action, error)

	// Complete runs a free-form completion (day recaps, memory updates).
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	ErrEmptyCompletion = errors.New("model returned an empty completion")
	ErrBadActionJSON   = errors.New("model response is not a valid action")
)

// actionPayload is the JSON shape the prompts instruct models to emit.
type actionPayload struct {
	ActionType      string `json:"action_type"`
	Message         string `json:"message"`
	TargetID        string `json:"target_id"`
	NomineeID       string `json:"nominee_id"`
	NightActionType string `json:"night_action_type"`
}

// ParseAction decodes a model completion into an action for the given
// player. Models wrap JSON in code fences or prose often enough that
// both are stripped before decoding.
func ParseAction(playerID, content string) (domain.Action, error) {
	raw := extractJSON(content)
	if raw == "" {
		return domain.Action{}, fmt.Errorf("%w: %q", ErrBadActionJSON, truncate(content, 120))
	}

	var payload actionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Action{}, fmt.Errorf("%w: %v", ErrBadActionJSON, err)
	}

	return domain.Action{
		PlayerID:  playerID,
		Type:      domain.ActionType(payload.ActionType),
		Message:   payload.Message,
		TargetID:  payload.TargetID,
		NomineeID: payload.NomineeID,
		NightType: domain.NightActionType(payload.NightActionType),
	}, nil
}

// extractJSON strips markdown code fences and surrounding prose, keeping
// the outermost JSON object.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
