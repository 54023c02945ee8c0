package domain

// ActionType discriminates the action union. Payload fields are required
// per variant and checked at the validation boundary.
type ActionType string

const (
	ActionSpeak       ActionType = "SPEAK"
	ActionNominate    ActionType = "NOMINATE"
	ActionVote        ActionType = "VOTE"
	ActionPass        ActionType = "PASS"
	ActionNightAction ActionType = "NIGHT_ACTION"
)

// NightActionType discriminates the role-specific night abilities.
type NightActionType string

const (
	NightKill        NightActionType = "KILL"
	NightSave        NightActionType = "SAVE"
	NightInvestigate NightActionType = "INVESTIGATE"
)

// Action is a single submitted action: a tagged union keyed by Type.
//
//	SPEAK        -> Message
//	NOMINATE     -> TargetID
//	VOTE         -> NomineeID
//	PASS         -> no payload
//	NIGHT_ACTION -> NightType + TargetID
type Action struct {
	PlayerID  string          `json:"playerId"`
	Type      ActionType      `json:"actionType"`
	Message   string          `json:"message,omitempty"`
	TargetID  string          `json:"targetId,omitempty"`
	NomineeID string          `json:"nomineeId,omitempty"`
	NightType NightActionType `json:"nightActionType,omitempty"`
}

// PassAction builds the default no-op action for a player. Deadline
// expiries and failed agent decisions degrade to this.
func PassAction(playerID string) Action {
	return Action{PlayerID: playerID, Type: ActionPass}
}

// wellFormed checks that the per-variant required fields are present.
func (a Action) wellFormed() bool {
	switch a.Type {
	case ActionSpeak:
		return a.Message != ""
	case ActionNominate:
		return a.TargetID != ""
	case ActionVote:
		return a.NomineeID != ""
	case ActionPass:
		return true
	case ActionNightAction:
		switch a.NightType {
		case NightKill, NightSave, NightInvestigate:
			return a.TargetID != ""
		}
		return false
	}
	return false
}
