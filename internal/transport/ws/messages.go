package ws

import (
	"time"

	"mafia/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgSubmitAction MessageType = "submit_action"
	MsgPing         MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected    MessageType = "connected"
	MsgState        MessageType = "state"
	MsgActionResult MessageType = "action_result"
	MsgError        MessageType = "error"
	MsgPong         MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// SubmitActionPayload is the payload for submit_action message
type SubmitActionPayload struct {
	ActionType      string `json:"actionType"`
	Message         string `json:"message"`
	TargetID        string `json:"targetId"`
	NomineeID       string `json:"nomineeId"`
	NightActionType string `json:"nightActionType"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	PlayerID string          `json:"playerId,omitempty"`
	GameID   string          `json:"gameId"`
	State    domain.Snapshot `json:"state"`
}

// ActionResultPayload is the payload for action_result message
type ActionResultPayload struct {
	Note string `json:"note,omitempty"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeGameNotFound   = "GAME_NOT_FOUND"
	ErrCodeNotYourTurn    = "NOT_YOUR_TURN"
	ErrCodeWrongPhase     = "WRONG_PHASE"
	ErrCodeAlreadyActed   = "ALREADY_ACTED"
	ErrCodeInvalidTarget  = "INVALID_TARGET"
	ErrCodePlayerDead     = "PLAYER_DEAD"
	ErrCodeGameOver       = "GAME_OVER"
	ErrCodeSpectator      = "SPECTATOR"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
