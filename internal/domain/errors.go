package domain

import (
	"errors"
	"fmt"
)

// Rejection reasons for submitted actions. Validation never mutates game
// state; every submission maps to exactly one of these or is accepted.
var (
	ErrUnknownPlayer   = errors.New("player is not part of this game")
	ErrPlayerDead      = errors.New("dead players cannot act")
	ErrWrongPhase      = errors.New("action is not legal in the current phase")
	ErrNotYourTurn     = errors.New("it is not your turn")
	ErrAlreadyActed    = errors.New("already acted this round")
	ErrInvalidTarget   = errors.New("invalid action target")
	ErrMalformedAction = errors.New("malformed action")
	ErrGameOver        = errors.New("the game is over")
)

// Registry and lifecycle errors.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameStarted    = errors.New("game already started")
	ErrGameNotStarted = errors.New("game has not started")
	ErrSeatsTaken     = errors.New("no free seat to join")
)

// ConfigurationError reports an unplayable roster or role distribution.
// It is fatal to game creation.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid game configuration: %s", e.Reason)
}
