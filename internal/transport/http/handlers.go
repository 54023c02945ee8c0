package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"mafia/internal/app"
	"mafia/internal/domain"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateGameRequest is the body for game creation
type CreateGameRequest struct {
	HumanName   string              `json:"humanName"`
	PlayerCount int                 `json:"playerCount"`
	Seed        int64               `json:"seed"`
	Models      []ModelConfigParams `json:"models"`
}

// ModelConfigParams selects a model for agent seats
type ModelConfigParams struct {
	Model   string `json:"model"`
	Persona string `json:"persona"`
}

// CreateGameResponse is the response for game creation
type CreateGameResponse struct {
	GameID  string          `json:"gameId"`
	Players []PlayerSummary `json:"players"`
}

// PlayerSummary is the public roster entry returned on creation
type PlayerSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Seat    int    `json:"seat"`
	IsHuman bool   `json:"isHuman"`
	ModelID string `json:"modelId,omitempty"`
}

// JoinGameRequest is the body for claiming a seat
type JoinGameRequest struct {
	Name string `json:"name"`
}

// ActionRequest is the body for submitting an action
type ActionRequest struct {
	PlayerID        string `json:"playerId"`
	ActionType      string `json:"actionType"`
	Message         string `json:"message"`
	TargetID        string `json:"targetId"`
	NomineeID       string `json:"nomineeId"`
	NightActionType string `json:"nightActionType"`
}

// ActionResponse is the verdict on a submitted action
type ActionResponse struct {
	Note string `json:"note,omitempty"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveGames  int `json:"activeGames"`
	TotalPlayers int `json:"totalPlayers"`
}

// handleCreateGame handles POST /api/games
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}

	params := app.CreateParams{
		HumanName:   req.HumanName,
		PlayerCount: req.PlayerCount,
		Seed:        req.Seed,
	}
	for _, m := range req.Models {
		params.Models = append(params.Models, app.ModelConfig{Model: m.Model, Persona: m.Persona})
	}

	session, err := s.hub.CreateGame(params)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.sendError(w, http.StatusBadRequest, "INVALID_CONFIGURATION", cfgErr.Error())
			return
		}
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create game")
		return
	}

	snap, err := session.State("")
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	resp := &CreateGameResponse{GameID: session.ID()}
	for _, p := range snap.Players {
		resp.Players = append(resp.Players, PlayerSummary{
			ID:      p.ID,
			Name:    p.Name,
			Seat:    p.Seat,
			IsHuman: p.IsHuman,
			ModelID: p.ModelID,
		})
	}
	s.sendSuccess(w, resp)
}

// handleGetGame handles GET /api/games/{gameID}?playerId=
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	snap, err := session.State(r.URL.Query().Get("playerId"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendSuccess(w, snap)
}

// handleDeleteGame handles DELETE /api/games/{gameID}
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	s.hub.Delete(r.PathValue("gameID"))
	s.sendSuccess(w, nil)
}

// handleStartGame handles POST /api/games/{gameID}/start
func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := session.Start(); err != nil {
		s.sendDomainError(w, err)
		return
	}

	snap, err := session.State("")
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendSuccess(w, snap)
}

// handleJoinGame handles POST /api/games/{gameID}/join
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.sendError(w, http.StatusBadRequest, "BAD_REQUEST", "A player name is required")
		return
	}

	player, err := session.Join(req.Name)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, &PlayerSummary{
		ID:      player.ID,
		Name:    player.Name,
		Seat:    player.Seat,
		IsHuman: player.IsHuman,
	})
}

// handleSubmitAction handles POST /api/games/{gameID}/actions
func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}

	result, err := session.Submit(domain.Action{
		PlayerID:  req.PlayerID,
		Type:      domain.ActionType(req.ActionType),
		Message:   req.Message,
		TargetID:  req.TargetID,
		NomineeID: req.NomineeID,
		NightType: domain.NightActionType(req.NightActionType),
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendSuccess(w, &ActionResponse{Note: result.Note})
}

// handleGetEvents handles GET /api/games/{gameID}/events?playerId=
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	events, err := session.Events(r.URL.Query().Get("playerId"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendSuccess(w, events)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveGames:  s.hub.SessionCount(),
		TotalPlayers: s.hub.PlayerCount(),
	})
}

// session resolves the {gameID} path value, answering 404 itself when
// the game does not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	gameID := r.PathValue("gameID")
	if gameID == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_GAME_ID", "Game id is required")
		return nil, false
	}

	session, err := s.hub.Get(gameID)
	if err != nil {
		s.sendDomainError(w, err)
		return nil, false
	}
	return session, true
}

// domainErrorCodes maps domain rejections to HTTP status and API code.
var domainErrorCodes = map[error]struct {
	status int
	code   string
}{
	domain.ErrGameNotFound:    {http.StatusNotFound, "GAME_NOT_FOUND"},
	domain.ErrUnknownPlayer:   {http.StatusNotFound, "UNKNOWN_PLAYER"},
	domain.ErrGameStarted:     {http.StatusConflict, "GAME_ALREADY_STARTED"},
	domain.ErrGameNotStarted:  {http.StatusConflict, "GAME_NOT_STARTED"},
	domain.ErrSeatsTaken:      {http.StatusConflict, "NO_SEAT_AVAILABLE"},
	domain.ErrGameOver:        {http.StatusConflict, "GAME_OVER"},
	domain.ErrWrongPhase:      {http.StatusConflict, "WRONG_PHASE"},
	domain.ErrNotYourTurn:     {http.StatusConflict, "NOT_YOUR_TURN"},
	domain.ErrAlreadyActed:    {http.StatusConflict, "ALREADY_ACTED"},
	domain.ErrPlayerDead:      {http.StatusConflict, "PLAYER_DEAD"},
	domain.ErrInvalidTarget:   {http.StatusUnprocessableEntity, "INVALID_TARGET"},
	domain.ErrMalformedAction: {http.StatusBadRequest, "MALFORMED_ACTION"},
}

// sendDomainError translates a domain error into the API envelope.
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	for sentinel, m := range domainErrorCodes {
		if errors.Is(err, sentinel) {
			s.sendError(w, m.status, m.code, err.Error())
			return
		}
	}
	s.logger.Error("unhandled domain error", "error", err)
	s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
