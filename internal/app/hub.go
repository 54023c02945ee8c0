package app

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mafia/internal/agent"
	"mafia/internal/domain"
)

const (
	// StaleGameTimeout is how long a session may sit idle before the
	// cleanup loop reclaims it.
	StaleGameTimeout = 2 * time.Hour

	// FinishedGameLinger keeps finished games around long enough for
	// clients to fetch the outcome.
	FinishedGameLinger = 15 * time.Minute

	cleanupInterval = 10 * time.Minute
)

// HubConfig carries the game defaults applied when a create request
// leaves them unset.
type HubConfig struct {
	DefaultPlayerCount int
	DefaultModel       string
	SummaryModel       string
	Timing             Timing
}

// ModelConfig picks the model behind one agent seat, with an optional
// playstyle persona.
type ModelConfig struct {
	Model   string
	Persona string
}

// CreateParams describes a new game. Seats beyond the optional human
// are dealt to the given models round-robin; an empty model list uses
// the hub's default model for every agent seat.
type CreateParams struct {
	HumanName   string
	Models      []ModelConfig
	PlayerCount int
	Seed        int64
}

// Hub manages all active game sessions.
type Hub struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	gateway  agent.Gateway
	cfg      HubConfig
	logger   *slog.Logger
	done     chan struct{}
}

// NewHub creates the hub and starts its cleanup loop.
func NewHub(gateway agent.Gateway, cfg HubConfig, logger *slog.Logger) *Hub {
	h := &Hub{
		sessions: make(map[string]*Session),
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go h.cleanupLoop()

	return h
}

// CreateGame builds a roster, deals roles and starts a session worker.
// The game stays in LOBBY until started.
func (h *Hub) CreateGame(params CreateParams) (*Session, error) {
	if params.PlayerCount == 0 {
		params.PlayerCount = h.cfg.DefaultPlayerCount
	}
	if params.Seed == 0 {
		params.Seed = time.Now().UnixNano()
	}
	if len(params.Models) == 0 {
		params.Models = []ModelConfig{{Model: h.cfg.DefaultModel}}
	}

	players, err := h.buildRoster(params)
	if err != nil {
		return nil, err
	}

	game, err := domain.NewGame(uuid.NewString(), players)
	if err != nil {
		return nil, err
	}

	session := NewSession(game, h.gateway, h.cfg.Timing, h.cfg.SummaryModel, h.logger)

	h.mu.Lock()
	h.sessions[game.ID] = session
	h.mu.Unlock()

	h.logger.Info("game created",
		"gameID", game.ID,
		"players", params.PlayerCount,
		"hasHuman", params.HumanName != "",
	)
	return session, nil
}

// buildRoster deals seats and roles. Seat zero goes to the human when a
// name was given; every other seat gets a model.
func (h *Hub) buildRoster(params CreateParams) ([]*domain.Player, error) {
	n := params.PlayerCount
	roles, err := domain.AssignRoles(n, domain.DefaultRoleCounts(n), params.Seed)
	if err != nil {
		return nil, err
	}

	players := make([]*domain.Player, 0, n)
	nameCounts := make(map[string]int)
	modelIdx := 0

	for seat := 0; seat < n; seat++ {
		if seat == 0 && params.HumanName != "" {
			p := domain.NewPlayer(uuid.NewString(), params.HumanName, seat, roles[seat])
			p.IsHuman = true
			players = append(players, p)
			continue
		}

		mc := params.Models[modelIdx%len(params.Models)]
		modelIdx++

		nameCounts[mc.Model]++
		name := fmt.Sprintf("%s %d", shortModelName(mc.Model), nameCounts[mc.Model])

		p := domain.NewPlayer(uuid.NewString(), name, seat, roles[seat])
		p.ModelID = mc.Model
		p.Persona = mc.Persona
		players = append(players, p)
	}

	return players, nil
}

// shortModelName strips the provider prefix from an OpenRouter model id
// ("google/gemini-2.5-flash" becomes "gemini-2.5-flash").
func shortModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}

// Get returns a session by game id.
func (h *Hub) Get(gameID string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return session, nil
}

// Delete removes and closes a session.
func (h *Hub) Delete(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[gameID]; ok {
		session.Close()
		delete(h.sessions, gameID)
		h.logger.Info("game deleted", "gameID", gameID)
	}
}

// SessionCount returns the number of active sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// PlayerCount returns the total number of seats across all sessions.
func (h *Hub) PlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.PlayerCount()
	}
	return total
}

// Close shuts down the hub and all sessions.
func (h *Hub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*Session)
}

func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleGames()
		}
	}
}

// cleanupStaleGames reclaims finished games past their linger window
// and any session idle beyond the stale timeout.
func (h *Hub) cleanupStaleGames() {
	h.mu.RLock()
	candidates := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		candidates = append(candidates, session)
	}
	h.mu.RUnlock()

	now := time.Now()
	for _, session := range candidates {
		idle := now.Sub(session.LastActivity())
		finished := session.Complete()

		if (finished && idle > FinishedGameLinger) || idle > StaleGameTimeout {
			h.Delete(session.ID())
			h.logger.Info("stale game cleaned up", "gameID", session.ID(), "finished", finished)
		}
	}
}
