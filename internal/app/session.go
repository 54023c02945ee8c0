package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mafia/internal/agent"
	"mafia/internal/domain"
)

// ClientConnection is a subscriber for one viewer's state pushes. The
// implementation must tolerate Send being called from the session
// worker while the connection is closing.
type ClientConnection interface {
	SendSnapshot(snap domain.Snapshot) error
	PlayerID() string
	Close() error
}

// Timing holds the per-phase deadlines. A zero duration disables the
// deadline for that phase.
type Timing struct {
	DiscussionTurn time.Duration
	Night          time.Duration
	Voting         time.Duration
}

// Session owns one game. All game access goes through a single worker
// goroutine consuming the commands channel, so the domain layer never
// needs locks. Producers are the HTTP/WS transports (human actions,
// queries), gateway goroutines (agent decisions, recaps, memory
// updates) and deadline timers.
type Session struct {
	id           string
	game         *domain.Game
	gateway      agent.Gateway
	memory       *agent.MemoryStore
	timing       Timing
	summaryModel string
	logger       *slog.Logger

	commands chan func()
	done     chan struct{}
	closeMu  sync.Mutex
	closed   bool
	ctx      context.Context
	cancel   context.CancelFunc

	clients   map[string]ClientConnection // connection id -> client
	clientsMu sync.RWMutex

	lastActivity atomic.Int64 // unix nanos, read by the hub's cleanup loop

	// Worker-owned; never touched outside the run loop.
	epoch     int
	phase     domain.Phase
	speakerID string
	deadline  *time.Timer
	lastRecap string
}

// NewSession wraps a fresh game and starts its worker.
func NewSession(game *domain.Game, gateway agent.Gateway, timing Timing, summaryModel string, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:           game.ID,
		game:         game,
		gateway:      gateway,
		memory:       agent.NewMemoryStore(),
		timing:       timing,
		summaryModel: summaryModel,
		logger:       logger.With("gameID", game.ID),
		commands:     make(chan func(), 64),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		clients:      make(map[string]ClientConnection),
		phase:        game.Phase,
	}
	s.lastActivity.Store(time.Now().UnixNano())

	go s.run()
	return s
}

// ID returns the game id.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the game was created. Immutable, safe without
// the worker.
func (s *Session) CreatedAt() time.Time {
	return s.game.CreatedAt
}

// LastActivity returns the time of the last processed command.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			// Commands enqueued before Close still carry callers
			// blocked on reply channels; execute them so every
			// submission gets its verdict.
			for {
				select {
				case fn := <-s.commands:
					fn()
				default:
					return
				}
			}
		case fn := <-s.commands:
			fn()
			s.lastActivity.Store(time.Now().UnixNano())
		}
	}
}

// do hands fn to the worker. Returns false if the session is closed.
// The closed check and the enqueue happen under one lock so a command
// can never land in the queue after Close decided the worker's fate;
// anything enqueued before that is drained by the run loop.
func (s *Session) do(fn func()) bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed {
		return false
	}
	s.commands <- fn
	return true
}

// Close shuts the session down. In-flight gateway calls are cancelled;
// their completions post to a closed session and are dropped. Any
// still-armed deadline timer fires into the closed session and no-ops.
func (s *Session) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	s.closeMu.Unlock()

	close(s.done)
	s.cancel()

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}

// Start begins the game: LOBBY into the first night.
func (s *Session) Start() error {
	type resp struct{ err error }
	ch := make(chan resp, 1)
	ok := s.do(func() {
		err := s.game.Start()
		if err == nil {
			s.stateChanged()
		}
		ch <- resp{err}
	})
	if !ok {
		return domain.ErrGameNotFound
	}
	return (<-ch).err
}

// Join claims the first agent seat for a human. Lobby only.
func (s *Session) Join(name string) (*domain.Player, error) {
	type resp struct {
		player *domain.Player
		err    error
	}
	ch := make(chan resp, 1)
	ok := s.do(func() {
		p, err := s.game.ClaimSeat(name)
		if err == nil {
			s.broadcast()
		}
		ch <- resp{p, err}
	})
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	r := <-ch
	return r.player, r.err
}

// Submit applies a human-submitted action and returns the domain
// verdict synchronously.
func (s *Session) Submit(a domain.Action) (domain.Result, error) {
	type resp struct {
		res domain.Result
		err error
	}
	ch := make(chan resp, 1)
	ok := s.do(func() {
		res, err := s.apply(a)
		ch <- resp{res, err}
	})
	if !ok {
		return domain.Result{}, domain.ErrGameNotFound
	}
	r := <-ch
	return r.res, r.err
}

// State returns the viewer's redacted snapshot.
func (s *Session) State(viewerID string) (domain.Snapshot, error) {
	ch := make(chan domain.Snapshot, 1)
	ok := s.do(func() {
		ch <- s.game.SnapshotFor(viewerID)
	})
	if !ok {
		return domain.Snapshot{}, domain.ErrGameNotFound
	}
	return <-ch, nil
}

// Events returns the event log as visible to the viewer.
func (s *Session) Events(viewerID string) ([]domain.Event, error) {
	ch := make(chan []domain.Event, 1)
	ok := s.do(func() {
		ch <- s.game.VisibleEvents(viewerID)
	})
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return <-ch, nil
}

// Complete reports whether the game has finished.
func (s *Session) Complete() bool {
	ch := make(chan bool, 1)
	if !s.do(func() { ch <- s.game.Complete() }) {
		return true
	}
	return <-ch
}

// PlayerCount returns the roster size. Fixed after creation.
func (s *Session) PlayerCount() int {
	return len(s.game.Players)
}

// RegisterClient subscribes a connection to state pushes and primes it
// with the current snapshot.
func (s *Session) RegisterClient(connID string, client ClientConnection) {
	s.clientsMu.Lock()
	s.clients[connID] = client
	s.clientsMu.Unlock()

	s.do(func() {
		if err := client.SendSnapshot(s.game.SnapshotFor(client.PlayerID())); err != nil {
			s.logger.Debug("initial snapshot push failed", "playerID", client.PlayerID(), "error", err)
		}
	})
}

// UnregisterClient drops a connection.
func (s *Session) UnregisterClient(connID string) {
	s.clientsMu.Lock()
	delete(s.clients, connID)
	s.clientsMu.Unlock()
}

// apply runs one action through the game and reacts to whatever state
// came out. Worker only.
func (s *Session) apply(a domain.Action) (domain.Result, error) {
	res, err := s.game.Apply(a)
	if err != nil {
		return res, err
	}
	if res.Note != "" {
		s.logger.Info("action applied", "playerID", a.PlayerID, "type", a.Type, "note", res.Note)
	}
	s.stateChanged()
	return res, nil
}

// stateChanged is the single post-mutation hook: bumps the epoch when
// the phase or speaker moved, re-arms the deadline, solicits agent
// decisions, kicks recap and memory work on phase boundaries, and
// pushes snapshots. Worker only.
func (s *Session) stateChanged() {
	prevPhase := s.phase
	phase := s.game.Phase
	speakerID := ""
	if sp := s.game.CurrentSpeaker(); sp != nil {
		speakerID = sp.ID
	}

	if phase != s.phase || speakerID != s.speakerID {
		s.epoch++
		s.phase = phase
		s.speakerID = speakerID
		s.armDeadline()
		s.solicitAgents()

		if phase != prevPhase {
			s.onPhaseBoundary(prevPhase)
		}
	}

	s.broadcast()
}

// onPhaseBoundary runs the asynchronous enrichment work tied to phase
// transitions: the narrative recap when a day ends, agent memory
// refreshes when a day or night ends.
func (s *Session) onPhaseBoundary(prevPhase domain.Phase) {
	dayEnded := (prevPhase == domain.PhaseDayDiscussion || prevPhase == domain.PhaseDayVoting) &&
		s.phase != domain.PhaseDayVoting
	nightEnded := prevPhase == domain.PhaseNight && s.phase != domain.PhaseNight

	if dayEnded && s.game.Day >= 1 {
		s.requestRecap(s.game.Day)
	}
	if dayEnded || nightEnded {
		s.refreshMemories()
	}
	if s.phase == domain.PhaseGameOver {
		s.logger.Info("game over", "winner", s.game.Winner, "day", s.game.Day)
	}
}

// armDeadline replaces the phase deadline timer for the current epoch.
func (s *Session) armDeadline() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}

	var d time.Duration
	switch s.phase {
	case domain.PhaseDayDiscussion:
		d = s.timing.DiscussionTurn
	case domain.PhaseNight:
		d = s.timing.Night
	case domain.PhaseDayVoting:
		d = s.timing.Voting
	}
	if d <= 0 {
		return
	}

	epoch := s.epoch
	s.deadline = time.AfterFunc(d, func() {
		s.do(func() { s.onDeadline(epoch) })
	})
}

// onDeadline fires the phase timeout: the current speaker passes, the
// night resolves with non-actors passing, or the ballot force-closes.
// A stale epoch means the phase already moved on its own.
func (s *Session) onDeadline(epoch int) {
	if epoch != s.epoch {
		return
	}
	s.logger.Info("phase deadline reached", "phase", s.phase, "day", s.game.Day)

	switch s.phase {
	case domain.PhaseDayDiscussion:
		if s.speakerID != "" {
			if _, err := s.apply(domain.PassAction(s.speakerID)); err != nil {
				s.logger.Error("deadline pass rejected", "playerID", s.speakerID, "error", err)
			}
		}
	case domain.PhaseNight:
		if _, err := s.game.ExpireNight(); err == nil {
			s.stateChanged()
		}
	case domain.PhaseDayVoting:
		if _, err := s.game.ExpireVoting(); err == nil {
			s.stateChanged()
		}
	}
}

// solicitAgents asks the gateway for every decision the current state
// is waiting on from an agent seat. Worker only.
func (s *Session) solicitAgents() {
	switch s.phase {
	case domain.PhaseDayDiscussion:
		speaker := s.game.CurrentSpeaker()
		if speaker != nil && !speaker.IsHuman {
			s.requestDecision(speaker)
		}

	case domain.PhaseNight:
		for _, p := range s.game.AlivePlayers() {
			if !p.IsHuman && p.Role.HasNightAction() && !s.game.Night.Acted[p.ID] {
				s.requestDecision(p)
			}
		}

	case domain.PhaseDayVoting:
		for _, p := range s.game.AlivePlayers() {
			if !p.IsHuman && !s.game.Voting.HasVoted(p.ID) {
				s.requestDecision(p)
			}
		}
	}
}

// requestDecision builds the seat's prompt while the worker still owns
// the game, then asks the gateway on a goroutine. The answer comes back
// through the command queue stamped with the soliciting epoch.
func (s *Session) requestDecision(p *domain.Player) {
	req := agent.Request{
		GameID:   s.id,
		PlayerID: p.ID,
		Model:    p.ModelID,
		Prompt:   agent.BuildActionPrompt(s.game, p.ID, s.lastRecap, s.memory.Get(p.ID)),
	}
	epoch := s.epoch

	go func() {
		action, err := s.gateway.Decide(s.ctx, req)
		s.do(func() { s.onDecision(p.ID, epoch, action, err) })
	}()
}

// onDecision lands an agent decision on the worker. Stale answers are
// dropped; failures degrade to the phase's pass-equivalent so one bad
// model never stalls the game.
func (s *Session) onDecision(playerID string, epoch int, action domain.Action, err error) {
	if s.game.Complete() {
		return
	}
	if epoch != s.epoch {
		s.logger.Debug("stale agent decision dropped", "playerID", playerID, "epoch", epoch)
		return
	}

	if err == nil {
		_, err = s.apply(action)
		if err == nil {
			return
		}
	}
	s.logger.Warn("agent decision failed, defaulting", "playerID", playerID, "phase", s.phase, "error", err)

	switch s.phase {
	case domain.PhaseDayDiscussion:
		if s.speakerID == playerID {
			if _, passErr := s.apply(domain.PassAction(playerID)); passErr != nil {
				s.logger.Error("fallback pass rejected", "playerID", playerID, "error", passErr)
			}
		}
	case domain.PhaseNight:
		if nightErr := s.game.NightPass(playerID); nightErr == nil {
			s.stateChanged()
		}
	case domain.PhaseDayVoting:
		// Leave the seat unvoted; the voting deadline closes the ballot.
	}
}

// requestRecap asks the model to narrate the finished day. The recap is
// advisory prompt context, so failures fall back to a stock line.
func (s *Session) requestRecap(day int) {
	req := agent.Request{
		GameID: s.id,
		Model:  s.summaryModel,
		Prompt: agent.BuildRecapPrompt(s.game, day),
	}

	go func() {
		recap, err := agent.Summarize(s.ctx, s.gateway, req)
		if err != nil {
			recap = agent.FallbackRecap(day)
		}
		s.do(func() { s.lastRecap = recap })
	}()
}

// refreshMemories lets each living agent rewrite its working memory.
// Best effort; a failed update keeps the previous memory.
func (s *Session) refreshMemories() {
	for _, p := range s.game.AlivePlayers() {
		if p.IsHuman {
			continue
		}
		req := agent.Request{
			GameID:   s.id,
			PlayerID: p.ID,
			Model:    p.ModelID,
			Prompt:   agent.BuildMemoryPrompt(s.game, p.ID, s.memory.Get(p.ID)),
		}
		playerID := p.ID

		go func() {
			content, err := s.gateway.Complete(s.ctx, req)
			if err != nil {
				return
			}
			text, err := agent.ParseMemory(content)
			if err != nil || text == "" {
				return
			}
			s.do(func() { s.memory.Set(playerID, text) })
		}()
	}
}

// broadcast pushes each subscriber its own redacted snapshot. Worker
// only.
func (s *Session) broadcast() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for connID, client := range s.clients {
		if err := client.SendSnapshot(s.game.SnapshotFor(client.PlayerID())); err != nil {
			s.logger.Debug("snapshot push failed", "connID", connID, "error", err)
		}
	}
}
