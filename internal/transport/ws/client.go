package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mafia/internal/app"
	"mafia/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents one WebSocket connection watching a game. playerID
// is empty for spectators; only seated players may submit actions.
type Client struct {
	conn     *websocket.Conn
	session  *app.Session
	connID   string
	playerID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.Session, connID, playerID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		connID:   connID,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// PlayerID implements app.ClientConnection
func (c *Client) PlayerID() string {
	return c.playerID
}

// SendSnapshot implements app.ClientConnection
func (c *Client) SendSnapshot(snap domain.Snapshot) error {
	return c.sendMessage(NewServerMessage(MsgState, snap))
}

// sendMessage serializes a message onto the send buffer. A full buffer
// drops the message; the next state push supersedes it anyway.
func (c *Client) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "connID", c.connID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.connID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgSubmitAction:
		c.handleSubmitAction(msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleSubmitAction handles a submit_action message
func (c *Client) handleSubmitAction(payload interface{}) {
	if c.playerID == "" {
		c.sendError(ErrCodeSpectator, "Spectators cannot act")
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}
	var p SubmitActionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	result, err := c.session.Submit(domain.Action{
		PlayerID:  c.playerID,
		Type:      domain.ActionType(p.ActionType),
		Message:   p.Message,
		TargetID:  p.TargetID,
		NomineeID: p.NomineeID,
		NightType: domain.NightActionType(p.NightActionType),
	})
	if err != nil {
		c.sendError(domainErrorCode(err), err.Error())
		return
	}

	c.sendMessage(NewServerMessage(MsgActionResult, &ActionResultPayload{Note: result.Note}))
}

// domainErrorCode maps a domain rejection to a wire error code.
func domainErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotYourTurn):
		return ErrCodeNotYourTurn
	case errors.Is(err, domain.ErrWrongPhase):
		return ErrCodeWrongPhase
	case errors.Is(err, domain.ErrAlreadyActed):
		return ErrCodeAlreadyActed
	case errors.Is(err, domain.ErrInvalidTarget):
		return ErrCodeInvalidTarget
	case errors.Is(err, domain.ErrPlayerDead):
		return ErrCodePlayerDead
	case errors.Is(err, domain.ErrGameOver):
		return ErrCodeGameOver
	case errors.Is(err, domain.ErrMalformedAction):
		return ErrCodeInvalidMessage
	case errors.Is(err, domain.ErrGameNotFound):
		return ErrCodeGameNotFound
	default:
		return ErrCodeInternalError
	}
}

// sendConnected sends the connected message with the viewer's snapshot
func (c *Client) sendConnected() {
	snap, err := c.session.State(c.playerID)
	if err != nil {
		c.sendError(ErrCodeGameNotFound, "Game no longer exists")
		return
	}

	c.sendMessage(NewServerMessage(MsgConnected, &ConnectedPayload{
		PlayerID: c.playerID,
		GameID:   c.session.ID(),
		State:    snap,
	}))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.sendMessage(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.sendMessage(NewServerMessage(MsgPong, nil))
}
