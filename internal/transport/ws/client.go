package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wordsearch/internal/app"
	"wordsearch/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	conn     *websocket.Conn
	hub      *app.GameHub
	session  *app.GameSession
	clientID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.GameHub, session *app.GameSession, clientID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		hub:      hub,
		session:  session,
		clientID: clientID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("clientID", clientID),
	}
}

// GetClientID implements app.ClientConnection interface
func (c *Client) GetClientID() string {
	return c.clientID
}

// Rebind implements app.ClientConnection interface. Registration happens
// under the client lock so it cannot interleave with readPump's teardown.
func (c *Client) Rebind(session *app.GameSession) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.session = session
	session.RegisterClient(c.clientID, c)
	return true
}

// currentSession returns the session the client is attached to
func (c *Client) currentSession() *app.GameSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Send implements app.ClientConnection interface. Domain events are
// converted to their client message type.
func (c *Client) Send(message interface{}) error {
	if event, ok := message.(*domain.GameEvent); ok {
		msgType, known := eventMessages[event.Type]
		if !known {
			return nil
		}
		message = NewServerMessage(msgType, event.Payload)
	}

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
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
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
		// Close first: a replace that races with this sees the client closed
		c.Close()
		c.currentSession().UnregisterClient(c.clientID)
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
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
	case MsgPointerDown:
		c.handlePointerDown(msg.Payload)
	case MsgPointerMove:
		c.handlePointerMove(msg.Payload)
	case MsgPointerUp:
		c.handlePointerUp(msg.Payload)
	case MsgSelect:
		c.handleSelect(msg.Payload)
	case MsgSolve:
		c.handleSolve()
	case MsgNewGame:
		c.handleNewGame(msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// decodeCoord reads a {row,col} payload, reporting an error to the client if it is malformed
func (c *Client) decodeCoord(raw json.RawMessage) (domain.Coord, bool) {
	var payload CoordPayload
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return domain.Coord{}, false
	}

	coord, ok := payload.Coord()
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Row and col are required")
	}
	return coord, ok
}

// handlePointerDown handles a pointer_down message
func (c *Client) handlePointerDown(raw json.RawMessage) {
	coord, ok := c.decodeCoord(raw)
	if !ok {
		return
	}

	if err := c.currentSession().PointerDown(c.clientID, coord); err != nil {
		c.sendDomainError(err)
	}
}

// handlePointerMove handles a pointer_move message. Moves without an active
// drag are ignored.
func (c *Client) handlePointerMove(raw json.RawMessage) {
	coord, ok := c.decodeCoord(raw)
	if !ok {
		return
	}

	c.currentSession().PointerMove(c.clientID, coord)
}

// handlePointerUp handles a pointer_up message
func (c *Client) handlePointerUp(raw json.RawMessage) {
	coord, ok := c.decodeCoord(raw)
	if !ok {
		return
	}

	if _, err := c.currentSession().PointerUp(c.clientID, coord); err != nil {
		c.sendDomainError(err)
	}
}

// handleSelect handles a select message
func (c *Client) handleSelect(raw json.RawMessage) {
	var payload SelectPayload
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil || payload.Start == nil || payload.End == nil {
		c.sendError(ErrCodeInvalidMessage, "Selection needs a start and an end")
		return
	}

	sel := domain.Selection{Start: *payload.Start, End: *payload.End}
	if _, err := c.currentSession().Select(c.clientID, sel); err != nil {
		c.sendDomainError(err)
	}
}

// handleSolve handles a solve message
func (c *Client) handleSolve() {
	if _, err := c.currentSession().Solve(); err != nil {
		c.sendDomainError(err)
	}
}

// handleNewGame handles a new_game message. Every client of the old game
// follows to the new one.
func (c *Client) handleNewGame(raw json.RawMessage) {
	var payload NewGamePayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Invalid payload")
			return
		}
	}
	if payload.Size < 0 {
		c.sendError(ErrCodeInvalidRequest, "Size must not be negative")
		return
	}

	_, err := c.hub.ReplaceGame(c.currentSession().GetGameID(), app.NewGameRequest{
		Theme: payload.Theme,
		Size:  payload.Size,
		Words: payload.Words,
	})
	if err != nil {
		c.sendDomainError(err)
	}
}

// sendDomainError maps a domain error onto an error message
func (c *Client) sendDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		c.sendError(ErrCodeGameNotFound, "Game not found")
	case errors.Is(err, domain.ErrOutOfBounds):
		c.sendError(ErrCodeOutOfBounds, "Cell is outside the grid")
	case errors.Is(err, domain.ErrNoActiveDrag):
		c.sendError(ErrCodeInvalidAction, "No selection in progress")
	case errors.Is(err, domain.ErrInvalidPhase), errors.Is(err, domain.ErrInvalidTransition):
		c.sendError(ErrCodeInvalidAction, "Action not allowed in the current phase")
	case errors.Is(err, domain.ErrUnplaceableWord):
		c.sendError(ErrCodeGenerationFailed, "Could not fit every word in the grid")
	case errors.Is(err, domain.ErrInvalidWord), errors.Is(err, domain.ErrNoWords):
		c.sendError(ErrCodeInvalidRequest, "Words must have at least two letters")
	case errors.Is(err, domain.ErrGridTooLarge):
		c.sendError(ErrCodeInvalidRequest, "Grid size is too large")
	default:
		c.logger.Error("message failed", "error", err)
		c.sendError(ErrCodeInternalError, "Internal server error")
	}
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	session := c.currentSession()
	payload := &ConnectedPayload{
		ClientID: c.clientID,
		GameID:   session.GetGameID(),
		Game:     session.Snapshot(),
	}

	msg := NewServerMessage(MsgConnected, payload)
	c.Send(msg)
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}
