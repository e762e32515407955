package ws

import (
	"encoding/json"
	"time"

	"wordsearch/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgPointerDown MessageType = "pointer_down"
	MsgPointerMove MessageType = "pointer_move"
	MsgPointerUp   MessageType = "pointer_up"
	MsgSelect      MessageType = "select"
	MsgSolve       MessageType = "solve"
	MsgNewGame     MessageType = "new_game"
	MsgPing        MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected         MessageType = "connected"
	MsgError             MessageType = "error"
	MsgHighlight         MessageType = "highlight"
	MsgWordFound         MessageType = "word_found"
	MsgGameCompleted     MessageType = "game_completed"
	MsgPuzzleSolved      MessageType = "puzzle_solved"
	MsgSelectionRejected MessageType = "selection_rejected"
	MsgGameReplaced      MessageType = "game_replaced"
	MsgPong              MessageType = "pong"
)

// eventMessages maps domain events onto the message types clients see
var eventMessages = map[domain.EventType]MessageType{
	domain.EventHighlightChanged:  MsgHighlight,
	domain.EventWordFound:         MsgWordFound,
	domain.EventSelectionRejected: MsgSelectionRejected,
	domain.EventGameCompleted:     MsgGameCompleted,
	domain.EventPuzzleSolved:      MsgPuzzleSolved,
	domain.EventGameReplaced:      MsgGameReplaced,
}

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
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

// CoordPayload is the payload for pointer_down, pointer_move and pointer_up
type CoordPayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// Coord returns the cell, or false if either axis is missing
func (p CoordPayload) Coord() (domain.Coord, bool) {
	if p.Row == nil || p.Col == nil {
		return domain.Coord{}, false
	}
	return domain.Coord{Row: *p.Row, Col: *p.Col}, true
}

// SelectPayload is the payload for select message
type SelectPayload struct {
	Start *domain.Coord `json:"start"`
	End   *domain.Coord `json:"end"`
}

// NewGamePayload is the payload for new_game message
type NewGamePayload struct {
	Theme string   `json:"theme,omitempty"`
	Size  int      `json:"size,omitempty"`
	Words []string `json:"words,omitempty"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ClientID string           `json:"clientId"`
	GameID   string           `json:"gameId"`
	Game     *domain.GameView `json:"game"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage   = "INVALID_MESSAGE"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeGameNotFound     = "GAME_NOT_FOUND"
	ErrCodeInvalidAction    = "INVALID_ACTION"
	ErrCodeOutOfBounds      = "OUT_OF_BOUNDS"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)
