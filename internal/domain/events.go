package domain

import "time"

// EventType represents the type of game event
type EventType string

const (
	EventHighlightChanged  EventType = "HIGHLIGHT_CHANGED"
	EventWordFound         EventType = "WORD_FOUND"
	EventSelectionRejected EventType = "SELECTION_REJECTED"
	EventGameCompleted     EventType = "GAME_COMPLETED"
	EventPuzzleSolved      EventType = "PUZZLE_SOLVED"
	EventGameReplaced      EventType = "GAME_REPLACED"
)

// GameEvent represents an event that occurred in the game
type GameEvent struct {
	Type      EventType   `json:"type"`
	GameID    string      `json:"gameId"`
	ClientID  string      `json:"clientId,omitempty"` // If event is for one client only
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new game event
func NewEvent(eventType EventType, gameID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		GameID:    gameID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewClientEvent creates an event delivered to a single client
func NewClientEvent(eventType EventType, gameID, clientID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		GameID:    gameID,
		ClientID:  clientID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// HighlightPayload carries the in-progress drag path
type HighlightPayload struct {
	Path []Coord `json:"path"`
}

// WordFoundPayload is sent when a drag matches a hidden word
type WordFoundPayload struct {
	Found     *FoundWord `json:"found"`
	Path      []Coord    `json:"path"`
	Remaining int        `json:"remaining"`
}

// SelectionRejectedPayload tells the view to snap the highlight back
type SelectionRejectedPayload struct {
	Selection Selection `json:"selection"`
}

// GameCompletedPayload is sent once every word is found or the puzzle is solved
type GameCompletedPayload struct {
	Solved     bool `json:"solved"` // true if solve was used
	FoundCount int  `json:"foundCount"`
}

// SolvedPayload is the solve overlay: every word with its path
type SolvedPayload struct {
	Placements []PlacementPath `json:"placements"`
}

// PlacementPath is a placement with its cells spelled out for drawing
type PlacementPath struct {
	Placement
	End  Coord   `json:"end"`
	Path []Coord `json:"path"`
}

// NewSolvedPayload builds the overlay for the given placements
func NewSolvedPayload(placements []Placement) *SolvedPayload {
	out := make([]PlacementPath, len(placements))
	for i, p := range placements {
		out[i] = PlacementPath{Placement: p, End: p.End(), Path: p.Path()}
	}
	return &SolvedPayload{Placements: out}
}
