package app

import (
	"log/slog"
	"sync"
	"time"

	"wordsearch/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetClientID() string
	// Rebind moves the client to session and registers it there. It
	// returns false, registering nothing, once the client has closed.
	Rebind(session *GameSession) bool
	Close() error
}

// GameSession wraps a game with concurrency control and client management.
// Every pointer event runs to completion under the session lock, so the
// game sees events one at a time in arrival order.
type GameSession struct {
	game       *domain.Game
	mu         sync.RWMutex
	lastActive time.Time
	clients    map[string]ClientConnection // clientID -> client
	clientsMu  sync.RWMutex
	logger     *slog.Logger

	// Event channel for broadcasting
	events chan *domain.GameEvent
	done   chan struct{}
}

// NewGameSession creates a new game session
func NewGameSession(game *domain.Game, logger *slog.Logger) *GameSession {
	session := &GameSession{
		game:       game,
		lastActive: time.Now(),
		clients:    make(map[string]ClientConnection),
		logger:     logger.With("gameID", game.ID),
		events:     make(chan *domain.GameEvent, 100),
		done:       make(chan struct{}),
	}

	// Start event broadcaster
	go session.eventLoop()

	return session
}

// GetGameID returns the game ID
func (s *GameSession) GetGameID() string {
	return s.game.ID
}

// GetTheme returns the theme the game was built from
func (s *GameSession) GetTheme() string {
	return s.game.Theme
}

// GetCreatedAt returns when the game was created
func (s *GameSession) GetCreatedAt() time.Time {
	return s.game.CreatedAt
}

// GetLastActive returns when the game last received an event
func (s *GameSession) GetLastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// GetPhase returns the current game phase
func (s *GameSession) GetPhase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Phase
}

// Snapshot returns the player-facing game state
func (s *GameSession) Snapshot() *domain.GameView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Snapshot()
}

// RegisterClient registers a client connection
func (s *GameSession) RegisterClient(clientID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[clientID] = client
}

// UnregisterClient removes a client connection and drops its drag
func (s *GameSession) UnregisterClient(clientID string) {
	s.clientsMu.Lock()
	delete(s.clients, clientID)
	s.clientsMu.Unlock()

	s.mu.Lock()
	s.game.CancelDrag(clientID)
	s.mu.Unlock()
}

// GetClient returns the client with the given ID
func (s *GameSession) GetClient(clientID string) (ClientConnection, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	client, ok := s.clients[clientID]
	return client, ok
}

// GetClientCount returns the number of connected clients
func (s *GameSession) GetClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// detachClients removes and returns every client without closing them
func (s *GameSession) detachClients() []ClientConnection {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	clients := make([]ClientConnection, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[string]ClientConnection)
	return clients
}

// PointerDown starts a drag for clientID
func (s *GameSession) PointerDown(clientID string, c domain.Coord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if err := s.game.PointerDown(clientID, c); err != nil {
		return err
	}

	s.queueEvent(domain.NewClientEvent(domain.EventHighlightChanged, s.game.ID, clientID,
		&domain.HighlightPayload{Path: s.game.Highlight(clientID)}))

	return nil
}

// PointerMove updates the drag highlight and sends it back to clientID
func (s *GameSession) PointerMove(clientID string, c domain.Coord) []domain.Coord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if !s.game.Dragging(clientID) {
		return nil
	}

	path := s.game.PointerMove(clientID, c)
	s.queueEvent(domain.NewClientEvent(domain.EventHighlightChanged, s.game.ID, clientID,
		&domain.HighlightPayload{Path: path}))

	return path
}

// PointerUp ends the drag for clientID and reports what it found, if anything
func (s *GameSession) PointerUp(clientID string, c domain.Coord) (*domain.FoundWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	start := s.game.Highlight(clientID)
	found, err := s.game.PointerUp(clientID, c)
	if err != nil {
		return nil, err
	}

	sel := domain.Selection{End: c}
	if len(start) > 0 {
		sel.Start = start[0]
	}
	s.publishMatch(clientID, sel, found)

	return found, nil
}

// Select matches a whole selection at once, as a single click-drag
func (s *GameSession) Select(clientID string, sel domain.Selection) (*domain.FoundWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if !s.game.Phase.AcceptsPointer() {
		return nil, domain.ErrInvalidPhase
	}
	grid := s.game.Grid()
	if !grid.InBounds(sel.Start) || !grid.InBounds(sel.End) {
		return nil, domain.ErrOutOfBounds
	}

	found := s.game.Match(sel)
	s.publishMatch(clientID, sel, found)

	return found, nil
}

// publishMatch queues the events for a finished selection (caller must hold lock)
func (s *GameSession) publishMatch(clientID string, sel domain.Selection, found *domain.FoundWord) {
	if found == nil {
		// Anonymous callers (HTTP) get the rejection in their response
		if clientID == "" {
			return
		}
		s.queueEvent(domain.NewClientEvent(domain.EventSelectionRejected, s.game.ID, clientID,
			&domain.SelectionRejectedPayload{Selection: sel}))
		return
	}

	s.logger.Debug("word found", "word", found.Word, "reversed", found.Reversed, "clientID", clientID)

	path := domain.Path(found.Start, found.Direction, len(found.Word))
	s.queueEvent(domain.NewEvent(domain.EventWordFound, s.game.ID, &domain.WordFoundPayload{
		Found:     found,
		Path:      path,
		Remaining: s.game.Remaining(),
	}))

	if s.game.Phase == domain.PhaseCompleted {
		s.logger.Info("all words found", "words", s.game.FoundCount())
		s.queueEvent(domain.NewEvent(domain.EventGameCompleted, s.game.ID, &domain.GameCompletedPayload{
			Solved:     false,
			FoundCount: s.game.FoundCount(),
		}))
	}
}

// Solve reveals every word and returns the overlay
func (s *GameSession) Solve() (*domain.SolvedPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	wasCompleted := s.game.Phase == domain.PhaseCompleted
	foundBefore := s.game.FoundCount()

	placements, err := s.game.Solve()
	if err != nil {
		return nil, err
	}

	payload := domain.NewSolvedPayload(placements)
	s.queueEvent(domain.NewEvent(domain.EventPuzzleSolved, s.game.ID, payload))

	if !wasCompleted {
		s.logger.Info("puzzle solved", "foundBeforeSolve", foundBefore, "words", len(placements))
		s.queueEvent(domain.NewEvent(domain.EventGameCompleted, s.game.ID, &domain.GameCompletedPayload{
			Solved:     true,
			FoundCount: foundBefore,
		}))
	}

	return payload, nil
}

// queueEvent adds an event to the broadcast queue
func (s *GameSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to appropriate clients
func (s *GameSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	// If client-specific, send only to that client
	if event.ClientID != "" {
		if client, ok := s.clients[event.ClientID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "clientID", event.ClientID, "error", err)
			}
		}
		return
	}

	// Broadcast to all clients
	for clientID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "clientID", clientID, "error", err)
		}
	}
}

// Close shuts down the session
func (s *GameSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
