package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordsearch/internal/config"
	"wordsearch/internal/domain"
	"wordsearch/internal/random"
)

const (
	// DefaultStaleGameTimeout is how long before an idle game with no clients is cleaned up
	DefaultStaleGameTimeout = 2 * time.Hour

	// CustomTheme names games built from a caller-supplied word list
	CustomTheme = "Custom"

	// DefaultMaxGridSize bounds both requested and grown grids
	DefaultMaxGridSize = 40

	cleanupInterval = 10 * time.Minute
)

// GameSettings holds the generator configuration used for new games
type GameSettings struct {
	Margin       int
	Density      float64
	Attempts     int
	MaxGrowth    int
	MaxSize      int
	Filler       domain.Filler
	Directions   []domain.Direction
	StaleTimeout time.Duration
}

// DefaultGameSettings returns the default game settings
func DefaultGameSettings() GameSettings {
	return GameSettings{
		Margin:       domain.DefaultMargin,
		Density:      domain.DefaultDensity,
		Attempts:     domain.DefaultAttempts,
		MaxGrowth:    5,
		MaxSize:      DefaultMaxGridSize,
		Filler:       domain.FillUniform,
		Directions:   domain.Directions,
		StaleTimeout: DefaultStaleGameTimeout,
	}
}

// SettingsFromConfig converts the game section of the configuration
func SettingsFromConfig(cfg config.GameConfig) GameSettings {
	settings := GameSettings{
		Margin:       cfg.GridMargin,
		Density:      cfg.GridDensity,
		Attempts:     cfg.PlacementAttempts,
		MaxGrowth:    cfg.MaxGridGrowth,
		MaxSize:      cfg.MaxGridSize,
		Filler:       domain.Filler(cfg.Filler),
		Directions:   domain.Directions,
		StaleTimeout: cfg.StaleTimeout,
	}

	switch cfg.Directions {
	case "forward":
		settings.Directions = domain.ForwardDirections
	case "straight":
		settings.Directions = domain.StraightDirections
	}

	return settings
}

// NewGameRequest describes the game to build. Words, when set, replace the
// theme's word list.
type NewGameRequest struct {
	Theme string
	Size  int
	Words []string
}

// GameHub manages all active game sessions
type GameHub struct {
	sessions map[string]*GameSession
	mu       sync.RWMutex
	themes   *ThemeCatalog
	settings GameSettings
	logger   *slog.Logger
	done     chan struct{}
}

// NewGameHub creates a new game hub
func NewGameHub(themes *ThemeCatalog, settings GameSettings, logger *slog.Logger) *GameHub {
	hub := &GameHub{
		sessions: make(map[string]*GameSession),
		themes:   themes,
		settings: settings,
		logger:   logger,
		done:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// Themes returns the names of the available themes
func (h *GameHub) Themes() []string {
	return h.themes.Names()
}

// Theme returns the theme called name, or ErrUnknownTheme
func (h *GameHub) Theme(name string) (Theme, error) {
	return h.themes.Get(name)
}

// CreateGame generates a puzzle and returns the session playing it
func (h *GameHub) CreateGame(req NewGameRequest) (*GameSession, error) {
	game, err := h.buildGame(req)
	if err != nil {
		return nil, err
	}

	session := NewGameSession(game, h.logger)

	h.mu.Lock()
	h.sessions[game.ID] = session
	h.mu.Unlock()

	h.logger.Info("game created", "gameID", game.ID, "theme", game.Theme, "size", game.Grid().Size())

	return session, nil
}

// ReplaceGame discards a game and starts a fresh one in its place. Connected
// clients move to the new game. An empty theme keeps the old game's theme.
// When two callers replace the same game only the first wins; the other
// gets ErrGameNotFound.
func (h *GameHub) ReplaceGame(gameID string, req NewGameRequest) (*GameSession, error) {
	old, err := h.GetSession(gameID)
	if err != nil {
		return nil, err
	}

	if req.Theme == "" && len(req.Words) == 0 {
		req.Theme = old.GetTheme()
	}

	// Generation runs outside the lock; the swap below re-checks the old game
	game, err := h.buildGame(req)
	if err != nil {
		return nil, err
	}
	session := NewGameSession(game, h.logger)

	h.mu.Lock()
	if h.sessions[gameID] != old {
		h.mu.Unlock()
		session.Close()
		return nil, domain.ErrGameNotFound
	}
	delete(h.sessions, gameID)
	h.sessions[game.ID] = session
	h.mu.Unlock()

	for _, client := range old.detachClients() {
		if !client.Rebind(session) {
			h.logger.Debug("client closed during replace", "clientID", client.GetClientID())
		}
	}
	old.Close()

	session.queueEvent(domain.NewEvent(domain.EventGameReplaced, game.ID, &GameReplacedPayload{
		PreviousGameID: gameID,
		Game:           session.Snapshot(),
	}))

	h.logger.Info("game replaced", "previousGameID", gameID, "gameID", game.ID, "theme", game.Theme)

	return session, nil
}

// GameReplacedPayload tells clients which game they now belong to
type GameReplacedPayload struct {
	PreviousGameID string           `json:"previousGameId"`
	Game           *domain.GameView `json:"game"`
}

// buildGame picks the words, generates the puzzle and starts the game
func (h *GameHub) buildGame(req NewGameRequest) (*domain.Game, error) {
	themeName := CustomTheme
	raw := req.Words
	if len(raw) == 0 {
		theme := h.themes.Pick(req.Theme)
		themeName = theme.Name
		raw = theme.Words()
	}

	words, err := NormalizeWords(raw)
	if err != nil {
		return nil, err
	}

	letters := make([]string, len(words))
	labels := make([]string, len(words))
	for i, w := range words {
		letters[i] = w.Letters
		labels[i] = w.Label
	}

	puzzle, err := h.generate(letters, req.Size)
	if err != nil {
		return nil, err
	}

	game := domain.NewGame(uuid.New().String(), themeName)
	if err := game.Start(puzzle, labels); err != nil {
		return nil, err
	}

	return game, nil
}

// generate builds a puzzle, growing the grid by one cell each time a word
// does not fit, up to MaxGrowth times. No grid grows past MaxSize.
func (h *GameHub) generate(words []string, size int) (*domain.Puzzle, error) {
	if size > h.settings.MaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", domain.ErrGridTooLarge, size, h.settings.MaxSize)
	}

	seed, err := random.NewSeed()
	if err != nil {
		return nil, err
	}

	gen := domain.NewGenerator(
		domain.WithMargin(h.settings.Margin),
		domain.WithDensity(h.settings.Density),
		domain.WithAttempts(h.settings.Attempts),
		domain.WithDirections(h.settings.Directions),
		domain.WithFiller(h.settings.Filler),
		domain.WithRand(random.NewRand(seed)),
	)

	if size <= 0 {
		size = gen.GridSize(words)
		if size > h.settings.MaxSize {
			return nil, fmt.Errorf("%w: %d words need a %dx%d grid, limit is %d",
				domain.ErrGridTooLarge, len(words), size, size, h.settings.MaxSize)
		}
	}

	for growth := 0; ; growth++ {
		puzzle, err := gen.Generate(words, size)
		if err == nil {
			h.logger.Debug("puzzle generated", "seed", seed, "size", size, "growth", growth, "words", len(words))
			return puzzle, nil
		}

		var unplaceable *domain.UnplaceableWordError
		if !errors.As(err, &unplaceable) {
			return nil, err
		}
		if growth >= h.settings.MaxGrowth || size >= h.settings.MaxSize {
			h.logger.Warn("puzzle generation failed", "seed", seed, "size", size, "word", unplaceable.Word)
			return nil, fmt.Errorf("generate puzzle: %w", err)
		}

		h.logger.Debug("word did not fit, growing grid", "word", unplaceable.Word, "size", size)
		size++
	}
}

// GetSession returns a game session by ID
func (h *GameHub) GetSession(gameID string) (*GameSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	return session, nil
}

// DeleteSession removes a game session
func (h *GameHub) DeleteSession(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[gameID]; ok {
		session.Close()
		delete(h.sessions, gameID)
		h.logger.Info("game deleted", "gameID", gameID)
	}
}

// GetSessionCount returns the number of active sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalClientCount returns the number of connected clients across all sessions
func (h *GameHub) GetTotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetClientCount()
	}
	return total
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*GameSession)
}

// cleanupLoop periodically cleans up stale games
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleGames(time.Now())
		}
	}
}

// cleanupStaleGames removes games with no clients that have been idle for too long
func (h *GameHub) cleanupStaleGames(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stale := make([]string, 0)
	for gameID, session := range h.sessions {
		if session.GetClientCount() == 0 && now.Sub(session.GetLastActive()) > h.settings.StaleTimeout {
			stale = append(stale, gameID)
		}
	}

	for _, gameID := range stale {
		if session, ok := h.sessions[gameID]; ok {
			session.Close()
			delete(h.sessions, gameID)
			h.logger.Info("stale game cleaned up", "gameID", gameID)
		}
	}

	return len(stale)
}
