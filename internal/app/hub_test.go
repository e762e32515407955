package app

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordsearch/internal/config"
	"wordsearch/internal/domain"
)

// fakeClient records the events a session sends it
type fakeClient struct {
	id      string
	mu      sync.Mutex
	events  []*domain.GameEvent
	session *GameSession
	closed  bool
}

func (c *fakeClient) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev, ok := message.(*domain.GameEvent); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *fakeClient) GetClientID() string { return c.id }

func (c *fakeClient) Rebind(session *GameSession) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.session = session
	session.RegisterClient(c.id, c)
	return true
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) types() []domain.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.EventType, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Type
	}
	return out
}

func (c *fakeClient) waitFor(t *testing.T, want domain.EventType) *domain.GameEvent {
	t.Helper()
	var got *domain.GameEvent
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, ev := range c.events {
			if ev.Type == want {
				got = ev
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "waiting for %s", want)
	return got
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(t *testing.T, settings GameSettings) *GameHub {
	t.Helper()
	catalog, err := NewThemeCatalog(DefaultThemes)
	require.NoError(t, err)
	hub := NewGameHub(catalog, settings, testLogger())
	t.Cleanup(hub.Close)
	return hub
}

func placementsOf(t *testing.T, s *GameSession) []domain.Placement {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Placements()
}

func TestCreateGameFromTheme(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())

	session, err := hub.CreateGame(NewGameRequest{Theme: "Shades of Purple!"})
	require.NoError(t, err)

	view := session.Snapshot()
	assert.Equal(t, "Shades of Purple!", view.Theme)
	assert.Equal(t, domain.PhasePlaying, view.Phase)
	assert.Len(t, view.Words, 20)
	assert.Empty(t, view.Placements)
	assert.Equal(t, view.Size, len(view.Rows))

	got, err := hub.GetSession(session.GetGameID())
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1, hub.GetSessionCount())
}

func TestThemedGamesHideEveryWord(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())

	for _, theme := range DefaultThemes {
		t.Run(theme.Name, func(t *testing.T) {
			session, err := hub.CreateGame(NewGameRequest{Theme: theme.Name})
			require.NoError(t, err)

			view := session.Snapshot()
			assert.Equal(t, theme.Name, view.Theme)
			require.Len(t, view.Words, 20)

			want, err := NormalizeWords(theme.Words())
			require.NoError(t, err)
			for i, w := range view.Words {
				assert.Equal(t, want[i].Label, w.Label)
				assert.Equal(t, want[i].Letters, w.Word)
			}
			assert.LessOrEqual(t, view.Size, DefaultMaxGridSize)
		})
	}
}

func TestCreateGameCustomWords(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())

	session, err := hub.CreateGame(NewGameRequest{Words: []string{"cat", "dog", "guinea pig"}, Size: 12})
	require.NoError(t, err)

	view := session.Snapshot()
	assert.Equal(t, CustomTheme, view.Theme)
	assert.Equal(t, 12, view.Size)
	assert.Equal(t, "GUINEA PIG", view.Words[2].Label)
	assert.Equal(t, "GUINEAPIG", view.Words[2].Word)
}

func TestCreateGameGrowsGrid(t *testing.T) {
	settings := DefaultGameSettings()
	settings.MaxGrowth = 10
	hub := newTestHub(t, settings)

	// Too small on purpose: the hub grows the grid until the word fits
	session, err := hub.CreateGame(NewGameRequest{Words: []string{"ELEPHANT"}, Size: 3})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, session.Snapshot().Size, 8)
}

func TestCreateGameFailsCleanly(t *testing.T) {
	settings := DefaultGameSettings()
	settings.MaxGrowth = 2
	hub := newTestHub(t, settings)

	_, err := hub.CreateGame(NewGameRequest{Words: []string{"ELEPHANT"}, Size: 3})
	assert.ErrorIs(t, err, domain.ErrUnplaceableWord)
	assert.Equal(t, 0, hub.GetSessionCount())

	_, err = hub.CreateGame(NewGameRequest{Words: []string{"?"}})
	assert.ErrorIs(t, err, domain.ErrInvalidWord)
}

func TestCreateGameRejectsOversizedGrid(t *testing.T) {
	settings := DefaultGameSettings()
	settings.MaxSize = 6
	settings.MaxGrowth = 10
	hub := newTestHub(t, settings)

	_, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT"}, Size: 4000})
	assert.ErrorIs(t, err, domain.ErrGridTooLarge)

	// The list alone needs more room than the limit allows
	_, err = hub.CreateGame(NewGameRequest{Words: []string{"ELEPHANT"}})
	assert.ErrorIs(t, err, domain.ErrGridTooLarge)

	// Growth stops at the limit
	_, err = hub.CreateGame(NewGameRequest{Words: []string{"ELEPHANT"}, Size: 3})
	var unplaceable *domain.UnplaceableWordError
	require.ErrorAs(t, err, &unplaceable)
	assert.Equal(t, 6, unplaceable.Size)

	session, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT"}, Size: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, session.Snapshot().Size)
	assert.Equal(t, 1, hub.GetSessionCount())
}

func TestSessionPointerFlow(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	session, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT", "DOG"}})
	require.NoError(t, err)

	player := &fakeClient{id: "p1"}
	watcher := &fakeClient{id: "w1"}
	session.RegisterClient(player.id, player)
	session.RegisterClient(watcher.id, watcher)

	placements := placementsOf(t, session)

	// First word, dragged backwards
	cat := placements[0]
	require.NoError(t, session.PointerDown(player.id, cat.End()))
	path := session.PointerMove(player.id, cat.Start)
	assert.Len(t, path, 3)
	found, err := session.PointerUp(player.id, cat.Start)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Reversed)

	ev := watcher.waitFor(t, domain.EventWordFound)
	payload := ev.Payload.(*domain.WordFoundPayload)
	assert.Equal(t, "CAT", payload.Found.Word)
	assert.Equal(t, 1, payload.Remaining)

	// Highlights only go to the dragging client
	player.waitFor(t, domain.EventHighlightChanged)
	assert.NotContains(t, watcher.types(), domain.EventHighlightChanged)

	// Same word again is a silent no-op
	found, err = session.Select(player.id, domain.Selection{Start: cat.Start, End: cat.End()})
	require.NoError(t, err)
	assert.Nil(t, found)
	player.waitFor(t, domain.EventSelectionRejected)

	// Last word completes the game
	dog := placements[1]
	found, err = session.Select(player.id, domain.Selection{Start: dog.Start, End: dog.End()})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.PhaseCompleted, session.GetPhase())

	completed := watcher.waitFor(t, domain.EventGameCompleted)
	assert.False(t, completed.Payload.(*domain.GameCompletedPayload).Solved)
}

func TestSessionDragsArePerClient(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	session, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT", "DOG"}})
	require.NoError(t, err)

	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	session.RegisterClient(a.id, a)
	session.RegisterClient(b.id, b)
	cat := placementsOf(t, session)[0]

	require.NoError(t, session.PointerDown(a.id, cat.Start))

	// b never pressed: it cannot release a's drag or take credit for it
	found, err := session.PointerUp(b.id, cat.End())
	assert.ErrorIs(t, err, domain.ErrNoActiveDrag)
	assert.Nil(t, found)
	assert.Nil(t, session.PointerMove(b.id, cat.End()))

	found, err = session.PointerUp(a.id, cat.End())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "CAT", found.Word)

	// A client that leaves mid-drag takes its drag with it
	require.NoError(t, session.PointerDown(b.id, cat.Start))
	session.UnregisterClient(b.id)
	_, err = session.PointerUp(b.id, cat.End())
	assert.ErrorIs(t, err, domain.ErrNoActiveDrag)
}

func TestSessionSelectErrors(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	session, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT"}})
	require.NoError(t, err)

	_, err = session.Select("p1", domain.Selection{Start: domain.Coord{Row: -1}, End: domain.Coord{}})
	assert.ErrorIs(t, err, domain.ErrOutOfBounds)

	_, err = session.PointerUp("p1", domain.Coord{})
	assert.ErrorIs(t, err, domain.ErrNoActiveDrag)

	assert.Nil(t, session.PointerMove("p1", domain.Coord{}))
}

func TestSessionSolve(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	session, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT", "DOG", "EMU"}})
	require.NoError(t, err)

	client := &fakeClient{id: "p1"}
	session.RegisterClient(client.id, client)

	overlay, err := session.Solve()
	require.NoError(t, err)
	require.Len(t, overlay.Placements, 3)
	for _, p := range overlay.Placements {
		assert.Len(t, p.Path, len(p.Word))
		assert.Equal(t, p.Path[len(p.Path)-1], p.End)
	}

	view := session.Snapshot()
	assert.Equal(t, domain.PhaseCompleted, view.Phase)
	assert.Len(t, view.Placements, 3)
	for _, w := range view.Words {
		assert.True(t, w.Found)
	}

	client.waitFor(t, domain.EventPuzzleSolved)
	completed := client.waitFor(t, domain.EventGameCompleted)
	assert.True(t, completed.Payload.(*domain.GameCompletedPayload).Solved)

	// Solving again does not announce completion twice
	_, err = session.Solve()
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	count := 0
	for _, typ := range client.types() {
		if typ == domain.EventGameCompleted {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestReplaceGameMovesClients(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	old, err := hub.CreateGame(NewGameRequest{Theme: "Philosophy!"})
	require.NoError(t, err)

	client := &fakeClient{id: "p1"}
	old.RegisterClient(client.id, client)

	fresh, err := hub.ReplaceGame(old.GetGameID(), NewGameRequest{})
	require.NoError(t, err)

	assert.NotEqual(t, old.GetGameID(), fresh.GetGameID())
	assert.Equal(t, "Philosophy!", fresh.GetTheme())
	assert.Equal(t, 1, hub.GetSessionCount())
	assert.Equal(t, 1, fresh.GetClientCount())
	assert.Equal(t, 0, old.GetClientCount())
	assert.False(t, client.closed)
	assert.Same(t, fresh, client.session)

	_, err = hub.GetSession(old.GetGameID())
	assert.ErrorIs(t, err, domain.ErrGameNotFound)

	ev := client.waitFor(t, domain.EventGameReplaced)
	assert.Equal(t, old.GetGameID(), ev.Payload.(*GameReplacedPayload).PreviousGameID)

	_, err = hub.ReplaceGame("missing", NewGameRequest{})
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestReplaceGameOnlyOnce(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	old, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT", "DOG"}})
	require.NoError(t, err)
	client := &fakeClient{id: "p1"}
	old.RegisterClient(client.id, client)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := hub.ReplaceGame(old.GetGameID(), NewGameRequest{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrGameNotFound)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, hub.GetSessionCount())
	assert.Equal(t, 1, hub.GetTotalClientCount())
}

func TestReplaceGameSkipsClosedClients(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())
	old, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT"}})
	require.NoError(t, err)

	gone := &fakeClient{id: "gone"}
	old.RegisterClient(gone.id, gone)
	require.NoError(t, gone.Close())

	fresh, err := hub.ReplaceGame(old.GetGameID(), NewGameRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.GetClientCount())
	assert.Nil(t, gone.session)
}

func TestThemeLookup(t *testing.T) {
	hub := newTestHub(t, DefaultGameSettings())

	theme, err := hub.Theme("Philosophy!")
	require.NoError(t, err)
	assert.Len(t, theme.Words(), 20)

	_, err = hub.Theme("Knitting")
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestDeleteAndCleanup(t *testing.T) {
	settings := DefaultGameSettings()
	settings.StaleTimeout = time.Minute
	hub := newTestHub(t, settings)

	idle, err := hub.CreateGame(NewGameRequest{Words: []string{"CAT"}})
	require.NoError(t, err)
	watched, err := hub.CreateGame(NewGameRequest{Words: []string{"DOG"}})
	require.NoError(t, err)
	client := &fakeClient{id: "p1"}
	watched.RegisterClient(client.id, client)
	assert.Equal(t, 1, hub.GetTotalClientCount())

	// Games with clients survive; idle ones go
	removed := hub.cleanupStaleGames(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
	_, err = hub.GetSession(idle.GetGameID())
	assert.ErrorIs(t, err, domain.ErrGameNotFound)

	hub.DeleteSession(watched.GetGameID())
	assert.Equal(t, 0, hub.GetSessionCount())
	assert.True(t, client.closed)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.GameConfig{
		GridMargin:        2,
		GridDensity:       3,
		PlacementAttempts: 40,
		MaxGridGrowth:     1,
		MaxGridSize:       30,
		Filler:            "rare",
		Directions:        "forward",
		StaleTimeout:      time.Hour,
	}

	settings := SettingsFromConfig(cfg)
	assert.Equal(t, 2, settings.Margin)
	assert.Equal(t, 3.0, settings.Density)
	assert.Equal(t, 40, settings.Attempts)
	assert.Equal(t, 1, settings.MaxGrowth)
	assert.Equal(t, 30, settings.MaxSize)
	assert.Equal(t, domain.FillRare, settings.Filler)
	assert.Equal(t, domain.ForwardDirections, settings.Directions)
	assert.Equal(t, time.Hour, settings.StaleTimeout)

	cfg.Directions = "straight"
	assert.Equal(t, domain.StraightDirections, SettingsFromConfig(cfg).Directions)
	cfg.Directions = "all"
	assert.Equal(t, domain.Directions, SettingsFromConfig(cfg).Directions)
}
