package domain

import "time"

// Game is one word-search instance: a puzzle, the words found so far, and
// the drags in progress, one per pointer. A new game always gets a new Game;
// nothing carries over.
type Game struct {
	ID        string    `json:"id"`
	Theme     string    `json:"theme"`
	Phase     Phase     `json:"phase"`
	CreatedAt time.Time `json:"createdAt"`

	puzzle     *Puzzle
	labels     []string
	found      []bool
	foundCount int
	drags      map[string]*drag // pointer ID -> drag
}

// drag is the transient state between pointer down and pointer up
type drag struct {
	start     Coord
	highlight []Coord
}

// NewGame creates a game waiting for its puzzle
func NewGame(id, theme string) *Game {
	return &Game{
		ID:        id,
		Theme:     theme,
		Phase:     PhaseSetup,
		CreatedAt: time.Now(),
		drags:     make(map[string]*drag),
	}
}

// Start hands the generated puzzle to the game and begins play.
// labels are optional display names for the words, in placement order.
func (g *Game) Start(p *Puzzle, labels []string) error {
	if p == nil {
		return ErrNilPuzzle
	}
	if g.Phase != PhaseSetup {
		return ErrInvalidTransition
	}

	g.puzzle = p
	g.found = make([]bool, len(p.Placements))
	g.labels = make([]string, len(p.Placements))
	for i, pl := range p.Placements {
		g.labels[i] = pl.Word
		if i < len(labels) && labels[i] != "" {
			g.labels[i] = labels[i]
		}
	}
	g.Phase = PhasePlaying

	return nil
}

// Grid returns the puzzle grid, or nil before Start
func (g *Game) Grid() *Grid {
	if g.puzzle == nil {
		return nil
	}
	return g.puzzle.Grid
}

// Placements returns the word locations used by the solve overlay
func (g *Game) Placements() []Placement {
	if g.puzzle == nil {
		return nil
	}
	out := make([]Placement, len(g.puzzle.Placements))
	copy(out, g.puzzle.Placements)
	return out
}

// Words returns the words to find, in placement order
func (g *Game) Words() []string {
	if g.puzzle == nil {
		return nil
	}
	return g.puzzle.Words()
}

// IsFound reports whether word i has been found
func (g *Game) IsFound(i int) bool {
	return i >= 0 && i < len(g.found) && g.found[i]
}

// FoundCount returns the number of words found so far
func (g *Game) FoundCount() int {
	return g.foundCount
}

// Remaining returns the number of words still hidden
func (g *Game) Remaining() int {
	return len(g.found) - g.foundCount
}

// Highlight returns the cells of pointer's drag in progress
func (g *Game) Highlight(pointer string) []Coord {
	d, ok := g.drags[pointer]
	if !ok {
		return nil
	}
	out := make([]Coord, len(d.highlight))
	copy(out, d.highlight)
	return out
}

// Dragging reports whether pointer has a drag in progress
func (g *Game) Dragging(pointer string) bool {
	_, ok := g.drags[pointer]
	return ok
}

// PointerDown starts a drag for pointer at c, replacing any drag that
// pointer already had. Other pointers' drags are untouched.
func (g *Game) PointerDown(pointer string, c Coord) error {
	if !g.Phase.AcceptsPointer() {
		return ErrInvalidPhase
	}
	if !g.puzzle.Grid.InBounds(c) {
		return ErrOutOfBounds
	}

	g.drags[pointer] = &drag{start: c, highlight: []Coord{c}}
	return nil
}

// PointerMove extends pointer's highlight towards c and returns it.
// When c is not in line with the start the highlight snaps back to the
// start cell. Found words and placements are never touched here.
func (g *Game) PointerMove(pointer string, c Coord) []Coord {
	d, ok := g.drags[pointer]
	if !ok || !g.puzzle.Grid.InBounds(c) {
		return g.Highlight(pointer)
	}

	if path, ok := (Selection{Start: d.start, End: c}).Path(); ok {
		d.highlight = path
	} else {
		d.highlight = []Coord{d.start}
	}
	return g.Highlight(pointer)
}

// PointerUp ends pointer's drag at c and matches the resulting selection.
// A nil FoundWord with a nil error means the drag selected nothing new.
func (g *Game) PointerUp(pointer string, c Coord) (*FoundWord, error) {
	d, ok := g.drags[pointer]
	if !ok {
		return nil, ErrNoActiveDrag
	}

	delete(g.drags, pointer)
	return g.Match(Selection{Start: d.start, End: c}), nil
}

// CancelDrag abandons pointer's drag without matching
func (g *Game) CancelDrag(pointer string) {
	delete(g.drags, pointer)
}

// Match compares a selection against every placement and its reverse.
// The first unfound placement it covers is marked found and its cells are
// revealed. Non-line selections and words already found return nil.
func (g *Game) Match(sel Selection) *FoundWord {
	if !g.Phase.AcceptsPointer() {
		return nil
	}

	for i, p := range g.puzzle.Placements {
		if g.found[i] {
			continue
		}
		matched, reversed := sel.matches(p)
		if !matched {
			continue
		}

		g.markFound(i)
		if g.foundCount == len(g.found) {
			g.Phase = PhaseCompleted
		}

		return &FoundWord{
			Index:     i,
			Word:      p.Word,
			Start:     p.Start,
			End:       p.End(),
			Direction: p.Direction,
			Reversed:  reversed,
		}
	}

	return nil
}

// Solve reveals every placement and marks every word found. The returned
// placements are the overlay to draw. Solving again changes nothing.
func (g *Game) Solve() ([]Placement, error) {
	if !g.Phase.CanTransitionTo(PhaseCompleted) {
		return nil, ErrInvalidPhase
	}

	for i := range g.puzzle.Placements {
		if !g.found[i] {
			g.markFound(i)
		}
	}
	clear(g.drags)
	g.Phase = PhaseCompleted

	return g.Placements(), nil
}

func (g *Game) markFound(i int) {
	g.found[i] = true
	g.foundCount++
	g.puzzle.Grid.Reveal(g.puzzle.Placements[i].Path())
}

// WordStatus is a word as shown in the word list
type WordStatus struct {
	Word  string `json:"word"`
	Label string `json:"label"`
	Found bool   `json:"found"`
}

// GameView is the state of a game that is safe to show the player.
// Placements are only included once the game is completed.
type GameView struct {
	ID         string       `json:"id"`
	Theme      string       `json:"theme"`
	Phase      Phase        `json:"phase"`
	Size       int          `json:"size"`
	Rows       []string     `json:"rows"`
	Words      []WordStatus `json:"words"`
	Revealed   []Coord      `json:"revealed"`
	Remaining  int          `json:"remaining"`
	Placements []Placement  `json:"placements,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Snapshot returns the current player-facing view of the game
func (g *Game) Snapshot() *GameView {
	view := &GameView{
		ID:        g.ID,
		Theme:     g.Theme,
		Phase:     g.Phase,
		Rows:      []string{},
		Words:     []WordStatus{},
		Revealed:  []Coord{},
		CreatedAt: g.CreatedAt,
	}
	if g.puzzle == nil {
		return view
	}

	view.Size = g.puzzle.Grid.Size()
	view.Rows = g.puzzle.Grid.Rows()
	view.Revealed = g.puzzle.Grid.RevealedCells()
	view.Remaining = g.Remaining()
	for i, p := range g.puzzle.Placements {
		view.Words = append(view.Words, WordStatus{Word: p.Word, Label: g.labels[i], Found: g.found[i]})
	}
	if g.Phase == PhaseCompleted {
		view.Placements = g.Placements()
	}

	return view
}
