package domain

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Generator defaults
const (
	DefaultMargin   = 1
	DefaultDensity  = 2.0
	DefaultAttempts = 100
)

// Filler decides which letters go into cells no word uses
type Filler string

const (
	FillUniform Filler = "uniform" // every letter equally likely
	FillRare    Filler = "rare"    // favours low-frequency letters
)

// rareWeights favours letters that rarely appear in English words, which
// makes it less likely that filler accidentally spells a target word.
var rareWeights = [26]int{
	6, 13, 11, 10, 1, 12, 12, 8, 7, 14, 13, 10, 12, // A-M
	7, 6, 12, 14, 8, 8, 5, 11, 13, 12, 14, 12, 14, // N-Z
}

// Generator places words into a square grid
type Generator struct {
	margin     int
	density    float64
	attempts   int
	directions []Direction
	filler     Filler
	rng        *rand.Rand
}

// Option configures a Generator
type Option func(*Generator)

// WithMargin sets how many cells the grid exceeds the longest word by
func WithMargin(margin int) Option {
	return func(g *Generator) { g.margin = margin }
}

// WithDensity sets the letters-to-cells factor used to size the grid
func WithDensity(density float64) Option {
	return func(g *Generator) { g.density = density }
}

// WithAttempts sets the number of random draws tried per word
func WithAttempts(attempts int) Option {
	return func(g *Generator) { g.attempts = attempts }
}

// WithDirections restricts the directions words may run in
func WithDirections(dirs []Direction) Option {
	return func(g *Generator) { g.directions = dirs }
}

// WithFiller sets how empty cells are filled
func WithFiller(f Filler) Option {
	return func(g *Generator) { g.filler = f }
}

// WithRand sets the random source. Generators are not safe for concurrent
// use, so each goroutine needs its own.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// NewGenerator creates a generator with defaults overridden by opts
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		margin:     DefaultMargin,
		density:    DefaultDensity,
		attempts:   DefaultAttempts,
		directions: Directions,
		filler:     FillUniform,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.attempts < 1 {
		g.attempts = 1
	}
	if len(g.directions) == 0 {
		g.directions = Directions
	}

	return g
}

// GridSize returns the grid dimension used when Generate is not given one:
// the longest word plus the margin, or enough cells to hold all letters at
// the configured density, whichever is larger.
func (g *Generator) GridSize(words []string) int {
	longest, total := 0, 0
	for _, w := range words {
		longest = max(longest, len(w))
		total += len(w)
	}
	byDensity := int(math.Ceil(math.Sqrt(float64(total) * g.density)))
	return max(longest+g.margin, byDensity)
}

// Generate places every word into a grid and fills the rest with random
// letters. When size is zero or negative the grid is sized by GridSize.
// Placement i always belongs to words[i]. Either every word is placed or an
// *UnplaceableWordError is returned.
func (g *Generator) Generate(words []string, size int) (*Puzzle, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	for _, w := range words {
		if !validWord(w) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
	}

	if size <= 0 {
		size = g.GridSize(words)
	}
	grid := NewGrid(size)

	// Longest words first: they are the hardest to fit
	order := make([]int, len(words))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(words[order[a]]) > len(words[order[b]])
	})

	placements := make([]Placement, len(words))
	placed := make([]Placement, 0, len(words))
	for _, idx := range order {
		p, ok := g.place(grid, words[idx], placed)
		if !ok {
			return nil, &UnplaceableWordError{Word: words[idx], Size: size, Attempts: g.attempts}
		}

		for i, c := range p.Path() {
			grid.set(c, p.Word[i])
		}
		placements[idx] = p
		placed = append(placed, p)
	}

	g.fill(grid)

	return &Puzzle{Grid: grid, Placements: placements}, nil
}

// place draws random placements until one fits or the budget runs out
func (g *Generator) place(grid *Grid, word string, placed []Placement) (Placement, bool) {
	for attempt := 0; attempt < g.attempts; attempt++ {
		d := g.directions[g.rng.Intn(len(g.directions))]
		start, ok := g.randomStart(grid.Size(), len(word), d)
		if !ok {
			continue
		}

		p := Placement{Word: word, Start: start, Direction: d}
		if p.fits(grid) && !coversPlaced(p, placed) {
			return p, true
		}
	}
	return Placement{}, false
}

// randomStart picks a start cell from which length cells along d stay in the grid
func (g *Generator) randomStart(size, length int, d Direction) (Coord, bool) {
	row, ok := g.randomAxis(size, length, d.DR)
	if !ok {
		return Coord{}, false
	}
	col, ok := g.randomAxis(size, length, d.DC)
	if !ok {
		return Coord{}, false
	}
	return Coord{Row: row, Col: col}, true
}

func (g *Generator) randomAxis(size, length, step int) (int, bool) {
	lo, hi := 0, size-1
	switch step {
	case 1:
		hi = size - length
	case -1:
		lo = length - 1
	}
	if hi < lo {
		return 0, false
	}
	return lo + g.rng.Intn(hi-lo+1), true
}

// fill writes a filler letter into every empty cell
func (g *Generator) fill(grid *Grid) {
	total := 0
	for _, w := range rareWeights {
		total += w
	}

	for r := 0; r < grid.Size(); r++ {
		for c := 0; c < grid.Size(); c++ {
			cell := Coord{Row: r, Col: c}
			if grid.At(cell) != empty {
				continue
			}
			if g.filler == FillRare {
				grid.set(cell, weightedLetter(g.rng.Intn(total)))
			} else {
				grid.set(cell, byte('A'+g.rng.Intn(26)))
			}
		}
	}
}

func weightedLetter(n int) byte {
	for i, w := range rareWeights {
		if n < w {
			return byte('A' + i)
		}
		n -= w
	}
	return 'Z'
}

// coversPlaced reports whether p would sit on exactly the cells of an
// earlier placement, which would make the two indistinguishable to a player
func coversPlaced(p Placement, placed []Placement) bool {
	for _, other := range placed {
		if p.sameCells(other) {
			return true
		}
	}
	return false
}

func validWord(w string) bool {
	if len(w) < 2 {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}
