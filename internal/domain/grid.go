package domain

import "fmt"

// empty marks a cell no word has claimed yet. It only exists while a
// puzzle is being generated.
const empty byte = 0

// Grid is a square matrix of uppercase letters with a revealed flag per cell
type Grid struct {
	size     int
	cells    [][]byte
	revealed [][]bool
}

// NewGrid creates an empty size x size grid
func NewGrid(size int) *Grid {
	cells := make([][]byte, size)
	revealed := make([][]bool, size)
	for i := range cells {
		cells[i] = make([]byte, size)
		revealed[i] = make([]bool, size)
	}
	return &Grid{size: size, cells: cells, revealed: revealed}
}

// GridFromRows builds a grid from equal-length rows of letters.
// It returns an error wrapping ErrInvalidGrid if the rows do not form a square.
func GridFromRows(rows []string) (*Grid, error) {
	g := NewGrid(len(rows))
	for r, row := range rows {
		if len(row) != len(rows) {
			return nil, fmt.Errorf("rows must form a square: row %d has %d letters, want %d: %w",
				r, len(row), len(rows), ErrInvalidGrid)
		}
		for c := 0; c < len(row); c++ {
			g.cells[r][c] = row[c]
		}
	}
	return g, nil
}

// Size returns the grid dimension N
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}

// At returns the letter at c, or 0 when c is out of bounds
func (g *Grid) At(c Coord) byte {
	if !g.InBounds(c) {
		return empty
	}
	return g.cells[c.Row][c.Col]
}

func (g *Grid) set(c Coord, letter byte) {
	g.cells[c.Row][c.Col] = letter
}

// Rows returns the grid as one string per row
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	for i, row := range g.cells {
		rows[i] = string(row)
	}
	return rows
}

// Revealed reports whether the cell at c has been revealed
func (g *Grid) Revealed(c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.revealed[c.Row][c.Col]
}

// Reveal marks every in-bounds cell of path as revealed
func (g *Grid) Reveal(path []Coord) {
	for _, c := range path {
		if g.InBounds(c) {
			g.revealed[c.Row][c.Col] = true
		}
	}
}

// RevealedCells returns the revealed cells in row-major order
func (g *Grid) RevealedCells() []Coord {
	cells := make([]Coord, 0)
	for r := range g.revealed {
		for c, on := range g.revealed[r] {
			if on {
				cells = append(cells, Coord{Row: r, Col: c})
			}
		}
	}
	return cells
}

// String renders the grid with spaces between letters, one row per line
func (g *Grid) String() string {
	buf := make([]byte, 0, g.size*g.size*2)
	for r, row := range g.cells {
		for c, letter := range row {
			if c > 0 {
				buf = append(buf, ' ')
			}
			if letter == empty {
				letter = '.'
			}
			buf = append(buf, letter)
		}
		if r < g.size-1 {
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}
