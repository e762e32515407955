package domain

// Placement records where a word sits in the grid
type Placement struct {
	Word      string    `json:"word"`
	Start     Coord     `json:"start"`
	Direction Direction `json:"direction"`
}

// Length returns the number of cells the placement covers
func (p Placement) Length() int {
	return len(p.Word)
}

// End returns the cell holding the word's last letter
func (p Placement) End() Coord {
	return p.Start.Add(p.Direction, p.Length()-1)
}

// Path returns the cells of the placement from first letter to last
func (p Placement) Path() []Coord {
	return Path(p.Start, p.Direction, p.Length())
}

// fits reports whether the placement stays in bounds and every cell on its
// path is empty or already holds the letter the word needs there
func (p Placement) fits(g *Grid) bool {
	if !g.InBounds(p.Start) || !g.InBounds(p.End()) {
		return false
	}
	for i, c := range p.Path() {
		if got := g.At(c); got != empty && got != p.Word[i] {
			return false
		}
	}
	return true
}

// sameCells reports whether p covers exactly the cells of other, in either order
func (p Placement) sameCells(other Placement) bool {
	if p.Length() != other.Length() {
		return false
	}
	if p.Start == other.Start && p.Direction == other.Direction {
		return true
	}
	return p.Start == other.End() && p.Direction == other.Direction.Reverse()
}

// Puzzle is a filled grid together with the placement of every word
type Puzzle struct {
	Grid       *Grid
	Placements []Placement
}

// Words returns the placed words in placement order
func (p *Puzzle) Words() []string {
	words := make([]string, len(p.Placements))
	for i, pl := range p.Placements {
		words[i] = pl.Word
	}
	return words
}

// Verify checks that every placement spells its word in the grid
func (p *Puzzle) Verify() bool {
	for _, pl := range p.Placements {
		if !pl.Direction.Valid() || !p.Grid.InBounds(pl.Start) || !p.Grid.InBounds(pl.End()) {
			return false
		}
		for i, c := range pl.Path() {
			if p.Grid.At(c) != pl.Word[i] {
				return false
			}
		}
	}
	return true
}
