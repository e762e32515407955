package domain

// Coord is a cell position in the grid
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add moves the coordinate n steps along d
func (c Coord) Add(d Direction, n int) Coord {
	return Coord{Row: c.Row + d.DR*n, Col: c.Col + d.DC*n}
}

// Direction is a unit vector over rows and columns.
// Each component is -1, 0 or +1 and at least one is non-zero.
type Direction struct {
	DR int `json:"dr"`
	DC int `json:"dc"`
}

var (
	Right     = Direction{DR: 0, DC: 1}
	Left      = Direction{DR: 0, DC: -1}
	Down      = Direction{DR: 1, DC: 0}
	Up        = Direction{DR: -1, DC: 0}
	DownRight = Direction{DR: 1, DC: 1}
	UpLeft    = Direction{DR: -1, DC: -1}
	UpRight   = Direction{DR: -1, DC: 1}
	DownLeft  = Direction{DR: 1, DC: -1}
)

// Directions lists all eight directions: four axes, two signs each
var Directions = []Direction{Right, Left, Down, Up, DownRight, UpLeft, UpRight, DownLeft}

// ForwardDirections are the directions that read left-to-right or top-to-bottom
var ForwardDirections = []Direction{Right, Down, DownRight, UpRight}

// StraightDirections are horizontal and vertical reading order only
var StraightDirections = []Direction{Right, Down}

// Valid reports whether d is one of the eight unit directions
func (d Direction) Valid() bool {
	if d.DR == 0 && d.DC == 0 {
		return false
	}
	return d.DR >= -1 && d.DR <= 1 && d.DC >= -1 && d.DC <= 1
}

// Reverse returns the opposite direction
func (d Direction) Reverse() Direction {
	return Direction{DR: -d.DR, DC: -d.DC}
}

// String returns a compass-style name for the direction
func (d Direction) String() string {
	switch d {
	case Right:
		return "E"
	case Left:
		return "W"
	case Down:
		return "S"
	case Up:
		return "N"
	case DownRight:
		return "SE"
	case UpLeft:
		return "NW"
	case UpRight:
		return "NE"
	case DownLeft:
		return "SW"
	default:
		return "?"
	}
}

// DirectionBetween returns the unit direction from a to b and the number of
// cells on the path, both ends included. ok is false when a and b are the
// same cell or do not lie on a horizontal, vertical or diagonal line.
func DirectionBetween(a, b Coord) (d Direction, length int, ok bool) {
	dr := b.Row - a.Row
	dc := b.Col - a.Col
	if dr == 0 && dc == 0 {
		return Direction{}, 0, false
	}

	adr, adc := abs(dr), abs(dc)
	if dr != 0 && dc != 0 && adr != adc {
		return Direction{}, 0, false
	}

	return Direction{DR: sign(dr), DC: sign(dc)}, max(adr, adc) + 1, true
}

// Path walks length cells from start along d
func Path(start Coord, d Direction, length int) []Coord {
	path := make([]Coord, length)
	for i := range path {
		path[i] = start.Add(d, i)
	}
	return path
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
