package domain

// Selection is the straight line between the cell a drag started on and
// the cell it was released on
type Selection struct {
	Start Coord `json:"start"`
	End   Coord `json:"end"`
}

// Path returns the cells from Start to End. ok is false for zero-length
// drags and drags that are not horizontal, vertical or diagonal.
func (s Selection) Path() ([]Coord, bool) {
	d, length, ok := DirectionBetween(s.Start, s.End)
	if !ok {
		return nil, false
	}
	return Path(s.Start, d, length), true
}

// matches reports whether the selection covers exactly the placement's
// cells. reversed is true when the drag ran from the last letter to the first.
func (s Selection) matches(p Placement) (matched, reversed bool) {
	d, length, ok := DirectionBetween(s.Start, s.End)
	if !ok || length != p.Length() {
		return false, false
	}
	if s.Start == p.Start && d == p.Direction {
		return true, false
	}
	if s.Start == p.End() && d == p.Direction.Reverse() {
		return true, true
	}
	return false, false
}

// FoundWord describes a placement the player has just found
type FoundWord struct {
	Index     int       `json:"index"`
	Word      string    `json:"word"`
	Start     Coord     `json:"start"`
	End       Coord     `json:"end"`
	Direction Direction `json:"direction"`
	Reversed  bool      `json:"reversed"`
}
