package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrInvalidPhase      = errors.New("invalid action for current phase")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrOutOfBounds       = errors.New("cell is outside the grid")
	ErrInvalidGrid       = errors.New("invalid grid")
	ErrGridTooLarge      = errors.New("grid is too large")
	ErrNoActiveDrag      = errors.New("no drag in progress")
	ErrNoWords           = errors.New("word list is empty")
	ErrInvalidWord       = errors.New("word must be at least two letters A-Z")
	ErrNilPuzzle         = errors.New("puzzle is nil")
	ErrUnplaceableWord   = errors.New("word could not be placed")
)

// UnplaceableWordError reports a word that did not fit within the retry budget.
// Callers may grow the grid, reorder the words, or drop the word and try again.
type UnplaceableWordError struct {
	Word     string
	Size     int
	Attempts int
}

func (e *UnplaceableWordError) Error() string {
	return fmt.Sprintf("cannot place %q in %dx%d grid after %d attempts", e.Word, e.Size, e.Size, e.Attempts)
}

// Is lets errors.Is match ErrUnplaceableWord
func (e *UnplaceableWordError) Is(target error) bool {
	return target == ErrUnplaceableWord
}
