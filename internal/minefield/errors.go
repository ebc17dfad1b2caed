package minefield

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned when a grid is requested with a
	// non-positive row or column count
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")

	// ErrTooManyMines is returned when more mines are requested than the
	// grid has cells
	ErrTooManyMines = errors.New("mine count exceeds cell count")
)

// OutOfRangeError reports a coordinate outside the grid
type OutOfRangeError struct {
	Row, Col   int
	Rows, Cols int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("cell (%d,%d) out of range for %dx%d grid", e.Row, e.Col, e.Rows, e.Cols)
}

// PlacementFailure reports that the rejection placer hit its attempt cap
type PlacementFailure struct {
	Placed   int
	Wanted   int
	Attempts int
}

func (e *PlacementFailure) Error() string {
	return fmt.Sprintf("placed %d of %d mines before giving up after %d attempts", e.Placed, e.Wanted, e.Attempts)
}

// ConsistencyError reports a broken grid invariant
type ConsistencyError struct {
	Op  string
	Msg string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: grid inconsistency: %s", e.Op, e.Msg)
}
