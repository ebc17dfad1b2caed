package minefield

import "fmt"

// Grid owns a fixed rows x cols matrix of cells.
// A Grid is not safe for concurrent use.
type Grid struct {
	rows  int
	cols  int
	cells []Cell // row-major
}

// New allocates a grid with every flag cleared
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, rows, cols)
	}

	g := &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.cells[r*cols+c] = Cell{Row: r, Col: c}
		}
	}
	return g, nil
}

// Dimensions returns the row and column counts
func (g *Grid) Dimensions() (rows, cols int) {
	return g.rows, g.cols
}

// Size returns the total number of cells
func (g *Grid) Size() int {
	return len(g.cells)
}

// Contains reports whether (r, c) lies inside the grid
func (g *Grid) Contains(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

func (g *Grid) cell(r, c int) (*Cell, error) {
	if !g.Contains(r, c) {
		return nil, &OutOfRangeError{Row: r, Col: c, Rows: g.rows, Cols: g.cols}
	}
	return &g.cells[r*g.cols+c], nil
}

// CellAt returns a snapshot of the cell at (r, c)
func (g *Grid) CellAt(r, c int) (Cell, error) {
	cell, err := g.cell(r, c)
	if err != nil {
		return Cell{}, err
	}
	return *cell, nil
}

// neighborCoords lists the in-bounds positions around (r, c) in row-major order.
// The caller must have checked (r, c) itself.
func (g *Grid) neighborCoords(r, c int) []Coord {
	minRow, maxRow := max(r-1, 0), min(r+1, g.rows-1)
	minCol, maxCol := max(c-1, 0), min(c+1, g.cols-1)

	coords := make([]Coord, 0, 8)
	for nr := minRow; nr <= maxRow; nr++ {
		for nc := minCol; nc <= maxCol; nc++ {
			if nr == r && nc == c {
				continue
			}
			coords = append(coords, Coord{Row: nr, Col: nc})
		}
	}
	return coords
}

// Neighbors returns snapshots of the up to eight cells surrounding (r, c).
// Positions are clamped to the grid, never wrapped.
func (g *Grid) Neighbors(r, c int) ([]Cell, error) {
	if _, err := g.cell(r, c); err != nil {
		return nil, err
	}

	coords := g.neighborCoords(r, c)
	cells := make([]Cell, 0, len(coords))
	for _, pos := range coords {
		n, err := g.cell(pos.Row, pos.Col)
		if err != nil {
			return nil, &ConsistencyError{Op: "neighbors", Msg: err.Error()}
		}
		cells = append(cells, *n)
	}
	return cells, nil
}

// NeighboringMineCount counts mines among the neighbors of (r, c)
func (g *Grid) NeighboringMineCount(r, c int) (int, error) {
	neighbors, err := g.Neighbors(r, c)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range neighbors {
		if n.IsMine {
			count++
		}
	}
	return count, nil
}

// Expose marks (r, c) exposed. It reports whether the cell changed.
func (g *Grid) Expose(r, c int) (bool, error) {
	cell, err := g.cell(r, c)
	if err != nil {
		return false, err
	}
	if cell.Exposed {
		return false, nil
	}
	cell.Exposed = true
	return true, nil
}

// ToggleFlag flips the flag on (r, c) and returns the new value.
// Exposed cells can be flagged too.
func (g *Grid) ToggleFlag(r, c int) (bool, error) {
	cell, err := g.cell(r, c)
	if err != nil {
		return false, err
	}
	cell.Flagged = !cell.Flagged
	return cell.Flagged, nil
}

// SetMine marks (r, c) as a mine. It reports whether the cell changed.
func (g *Grid) SetMine(r, c int) (bool, error) {
	cell, err := g.cell(r, c)
	if err != nil {
		return false, err
	}
	if cell.IsMine {
		return false, nil
	}
	cell.IsMine = true
	return true, nil
}

// Cells returns a row-major snapshot of every cell
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// MineCount returns the number of mines on the grid
func (g *Grid) MineCount() int {
	return g.count(func(c *Cell) bool { return c.IsMine })
}

// ExposedCount returns the number of exposed cells
func (g *Grid) ExposedCount() int {
	return g.count(func(c *Cell) bool { return c.Exposed })
}

// FlaggedCount returns the number of flagged cells
func (g *Grid) FlaggedCount() int {
	return g.count(func(c *Cell) bool { return c.Flagged })
}

func (g *Grid) count(pred func(*Cell) bool) int {
	n := 0
	for i := range g.cells {
		if pred(&g.cells[i]) {
			n++
		}
	}
	return n
}
