package minefield

// Coord identifies a position on the grid
type Coord struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Cell is a single grid position. Copies handed out by Grid are snapshots;
// the Grid owns the live value.
type Cell struct {
	Row     int
	Col     int
	Exposed bool
	Flagged bool
	IsMine  bool
}

// Coord returns the cell's position
func (c Cell) Coord() Coord {
	return Coord{Row: c.Row, Col: c.Col}
}
