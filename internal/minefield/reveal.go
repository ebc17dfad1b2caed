package minefield

// Alone reports whether no mine borders (r, c)
func (g *Grid) Alone(r, c int) (bool, error) {
	n, err := g.NeighboringMineCount(r, c)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Sweep cascades exposure outward from (r, c) and returns how many cells it
// exposed. Only alone cells are ever exposed by the cascade; the numbered
// ring around a cleared region stays hidden. The start cell itself is left
// to the caller.
//
// Cells are marked exposed before they are pushed, so the exposed flag is
// the visited set and no cell is processed twice.
func (g *Grid) Sweep(r, c int) (int, error) {
	alone, err := g.Alone(r, c)
	if err != nil || !alone {
		return 0, err
	}

	exposed := 0
	stack := []Coord{{Row: r, Col: c}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, pos := range g.neighborCoords(cur.Row, cur.Col) {
			n, err := g.cell(pos.Row, pos.Col)
			if err != nil {
				return exposed, &ConsistencyError{Op: "sweep", Msg: err.Error()}
			}
			if n.Exposed {
				continue
			}
			alone, err := g.Alone(pos.Row, pos.Col)
			if err != nil {
				return exposed, err
			}
			if !alone {
				continue
			}
			// a mine next to an alone cell would make that cell not alone
			if n.IsMine {
				return exposed, &ConsistencyError{Op: "sweep", Msg: "cascade reached a mine"}
			}

			n.Exposed = true
			exposed++
			stack = append(stack, pos)
		}
	}
	return exposed, nil
}
