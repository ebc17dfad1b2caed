package console

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gravitas-games/minesweeper/internal/game"
)

// Glyphs used when drawing the board
const (
	glyphHidden  = '-'
	glyphFlag    = 'F'
	glyphMine    = '*'
	glyphCleared = '.'
)

// Render draws the session's board with row and column indices.
// Hidden cells never reveal whether they hold a mine.
func Render(w io.Writer, s *game.Session) error {
	bw := bufio.NewWriter(w)
	rows, cols := s.Dimensions()

	fmt.Fprint(bw, "    ")
	for c := 0; c < cols; c++ {
		fmt.Fprintf(bw, "%3d", c)
	}
	fmt.Fprintln(bw)

	for r := 0; r < rows; r++ {
		fmt.Fprintf(bw, "%3d:", r)
		for c := 0; c < cols; c++ {
			st, err := s.CellState(r, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(bw, "%3c", glyph(st))
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "mines: %d  flags: %d  losses: %d\n", s.Config().Mines, s.FlagCount(), s.Losses())
	return bw.Flush()
}

func glyph(st game.CellState) rune {
	switch {
	case st.Exposed && st.IsMine:
		return glyphMine
	case st.Exposed && st.NeighboringMineCount > 0:
		return rune('0' + st.NeighboringMineCount)
	case st.Exposed:
		return glyphCleared
	case st.Flagged:
		return glyphFlag
	default:
		return glyphHidden
	}
}
