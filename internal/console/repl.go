package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/game"
	"github.com/gravitas-games/minesweeper/internal/minefield"
)

const helpText = `commands:
  e ROW COL   expose a cell
  f ROW COL   toggle a flag
  r           deal a new board
  h           show this help
  q           quit
`

// Run plays s interactively, reading commands from in and drawing to out
// until in is exhausted or the player quits
func Run(in io.Reader, out io.Writer, s *game.Session, logger *zap.Logger) error {
	if err := Render(out, s); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "q", "quit", "exit":
			return nil

		case "h", "help", "?":
			fmt.Fprint(out, helpText)
			continue

		case "r", "reset":
			if err := s.Reset(); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			logger.Debug("Board reset by player")

		case "e", "expose":
			r, c, err := parseCoord(fields[1:])
			if err != nil {
				fmt.Fprintf(out, "%v\n", err)
				continue
			}
			res, err := s.ExposeCell(r, c)
			if err != nil {
				if !reportable(out, err) {
					return err
				}
				continue
			}
			if res.Lost {
				fmt.Fprintf(out, "BOOM! (%d,%d) was a mine. Dealing a new board.\n", r, c)
			}

		case "f", "flag":
			r, c, err := parseCoord(fields[1:])
			if err != nil {
				fmt.Fprintf(out, "%v\n", err)
				continue
			}
			if _, err := s.ToggleFlag(r, c); err != nil {
				if !reportable(out, err) {
					return err
				}
				continue
			}

		default:
			fmt.Fprintf(out, "unknown command %q, try h\n", fields[0])
			continue
		}

		if err := Render(out, s); err != nil {
			return err
		}
	}
}

// reportable prints player mistakes and reports whether err was one
func reportable(out io.Writer, err error) bool {
	var oor *minefield.OutOfRangeError
	if errors.As(err, &oor) {
		fmt.Fprintf(out, "%v\n", oor)
		return true
	}
	return false
}

func parseCoord(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected ROW COL")
	}
	r, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad row %q", args[0])
	}
	c, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad column %q", args[1])
	}
	return r, c, nil
}

// ParseLayout reads mine positions written as "r,c;r,c"
func ParseLayout(layout string) ([]minefield.Coord, error) {
	var coords []minefield.Coord
	for _, part := range strings.Split(layout, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rc := strings.Split(part, ",")
		if len(rc) != 2 {
			return nil, fmt.Errorf("bad layout entry %q", part)
		}
		r, c, err := parseCoord([]string{strings.TrimSpace(rc[0]), strings.TrimSpace(rc[1])})
		if err != nil {
			return nil, fmt.Errorf("bad layout entry %q: %w", part, err)
		}
		coords = append(coords, minefield.Coord{Row: r, Col: c})
	}
	return coords, nil
}
