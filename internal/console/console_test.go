package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/game"
	"github.com/gravitas-games/minesweeper/internal/minefield"
)

func newSession(t *testing.T, rows, cols int, mines ...minefield.Coord) *game.Session {
	t.Helper()
	s, err := game.NewSession(game.Config{Rows: rows, Cols: cols, Mines: len(mines)},
		game.WithPlacer(minefield.FixedPlacer{Mines: mines}))
	require.NoError(t, err)
	return s
}

func TestRender(t *testing.T) {
	s := newSession(t, 3, 3, minefield.Coord{Row: 2, Col: 2})
	_, err := s.ExposeCell(0, 0)
	require.NoError(t, err)
	_, err = s.ExposeCell(1, 1)
	require.NoError(t, err)
	_, err = s.ToggleFlag(2, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s))

	want := "" +
		"      0  1  2\n" +
		"  0:  .  .  .\n" +
		"  1:  .  1  -\n" +
		"  2:  .  -  F\n" +
		"mines: 1  flags: 1  losses: 0\n"
	assert.Equal(t, want, buf.String())
}

func TestRunScript(t *testing.T) {
	s := newSession(t, 2, 2, minefield.Coord{Row: 0, Col: 0})
	in := strings.NewReader(strings.Join([]string{
		"h",
		"f 1 1",
		"e 5 5",
		"e x 1",
		"dig",
		"e 0 0",
		"q",
		"e 1 1",
	}, "\n"))

	var out bytes.Buffer
	require.NoError(t, Run(in, &out, s, zap.NewNop()))

	text := out.String()
	assert.Contains(t, text, "commands:")
	assert.Contains(t, text, "out of range")
	assert.Contains(t, text, `bad row "x"`)
	assert.Contains(t, text, `unknown command "dig"`)
	assert.Contains(t, text, "BOOM! (0,0) was a mine.")
	assert.Equal(t, 1, s.Losses())
	assert.Zero(t, s.ExposedCount(), "commands after quit must not run")
}

func TestRunStopsAtEOF(t *testing.T) {
	s := newSession(t, 2, 2)
	var out bytes.Buffer
	require.NoError(t, Run(strings.NewReader("e 0 0\n"), &out, s, zap.NewNop()))
	assert.Equal(t, 4, s.ExposedCount())
}

func TestParseLayout(t *testing.T) {
	coords, err := ParseLayout("0,1; 2, 3;")
	require.NoError(t, err)
	assert.Equal(t, []minefield.Coord{{Row: 0, Col: 1}, {Row: 2, Col: 3}}, coords)

	coords, err = ParseLayout("")
	require.NoError(t, err)
	assert.Empty(t, coords)

	_, err = ParseLayout("1;2")
	assert.Error(t, err)
	_, err = ParseLayout("a,b")
	assert.Error(t, err)
}
