package minefield

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exposedCoords(g *Grid) []Coord {
	var out []Coord
	for _, c := range g.Cells() {
		if c.Exposed {
			out = append(out, c.Coord())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func TestSweepLeavesNumberedBorderHidden(t *testing.T) {
	g := mustGrid(t, 3, 3, Coord{2, 2})

	_, err := g.Expose(0, 0)
	require.NoError(t, err)
	n, err := g.Sweep(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	want := []Coord{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {2, 0}}
	if diff := cmp.Diff(want, exposedCoords(g)); diff != "" {
		t.Fatalf("exposed cells mismatch (-want +got):\n%s", diff)
	}
}

func TestSweepFromNumberedCellDoesNothing(t *testing.T) {
	g := mustGrid(t, 3, 3, Coord{2, 2})

	n, err := g.Sweep(1, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, g.ExposedCount())
}

func TestSweepEmptyGridExposesEverything(t *testing.T) {
	g := mustGrid(t, 5, 5)

	_, err := g.Expose(2, 2)
	require.NoError(t, err)
	n, err := g.Sweep(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, 25, g.ExposedCount())
}

func TestSweepDoesNotCrossMineWall(t *testing.T) {
	// a full column of mines splits the grid
	g := mustGrid(t, 4, 7, Coord{0, 3}, Coord{1, 3}, Coord{2, 3}, Coord{3, 3})

	_, err := g.Expose(0, 0)
	require.NoError(t, err)
	_, err = g.Sweep(0, 0)
	require.NoError(t, err)

	for _, c := range g.Cells() {
		switch {
		case c.Col <= 1:
			assert.True(t, c.Exposed, "(%d,%d) should be exposed", c.Row, c.Col)
		default:
			assert.False(t, c.Exposed, "(%d,%d) should stay hidden", c.Row, c.Col)
		}
	}
}

func TestSweepNeverExposesMines(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g, err := New(12, 12)
		require.NoError(t, err)
		require.NoError(t, ShufflePlacer{Rand: NewSeededSource(seed)}.Place(g, 20))

		for _, c := range g.Cells() {
			if c.IsMine {
				continue
			}
			_, err := g.Expose(c.Row, c.Col)
			require.NoError(t, err)
			_, err = g.Sweep(c.Row, c.Col)
			require.NoError(t, err)
		}

		for _, c := range g.Cells() {
			if c.IsMine {
				assert.False(t, c.Exposed, "seed %d: mine (%d,%d) exposed by cascade", seed, c.Row, c.Col)
			}
		}
	}
}

func TestSweepAlreadyExposedRegionIsNoop(t *testing.T) {
	g := mustGrid(t, 4, 4, Coord{3, 3})

	_, err := g.Expose(0, 0)
	require.NoError(t, err)
	_, err = g.Sweep(0, 0)
	require.NoError(t, err)
	before := exposedCoords(g)

	n, err := g.Sweep(0, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, exposedCoords(g))
}

func TestSweepLargeGrid(t *testing.T) {
	g := mustGrid(t, 300, 300)

	n, err := g.Sweep(150, 150)
	require.NoError(t, err)
	assert.Equal(t, 300*300, n)
}

func TestSweepOutOfRange(t *testing.T) {
	g := mustGrid(t, 2, 2)
	_, err := g.Sweep(2, 2)
	var oor *OutOfRangeError
	assert.ErrorAs(t, err, &oor)
}
