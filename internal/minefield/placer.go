package minefield

import (
	"fmt"
	"math/rand/v2"
)

// DefaultMaxAttempts caps the total draws made by RejectionPlacer
const DefaultMaxAttempts = 1000

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Placer seeds mines into a freshly created grid
type Placer interface {
	Place(g *Grid, count int) error
}

// NewSource returns a randomly seeded source
func NewSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededSource returns a deterministic source for replays and tests
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func checkCount(g *Grid, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrTooManyMines, count)
	}
	if count > g.Size() {
		return fmt.Errorf("%w: %d mines for %d cells", ErrTooManyMines, count, g.Size())
	}
	return nil
}

// ShufflePlacer picks mines with a partial Fisher-Yates shuffle over all
// cell indices. It always terminates after count draws.
type ShufflePlacer struct {
	Rand Source
}

// Place marks count distinct, uniformly chosen cells as mines
func (p ShufflePlacer) Place(g *Grid, count int) error {
	if err := checkCount(g, count); err != nil {
		return err
	}
	src := p.Rand
	if src == nil {
		src = NewSource()
	}

	indices := make([]int, g.Size())
	for i := range indices {
		indices[i] = i
	}

	k := len(indices)
	for range count {
		i := src.IntN(k)
		idx := indices[i]
		k--
		indices[i] = indices[k]

		if _, err := g.SetMine(idx/g.cols, idx%g.cols); err != nil {
			return &ConsistencyError{Op: "place", Msg: err.Error()}
		}
	}
	return nil
}

// RejectionPlacer draws random coordinates and retries on duplicates.
// MaxAttempts bounds the draws across all mines, not per mine.
type RejectionPlacer struct {
	Rand        Source
	MaxAttempts int
}

// Place marks count cells as mines or returns *PlacementFailure once the
// attempt cap is exceeded
func (p RejectionPlacer) Place(g *Grid, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrTooManyMines, count)
	}
	src := p.Rand
	if src == nil {
		src = NewSource()
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	placed, attempts := 0, 0
	for placed < count {
		attempts++
		if attempts > maxAttempts {
			return &PlacementFailure{Placed: placed, Wanted: count, Attempts: maxAttempts}
		}

		r := src.IntN(g.rows)
		c := src.IntN(g.cols)
		changed, err := g.SetMine(r, c)
		if err != nil {
			return &ConsistencyError{Op: "place", Msg: err.Error()}
		}
		if changed {
			placed++
		}
	}
	return nil
}

// FixedPlacer places mines at predetermined positions. The count passed to
// Place must match the number of distinct positions.
type FixedPlacer struct {
	Mines []Coord
}

// Place marks each listed position as a mine
func (p FixedPlacer) Place(g *Grid, count int) error {
	if err := checkCount(g, count); err != nil {
		return err
	}

	placed := 0
	for _, pos := range p.Mines {
		changed, err := g.SetMine(pos.Row, pos.Col)
		if err != nil {
			return fmt.Errorf("fixed layout: %w", err)
		}
		if changed {
			placed++
		}
	}
	if placed != count {
		return fmt.Errorf("fixed layout has %d distinct mines, want %d", placed, count)
	}
	return nil
}

// SequencePlacer uses First for the first deal and Rest for every deal after
// it. It keeps a scripted opening layout from repeating on redeal.
type SequencePlacer struct {
	First Placer
	Rest  Placer

	dealt bool
}

// Place delegates to First once, then to Rest
func (p *SequencePlacer) Place(g *Grid, count int) error {
	if p.dealt {
		return p.Rest.Place(g, count)
	}
	p.dealt = true
	return p.First.Place(g, count)
}
