package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/gravitas-games/minesweeper/internal/game"
)

func TestObserveExpose(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveExpose(game.Result{Exposed: 7}, nil)
	m.ObserveExpose(game.Result{Exposed: 1, Lost: true}, nil)

	assert.Equal(t, 8.0, testutil.ToFloat64(m.CellsExposed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Losses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resets))
}

func TestObserveExposeFailedRedeal(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveExpose(game.Result{Exposed: 1, Lost: true}, errors.New("placement failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Losses))
	assert.Zero(t, testutil.ToFloat64(m.Resets))
}

func TestNewRegistersOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 5, count)
}
