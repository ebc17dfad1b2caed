package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gravitas-games/minesweeper/internal/game"
)

// Metrics holds the game counters exported on /metrics
type Metrics struct {
	CellsExposed   prometheus.Counter
	Losses         prometheus.Counter
	FlagsToggled   prometheus.Counter
	Resets         prometheus.Counter
	ActiveSessions prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CellsExposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minesweeper_cells_exposed_total",
			Help: "Total cells exposed by clicks and cascades",
		}),
		Losses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minesweeper_losses_total",
			Help: "Total mines exposed",
		}),
		FlagsToggled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minesweeper_flags_toggled_total",
			Help: "Total flag toggles",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minesweeper_resets_total",
			Help: "Total grids redealt, whether requested or after a loss",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "minesweeper_active_sessions",
			Help: "Sessions currently attached to a connection",
		}),
	}

	reg.MustRegister(m.CellsExposed, m.Losses, m.FlagsToggled, m.Resets, m.ActiveSessions)
	return m
}

// ObserveExpose records the outcome of one expose call. A loss whose redeal
// failed counts as a loss but not as a reset.
func (m *Metrics) ObserveExpose(res game.Result, err error) {
	m.CellsExposed.Add(float64(res.Exposed))
	if res.Lost {
		m.Losses.Inc()
		if err == nil {
			m.Resets.Inc()
		}
	}
}
