package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/minefield"
)

// ErrSessionLost is returned by board operations while a lost grid is
// waiting to be redealt. Only Reset is accepted in that state.
var ErrSessionLost = errors.New("session lost and not yet redealt")

// State is the session lifecycle state
type State int

const (
	StatePlaying State = iota
	StateLost
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateLost:
		return "lost"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config fixes the board shape for the life of a session
type Config struct {
	Rows  int
	Cols  int
	Mines int
}

// Validate checks that the configuration describes a placeable board
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: got %dx%d", minefield.ErrInvalidDimensions, c.Rows, c.Cols)
	}
	if c.Mines < 0 || c.Mines > c.Rows*c.Cols {
		return fmt.Errorf("%w: %d mines for %d cells", minefield.ErrTooManyMines, c.Mines, c.Rows*c.Cols)
	}
	return nil
}

// Result describes the outcome of a single ExposeCell call
type Result struct {
	Cell minefield.Coord
	// Lost is set when the cell was a mine. The session has already been
	// reset onto a fresh grid by the time the caller sees it.
	Lost bool
	// Exposed counts cells newly exposed by the call, the target included
	Exposed int
}

// CellState is the renderer's view of one cell
type CellState struct {
	Exposed              bool
	Flagged              bool
	IsMine               bool
	NeighboringMineCount int
}

// Option customises a Session
type Option func(*Session)

// WithPlacer overrides the default shuffle placer
func WithPlacer(p minefield.Placer) Option {
	return func(s *Session) {
		s.placer = p
	}
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithID sets the session ID instead of generating one
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Session owns one live grid and drives the expose, flag, loss and reset
// lifecycle. It is not safe for concurrent use.
type Session struct {
	id     string
	config Config
	placer minefield.Placer
	logger *zap.Logger

	grid   *minefield.Grid
	state  State
	losses int
}

// NewSession validates cfg, builds a grid and places its mines
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	s := &Session{
		id:     uuid.NewString(),
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.placer == nil {
		s.placer = minefield.ShufflePlacer{Rand: minefield.NewSource()}
	}
	s.logger = s.logger.With(zap.String("session", s.id))

	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset discards the current grid and deals a new one with the same
// configuration. Nothing carries over.
func (s *Session) Reset() error {
	grid, err := minefield.New(s.config.Rows, s.config.Cols)
	if err != nil {
		return fmt.Errorf("failed to create grid: %w", err)
	}
	if err := s.placer.Place(grid, s.config.Mines); err != nil {
		return fmt.Errorf("failed to place mines: %w", err)
	}

	s.grid = grid
	s.state = StatePlaying
	s.logger.Debug("Grid dealt",
		zap.Int("rows", s.config.Rows),
		zap.Int("cols", s.config.Cols),
		zap.Int("mines", s.config.Mines))
	return nil
}

// ExposeCell exposes (r, c). Hitting a mine loses the game and resets the
// session; otherwise the reveal cascades from the cell. Exposing a flagged
// cell is allowed.
func (s *Session) ExposeCell(r, c int) (Result, error) {
	res := Result{Cell: minefield.Coord{Row: r, Col: c}}
	if s.state == StateLost {
		return res, ErrSessionLost
	}

	changed, err := s.grid.Expose(r, c)
	if err != nil {
		return res, err
	}
	if changed {
		res.Exposed++
	}

	cell, err := s.grid.CellAt(r, c)
	if err != nil {
		return res, err
	}

	if cell.IsMine {
		s.state = StateLost
		s.losses++
		res.Lost = true
		s.logger.Info("Mine exposed, resetting",
			zap.Int("row", r),
			zap.Int("col", c),
			zap.Int("losses", s.losses))

		if err := s.Reset(); err != nil {
			return res, fmt.Errorf("redeal after loss: %w", err)
		}
		return res, nil
	}

	swept, err := s.grid.Sweep(r, c)
	res.Exposed += swept
	if err != nil {
		return res, fmt.Errorf("sweep from (%d,%d): %w", r, c, err)
	}
	return res, nil
}

// ToggleFlag flips the flag on (r, c) and returns its new value.
// Flags are cosmetic and exposed cells accept them.
func (s *Session) ToggleFlag(r, c int) (bool, error) {
	if s.state == StateLost {
		return false, ErrSessionLost
	}
	return s.grid.ToggleFlag(r, c)
}

// CellState returns everything a renderer needs for (r, c)
func (s *Session) CellState(r, c int) (CellState, error) {
	if s.state == StateLost {
		return CellState{}, ErrSessionLost
	}
	cell, err := s.grid.CellAt(r, c)
	if err != nil {
		return CellState{}, err
	}
	n, err := s.grid.NeighboringMineCount(r, c)
	if err != nil {
		return CellState{}, err
	}
	return CellState{
		Exposed:              cell.Exposed,
		Flagged:              cell.Flagged,
		IsMine:               cell.IsMine,
		NeighboringMineCount: n,
	}, nil
}

// Dimensions returns the board's row and column counts
func (s *Session) Dimensions() (rows, cols int) {
	return s.grid.Dimensions()
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Config returns the board configuration
func (s *Session) Config() Config { return s.config }

// State returns the lifecycle state. Losses reset immediately, so StateLost
// persists only when that redeal failed.
func (s *Session) State() State { return s.state }

// Losses returns how many mines have been exposed in this session
func (s *Session) Losses() int { return s.losses }

// FlagCount returns the number of flagged cells on the current grid
func (s *Session) FlagCount() int { return s.grid.FlaggedCount() }

// ExposedCount returns the number of exposed cells on the current grid
func (s *Session) ExposedCount() int { return s.grid.ExposedCount() }
