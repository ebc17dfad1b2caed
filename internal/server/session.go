package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/config"
	"github.com/gravitas-games/minesweeper/internal/game"
	"github.com/gravitas-games/minesweeper/internal/metrics"
	"github.com/gravitas-games/minesweeper/internal/minefield"
	"github.com/gravitas-games/minesweeper/internal/network"
	"github.com/gravitas-games/minesweeper/pkg/models"
)

// Session binds one player to their own game session. Only the owning
// connection's read pump calls into it.
type Session struct {
	player  *models.Player
	game    *game.Session
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPlacer builds the configured placer with a freshly seeded source
func NewPlacer(cfg config.GameConfig) minefield.Placer {
	return cfg.Placer(minefield.NewSource())
}

// NewSession deals a fresh game for player
func NewSession(player *models.Player, cfg *config.Config, placer minefield.Placer, m *metrics.Metrics, logger *zap.Logger) (*Session, error) {
	g, err := game.NewSession(cfg.Game.Session(),
		game.WithPlacer(placer),
		game.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	logger.Info("Session created",
		zap.String("player", player.Username),
		zap.String("session", g.ID()),
		zap.Int("rows", cfg.Game.Rows),
		zap.Int("cols", cfg.Game.Cols),
		zap.Int("mines", cfg.Game.Mines))
	return bindSession(player, g, m, logger), nil
}

func bindSession(player *models.Player, g *game.Session, m *metrics.Metrics, logger *zap.Logger) *Session {
	player.SessionID = g.ID()
	return &Session{
		player:  player,
		game:    g,
		metrics: m,
		logger:  logger,
	}
}

// Welcome returns the greeting and the initial board
func (s *Session) Welcome() []*network.ServerMessage {
	welcome := &network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			PlayerID:  s.player.ID,
			Username:  s.player.Username,
			SessionID: s.game.ID(),
		},
	}
	return append([]*network.ServerMessage{welcome}, s.board()...)
}

// Handle dispatches one client message and returns the replies in order
func (s *Session) Handle(msg *network.ClientMessage) []*network.ServerMessage {
	s.player.Touch(time.Now())

	switch msg.Type {
	case network.MsgTypeExpose:
		return s.handleExpose(msg.Payload)

	case network.MsgTypeFlag:
		return s.handleFlag(msg.Payload)

	case network.MsgTypeReset:
		return s.handleReset()

	case network.MsgTypePing:
		return []*network.ServerMessage{{
			Type:    network.MsgTypePong,
			Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
		}}

	default:
		s.logger.Debug("Unknown message type", zap.String("type", msg.Type))
		return errorMessage(network.ErrCodeUnknownType, "Unknown message type")
	}
}

func (s *Session) handleExpose(payload json.RawMessage) []*network.ServerMessage {
	cell, errMsg := decodeCell(payload)
	if errMsg != nil {
		return errMsg
	}

	res, err := s.game.ExposeCell(cell.Row, cell.Col)
	s.metrics.ObserveExpose(res, err)
	if !res.Lost {
		if err != nil {
			return s.gameError("expose", err)
		}
		return s.board()
	}

	s.logger.Info("Player hit a mine",
		zap.String("player", s.player.Username),
		zap.Int("row", cell.Row),
		zap.Int("col", cell.Col))
	lost := &network.ServerMessage{
		Type: network.MsgTypeLost,
		Payload: network.LostPayload{
			Row:    cell.Row,
			Col:    cell.Col,
			Losses: s.game.Losses(),
		},
	}
	if err != nil {
		return append([]*network.ServerMessage{lost}, s.gameError("redeal", err)...)
	}
	return append([]*network.ServerMessage{lost}, s.board()...)
}

func (s *Session) handleFlag(payload json.RawMessage) []*network.ServerMessage {
	cell, errMsg := decodeCell(payload)
	if errMsg != nil {
		return errMsg
	}

	if _, err := s.game.ToggleFlag(cell.Row, cell.Col); err != nil {
		return s.gameError("flag", err)
	}
	s.metrics.FlagsToggled.Inc()
	return s.board()
}

func (s *Session) handleReset() []*network.ServerMessage {
	if err := s.game.Reset(); err != nil {
		return s.gameError("reset", err)
	}
	s.metrics.Resets.Inc()
	return s.board()
}

func (s *Session) board() []*network.ServerMessage {
	board, err := network.NewBoardPayload(s.game)
	if err != nil {
		return s.gameError("board", err)
	}
	return []*network.ServerMessage{{Type: network.MsgTypeBoard, Payload: board}}
}

// gameError maps core errors onto protocol error codes
func (s *Session) gameError(op string, err error) []*network.ServerMessage {
	var oor *minefield.OutOfRangeError
	if errors.As(err, &oor) {
		return errorMessage(network.ErrCodeOutOfRange, oor.Error())
	}
	if errors.Is(err, game.ErrSessionLost) {
		return errorMessage(network.ErrCodeSessionLost, "Board was lost and could not be redealt, send reset")
	}

	s.logger.Error("Game operation failed", zap.String("op", op), zap.Error(err))
	return errorMessage(network.ErrCodeInternal, "Internal error")
}

func decodeCell(payload json.RawMessage) (network.CellPayload, []*network.ServerMessage) {
	var cell network.CellPayload
	if len(payload) == 0 {
		return cell, errorMessage(network.ErrCodeInvalidMessage, "Missing cell payload")
	}
	if err := json.Unmarshal(payload, &cell); err != nil {
		return cell, errorMessage(network.ErrCodeInvalidMessage, "Invalid cell payload")
	}
	return cell, nil
}

func errorMessage(code, message string) []*network.ServerMessage {
	return []*network.ServerMessage{{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	}}
}
