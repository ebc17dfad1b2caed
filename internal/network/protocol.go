package network

import (
	"encoding/json"

	"github.com/gravitas-games/minesweeper/internal/game"
)

// Message types - Client → Server
const (
	MsgTypeExpose = "expose"
	MsgTypeFlag   = "flag"
	MsgTypeReset  = "reset"
	MsgTypePing   = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome = "welcome"
	MsgTypeBoard   = "board"
	MsgTypeLost    = "lost"
	MsgTypeError   = "error"
	MsgTypePong    = "pong"
)

// Error codes carried in ErrorPayload
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeOutOfRange     = "out_of_range"
	ErrCodeSessionLost    = "session_lost"
	ErrCodeInternal       = "internal"
)

// Cell display states
const (
	CellHidden  = "hidden"
	CellExposed = "exposed"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// CellPayload addresses a single cell for expose and flag
type CellPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}

// BoardPayload is a full snapshot of the player's grid
type BoardPayload struct {
	SessionID string       `json:"session_id"`
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Mines     int          `json:"mines"`
	Flags     int          `json:"flags"`
	State     string       `json:"state"`
	Losses    int          `json:"losses"`
	Cells     [][]CellView `json:"cells"`
}

// CellView is one cell as the client may see it. Mine and Count are only
// filled in for exposed cells.
type CellView struct {
	State   string `json:"state"`
	Flagged bool   `json:"flagged,omitempty"`
	Mine    bool   `json:"mine,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// LostPayload reports the mine that ended the previous grid
type LostPayload struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Losses int `json:"losses"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBoardPayload snapshots a session for the wire
func NewBoardPayload(s *game.Session) (BoardPayload, error) {
	rows, cols := s.Dimensions()
	cfg := s.Config()

	board := BoardPayload{
		SessionID: s.ID(),
		Rows:      rows,
		Cols:      cols,
		Mines:     cfg.Mines,
		Flags:     s.FlagCount(),
		State:     s.State().String(),
		Losses:    s.Losses(),
		Cells:     make([][]CellView, rows),
	}

	for r := 0; r < rows; r++ {
		board.Cells[r] = make([]CellView, cols)
		for c := 0; c < cols; c++ {
			st, err := s.CellState(r, c)
			if err != nil {
				return BoardPayload{}, err
			}

			view := CellView{State: CellHidden, Flagged: st.Flagged}
			if st.Exposed {
				view.State = CellExposed
				view.Mine = st.IsMine
				view.Count = st.NeighboringMineCount
			}
			board.Cells[r][c] = view
		}
	}
	return board, nil
}
