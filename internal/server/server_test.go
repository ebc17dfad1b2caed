package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/config"
	"github.com/gravitas-games/minesweeper/internal/minefield"
	"github.com/gravitas-games/minesweeper/internal/network"
)

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T, cfg *config.Config, mines ...minefield.Coord) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	srv.newPlacer = func(config.GameConfig) minefield.Placer {
		return minefield.FixedPlacer{Mines: mines}
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wireMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func readBoard(t *testing.T, ws *websocket.Conn) network.BoardPayload {
	t.Helper()
	msg := readMessage(t, ws)
	require.Equal(t, network.MsgTypeBoard, msg.Type)
	var board network.BoardPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &board))
	return board
}

func send(t *testing.T, ws *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(t, ws.WriteJSON(msg))
}

func smallConfig(rows, cols, mines int) *config.Config {
	cfg := config.Default()
	cfg.Game.Rows, cfg.Game.Cols, cfg.Game.Mines = rows, cols, mines
	return cfg
}

func TestWebSocketGameFlow(t *testing.T) {
	_, ts := newTestServer(t, smallConfig(3, 3, 0))
	ws := dial(t, ts, nil)

	welcome := readMessage(t, ws)
	require.Equal(t, network.MsgTypeWelcome, welcome.Type)
	var wp network.WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	assert.True(t, strings.HasPrefix(wp.Username, "guest-"))
	assert.NotEmpty(t, wp.SessionID)

	board := readBoard(t, ws)
	assert.Equal(t, wp.SessionID, board.SessionID)
	assert.Equal(t, 3, board.Rows)

	send(t, ws, network.MsgTypeFlag, network.CellPayload{Row: 0, Col: 0})
	board = readBoard(t, ws)
	assert.True(t, board.Cells[0][0].Flagged)

	send(t, ws, network.MsgTypeExpose, network.CellPayload{Row: 1, Col: 1})
	board = readBoard(t, ws)
	for r, row := range board.Cells {
		for c, cell := range row {
			assert.Equal(t, network.CellExposed, cell.State, "(%d,%d)", r, c)
		}
	}

	send(t, ws, network.MsgTypeExpose, network.CellPayload{Row: 9, Col: 9})
	msg := readMessage(t, ws)
	require.Equal(t, network.MsgTypeError, msg.Type)
	var ep network.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &ep))
	assert.Equal(t, network.ErrCodeOutOfRange, ep.Code)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg = readMessage(t, ws)
	require.Equal(t, network.MsgTypeError, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Payload, &ep))
	assert.Equal(t, network.ErrCodeInvalidMessage, ep.Code)

	send(t, ws, network.MsgTypePing, nil)
	assert.Equal(t, network.MsgTypePong, readMessage(t, ws).Type)
}

func TestWebSocketLossResets(t *testing.T) {
	_, ts := newTestServer(t, smallConfig(2, 2, 1), minefield.Coord{Row: 0, Col: 0})
	ws := dial(t, ts, nil)
	readMessage(t, ws) // welcome
	readBoard(t, ws)

	send(t, ws, network.MsgTypeExpose, network.CellPayload{Row: 0, Col: 0})
	lost := readMessage(t, ws)
	require.Equal(t, network.MsgTypeLost, lost.Type)
	var lp network.LostPayload
	require.NoError(t, json.Unmarshal(lost.Payload, &lp))
	assert.Equal(t, network.LostPayload{Row: 0, Col: 0, Losses: 1}, lp)

	board := readBoard(t, ws)
	assert.Equal(t, 1, board.Losses)
	for _, row := range board.Cells {
		for _, cell := range row {
			assert.Equal(t, network.CellHidden, cell.State)
		}
	}
}

func TestSessionsAreIsolatedPerConnection(t *testing.T) {
	_, ts := newTestServer(t, smallConfig(3, 3, 0))

	a := dial(t, ts, nil)
	readMessage(t, a)
	boardA := readBoard(t, a)

	b := dial(t, ts, nil)
	readMessage(t, b)
	boardB := readBoard(t, b)
	assert.NotEqual(t, boardA.SessionID, boardB.SessionID)

	send(t, a, network.MsgTypeExpose, network.CellPayload{Row: 0, Col: 0})
	readBoard(t, a)

	send(t, b, network.MsgTypeFlag, network.CellPayload{Row: 2, Col: 2})
	boardB = readBoard(t, b)
	assert.Equal(t, network.CellHidden, boardB.Cells[0][0].State)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, smallConfig(2, 2, 0))

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","connections":0}`, string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "minesweeper_cells_exposed_total")
	assert.Contains(t, string(body), "minesweeper_active_sessions")
}

func TestHealthCountsConnections(t *testing.T) {
	srv, ts := newTestServer(t, smallConfig(2, 2, 0))
	ws := dial(t, ts, nil)

	// the connection is registered before the welcome is sent
	require.Equal(t, network.MsgTypeWelcome, readMessage(t, ws).Type)
	readBoard(t, ws)
	assert.Equal(t, 1, srv.ConnectionCount())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","connections":1}`, string(body))
}
