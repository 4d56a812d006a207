package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, extra RendererFactory) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(logger, extra).Handler())
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action, payload string) {
	t.Helper()

	message := Message{Action: action}
	if payload != "" {
		message.Payload = json.RawMessage(payload)
	}

	require.NoError(t, conn.WriteJSON(message))
}

func receive(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	return message
}

func receiveSnapshot(t *testing.T, conn *websocket.Conn) entity.Snapshot {
	t.Helper()

	message := receive(t, conn)
	require.Equal(t, actionSnapshot, message.Action, string(message.Payload))

	var snapshot entity.Snapshot
	require.NoError(t, json.Unmarshal(message.Payload, &snapshot))

	return snapshot
}

func TestServer_Game(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, srv)

	// Given: a connected client
	send(t, conn, actionConnect, "")
	snapshot := receiveSnapshot(t, conn)
	require.NotEmpty(t, snapshot.SessionID)
	assert.Equal(t, "Next player: X", snapshot.Status)

	// When: X completes the top row
	for _, cell := range []string{"0", "4", "1", "3", "2"} {
		send(t, conn, actionMove, `{"cell":`+cell+`}`)
		snapshot = receiveSnapshot(t, conn)
	}

	// Then: X is reported as the winner
	assert.Equal(t, entity.PlayerX, snapshot.Winner)
	assert.Equal(t, "Winner: X", snapshot.Status)
	assert.Len(t, snapshot.Moves, 6)

	// When: jumping back to move #2
	send(t, conn, actionJump, `{"step":2}`)
	snapshot = receiveSnapshot(t, conn)

	// Then: the game is open again and history is kept
	assert.Equal(t, entity.EmptyCell, snapshot.Winner)
	assert.Equal(t, 2, snapshot.Step)
	assert.True(t, snapshot.XIsNext)
	assert.Len(t, snapshot.Moves, 6)

	// When: asking for the state
	send(t, conn, actionState, "")
	state := receiveSnapshot(t, conn)

	// Then: the same snapshot is sent again
	assert.Equal(t, snapshot, state)
}

func TestServer_SessionsAreIndependent(t *testing.T) {
	srv := newTestServer(t, nil)
	first := dial(t, srv)
	second := dial(t, srv)

	send(t, first, actionMove, `{"cell":4}`)
	firstSnapshot := receiveSnapshot(t, first)

	send(t, second, actionState, "")
	secondSnapshot := receiveSnapshot(t, second)

	assert.NotEqual(t, firstSnapshot.SessionID, secondSnapshot.SessionID)
	assert.Equal(t, entity.PlayerX, firstSnapshot.Board[4])
	assert.Equal(t, entity.Board{}, secondSnapshot.Board)
}

func TestServer_Errors(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, srv)

	tests := []struct {
		name    string
		action  string
		payload string
		errText string
	}{
		{name: "Unknown action", action: "game:undo", errText: "unknown action"},
		{name: "Move without payload", action: actionMove, errText: "invalid payload"},
		{name: "Move without cell", action: actionMove, payload: `{}`, errText: "cell is required"},
		{name: "Jump with bad step", action: actionJump, payload: `{"step":"one"}`, errText: "invalid payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.action, tt.payload)

			message := receive(t, conn)
			require.Equal(t, actionError, message.Action)

			var payload ErrorPayload
			require.NoError(t, json.Unmarshal(message.Payload, &payload))
			assert.Contains(t, payload.Error, tt.errText)
		})
	}

	t.Run("Malformed message keeps the connection open", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

		message := receive(t, conn)
		require.Equal(t, actionError, message.Action)

		send(t, conn, actionMove, `{"cell":0}`)
		snapshot := receiveSnapshot(t, conn)
		assert.Equal(t, entity.PlayerX, snapshot.Board[0])
	})
}

func TestServer_ExtraRenderers(t *testing.T) {
	received := make(chan entity.Snapshot, 1)
	extra := func(sessionID string) []usecase.Renderer {
		return []usecase.Renderer{
			usecase.RendererFunc(func(_ context.Context, snapshot entity.Snapshot) error {
				assert.Equal(t, sessionID, snapshot.SessionID)
				received <- snapshot
				return nil
			}),
		}
	}

	srv := newTestServer(t, extra)
	conn := dial(t, srv)

	send(t, conn, actionMove, `{"cell":8}`)
	snapshot := receiveSnapshot(t, conn)

	select {
	case mirrored := <-received:
		assert.Equal(t, snapshot, mirrored)
	case <-time.After(5 * time.Second):
		t.Fatal("extra renderer was not called")
	}
}

func TestPingHandler(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}
