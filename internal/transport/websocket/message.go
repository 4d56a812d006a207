package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

const (
	actionConnect  = "connect"
	actionState    = "game:state"
	actionMove     = "game:move"
	actionJump     = "game:jump"
	actionSnapshot = "game:snapshot"
	actionError    = "error"
)

type handlerFunc func(ctx context.Context, message *Message, session *usecase.Session) error

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	Cell *int `json:"cell"`
}

type JumpPayload struct {
	Step *int `json:"step"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// client is the per-connection renderer. Only the connection's read loop writes to it.
type client struct {
	conn *websocket.Conn
}

func (that *client) Render(_ context.Context, snapshot entity.Snapshot) error {
	return that.send(actionSnapshot, snapshot)
}

func (that *client) sendError(err error) error {
	return that.send(actionError, ErrorPayload{Error: err.Error()})
}

func (that *client) send(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) handleConnect(ctx context.Context, _ *Message, session *usecase.Session) error {
	if _, err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	return nil
}

func (that *Server) handleState(ctx context.Context, _ *Message, session *usecase.Session) error {
	if _, err := session.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to send state: %w", err)
	}

	return nil
}

func (that *Server) handleMove(ctx context.Context, message *Message, session *usecase.Session) error {
	var payload MovePayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	if payload.Cell == nil {
		return fmt.Errorf("%w: cell is required", apperror.ErrInvalidPayload)
	}

	if _, err := session.Move(ctx, *payload.Cell); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

func (that *Server) handleJump(ctx context.Context, message *Message, session *usecase.Session) error {
	var payload JumpPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	if payload.Step == nil {
		return fmt.Errorf("%w: step is required", apperror.ErrInvalidPayload)
	}

	if _, err := session.Jump(ctx, *payload.Step); err != nil {
		return fmt.Errorf("failed to jump: %w", err)
	}

	return nil
}
