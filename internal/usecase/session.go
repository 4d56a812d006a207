package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// Renderer receives every snapshot produced by a session.
type Renderer interface {
	Render(ctx context.Context, snapshot entity.Snapshot) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, snapshot entity.Snapshot) error

func (that RendererFunc) Render(ctx context.Context, snapshot entity.Snapshot) error {
	return that(ctx, snapshot)
}

// Session owns one game. It is driven by a single input loop and is not safe for concurrent use.
type Session struct {
	logger *slog.Logger

	id        string
	game      *tictactoe.GameState
	renderers []Renderer
}

func NewSession(logger *slog.Logger, id string, renderers ...Renderer) *Session {
	return &Session{
		logger: logger.With("component", "session", "sessionID", id),

		id:        id,
		game:      tictactoe.NewGameState(),
		renderers: renderers,
	}
}

func (that *Session) ID() string {
	return that.id
}

// Start - publishes the initial snapshot.
func (that *Session) Start(ctx context.Context) (entity.Snapshot, error) {
	that.logger.Info("session started")

	return that.publish(ctx)
}

// Refresh - publishes the current snapshot again.
func (that *Session) Refresh(ctx context.Context) (entity.Snapshot, error) {
	return that.publish(ctx)
}

// Move - applies a move on behalf of the player to move and publishes the result.
func (that *Session) Move(ctx context.Context, cell int) (entity.Snapshot, error) {
	log := that.logger.With("method", "Move", "cell", cell)

	if !that.game.CanMove(cell) {
		log.Debug("move ignored", "step", that.game.CurrentStep())

		return that.publish(ctx)
	}

	that.game.ApplyMove(cell)

	if winner := that.game.Winner(); winner != entity.EmptyCell {
		log.Info("game won", "winner", winner.String(), "step", that.game.CurrentStep())
	}

	return that.publish(ctx)
}

// Jump - shows a recorded step and publishes the result.
func (that *Session) Jump(ctx context.Context, step int) (entity.Snapshot, error) {
	that.game.JumpTo(step)

	that.logger.Debug("jumped", "method", "Jump", "requested", step, "step", that.game.CurrentStep())

	return that.publish(ctx)
}

func (that *Session) Snapshot() entity.Snapshot {
	snapshot := that.game.Snapshot()
	snapshot.SessionID = that.id

	return snapshot
}

func (that *Session) publish(ctx context.Context) (entity.Snapshot, error) {
	snapshot := that.Snapshot()

	var errs []error
	for _, renderer := range that.renderers {
		if err := renderer.Render(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return snapshot, fmt.Errorf("failed to render snapshot: %w", err)
	}

	return snapshot, nil
}
