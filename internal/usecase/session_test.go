package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRenderFailed = errors.New("render failed")

type recorder struct {
	snapshots []entity.Snapshot
}

func (that *recorder) Render(_ context.Context, snapshot entity.Snapshot) error {
	that.snapshots = append(that.snapshots, snapshot)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSession_Start(t *testing.T) {
	// Given: a session with one renderer
	ctx := context.Background()
	rec := &recorder{}
	session := NewSession(newTestLogger(), "session-1", rec)

	// When: the session starts
	snapshot, err := session.Start(ctx)
	require.NoError(t, err)

	// Then: the initial snapshot is rendered
	require.Len(t, rec.snapshots, 1)
	assert.Equal(t, snapshot, rec.snapshots[0])
	assert.Equal(t, "session-1", snapshot.SessionID)
	assert.Equal(t, "Next player: X", snapshot.Status)
	assert.Equal(t, []entity.MoveLabel{{Step: 0, Label: "Go to game start"}}, snapshot.Moves)
}

func TestSession_Move(t *testing.T) {
	t.Run("Winning sequence", func(t *testing.T) {
		// Given: a new session
		ctx := context.Background()
		rec := &recorder{}
		session := NewSession(newTestLogger(), "s", rec)

		// When: X completes the top row
		for _, cell := range []int{0, 4, 1, 3, 2} {
			_, err := session.Move(ctx, cell)
			require.NoError(t, err)
		}

		// Then: the last snapshot reports X as winner
		last := rec.snapshots[len(rec.snapshots)-1]
		assert.Equal(t, entity.PlayerX, last.Winner)
		assert.Equal(t, "Winner: X", last.Status)
		assert.Len(t, last.Moves, 6)

		// When: another move is attempted
		snapshot, err := session.Move(ctx, 5)
		require.NoError(t, err)

		// Then: it is still rendered but nothing changed
		assert.Equal(t, last.Board, snapshot.Board)
		assert.Len(t, rec.snapshots, 6)
	})

	t.Run("Renderer errors are reported without losing the move", func(t *testing.T) {
		ctx := context.Background()
		failing := RendererFunc(func(context.Context, entity.Snapshot) error {
			return errRenderFailed
		})
		rec := &recorder{}
		session := NewSession(newTestLogger(), "s", failing, rec)

		snapshot, err := session.Move(ctx, 4)

		require.ErrorIs(t, err, errRenderFailed)
		assert.Equal(t, entity.PlayerX, snapshot.Board[4])
		require.Len(t, rec.snapshots, 1)
		assert.Equal(t, entity.PlayerX, session.Snapshot().Board[4])
	})
}

func TestSession_Jump(t *testing.T) {
	// Given: a session with one move
	ctx := context.Background()
	session := NewSession(newTestLogger(), "s")
	_, err := session.Move(ctx, 0)
	require.NoError(t, err)

	// When: jumping to the start and moving again
	_, err = session.Jump(ctx, 0)
	require.NoError(t, err)
	snapshot, err := session.Move(ctx, 4)
	require.NoError(t, err)

	// Then: the previous branch is gone
	assert.Len(t, snapshot.Moves, 2)
	assert.Equal(t, entity.PlayerX, snapshot.Board[4])
	assert.Equal(t, entity.EmptyCell, snapshot.Board[0])
	assert.False(t, snapshot.XIsNext)
}

func TestSession_Refresh(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	session := NewSession(newTestLogger(), "s", rec)
	_, err := session.Move(ctx, 2)
	require.NoError(t, err)

	snapshot, err := session.Refresh(ctx)
	require.NoError(t, err)

	require.Len(t, rec.snapshots, 2)
	assert.Equal(t, rec.snapshots[0], snapshot)
}
