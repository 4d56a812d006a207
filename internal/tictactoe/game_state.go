package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// GameState holds the recorded history of a game and the step currently shown.
// The player to move is derived from the step parity, X moves on even steps.
type GameState struct {
	history     []entity.Step
	currentStep int
}

func NewGameState() *GameState {
	return &GameState{
		history: []entity.Step{{}},
	}
}

// ApplyMove - places the mark of the player to move on the cell.
// Moves onto an occupied cell, outside the board or after the game is won are ignored.
func (that *GameState) ApplyMove(cell int) {
	if !that.CanMove(cell) {
		return
	}

	board := that.CurrentBoard()
	board[cell] = that.nextMark()

	that.history = append(that.history[:that.currentStep+1], entity.Step{Board: board})
	that.currentStep = len(that.history) - 1
}

// CanMove - reports whether ApplyMove would change the game.
func (that *GameState) CanMove(cell int) bool {
	if cell < 0 || cell >= entity.BoardSize {
		return false
	}

	board := that.CurrentBoard()
	if CalculateWinner(board) != entity.EmptyCell {
		return false
	}

	return board[cell].IsEmpty()
}

// JumpTo - moves to a recorded step without touching history.
// Targets outside of the history are clamped to its bounds.
func (that *GameState) JumpTo(step int) {
	switch {
	case step < 0:
		step = 0
	case step >= len(that.history):
		step = len(that.history) - 1
	}

	that.currentStep = step
}

func (that *GameState) CurrentBoard() entity.Board {
	return that.history[that.currentStep].Board
}

func (that *GameState) CurrentStep() int {
	return that.currentStep
}

// Len - number of recorded steps, the initial empty board included.
func (that *GameState) Len() int {
	return len(that.history)
}

func (that *GameState) TurnIsX() bool {
	return that.currentStep%2 == 0
}

func (that *GameState) Winner() entity.Cell {
	return CalculateWinner(that.CurrentBoard())
}

func (that *GameState) Status() string {
	if winner := that.Winner(); winner != entity.EmptyCell {
		return fmt.Sprintf("Winner: %s", winner)
	}

	return fmt.Sprintf("Next player: %s", that.nextMark())
}

// MoveList - one label per recorded step, in order.
func (that *GameState) MoveList() []entity.MoveLabel {
	moves := make([]entity.MoveLabel, 0, len(that.history))
	for step := range that.history {
		moves = append(moves, entity.MoveLabelFor(step))
	}

	return moves
}

func (that *GameState) Snapshot() entity.Snapshot {
	return entity.Snapshot{
		Board:   that.CurrentBoard(),
		Status:  that.Status(),
		Winner:  that.Winner(),
		Step:    that.currentStep,
		XIsNext: that.TurnIsX(),
		Moves:   that.MoveList(),
	}
}

func (that *GameState) nextMark() entity.Cell {
	if that.TurnIsX() {
		return entity.PlayerX
	}
	return entity.PlayerO
}

// CalculateWinner - returns the player owning the first complete line, or EmptyCell.
func CalculateWinner(board entity.Board) entity.Cell {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}
