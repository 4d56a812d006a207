package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Cell is the content of one square of the board.
type Cell uint8

const (
	EmptyCell Cell = iota
	PlayerX
	PlayerO
)

const BoardSize = 9

var (
	ErrInvalidMark = errors.New("invalid cell mark")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Board holds the cells in row-major order.
type Board [BoardSize]Cell

// Step is one recorded position of the game.
type Step struct {
	Board Board `json:"board"`
}

// MoveLabel is an entry of the move list shown next to the board.
type MoveLabel struct {
	Step  int    `json:"step"`
	Label string `json:"label"`
}

// Snapshot - read-only view of a game handed to renderers.
type Snapshot struct {
	SessionID string      `json:"session_id,omitempty"`
	Board     Board       `json:"board"`
	Status    string      `json:"status"`
	Winner    Cell        `json:"winner"`
	Step      int         `json:"step"`
	XIsNext   bool        `json:"x_is_next"`
	Moves     []MoveLabel `json:"moves"`
}

func (that Cell) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

func (that Cell) IsEmpty() bool {
	return that == EmptyCell
}

func (that Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	var mark string
	if err := json.Unmarshal(data, &mark); err != nil {
		return fmt.Errorf("failed to unmarshal cell: %w", err)
	}

	cell, err := ParseCell(mark)
	if err != nil {
		return err
	}

	*that = cell

	return nil
}

// ParseCell - converts "", "X" or "O" into a Cell.
func ParseCell(mark string) (Cell, error) {
	switch mark {
	case "":
		return EmptyCell, nil
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	default:
		return EmptyCell, fmt.Errorf("%w: %q", ErrInvalidMark, mark)
	}
}

// MoveLabelFor - returns the move list caption of a history step.
func MoveLabelFor(step int) MoveLabel {
	if step == 0 {
		return MoveLabel{Step: 0, Label: "Go to game start"}
	}

	return MoveLabel{Step: step, Label: fmt.Sprintf("Go to move #%d", step)}
}
