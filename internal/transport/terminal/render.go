package terminal

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

var (
	xStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	oStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("76"))
	statusStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("243")).Padding(0, 1)
)

// Renderer draws snapshots as text.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (that *Renderer) Render(_ context.Context, snapshot entity.Snapshot) error {
	if _, err := io.WriteString(that.out, Draw(snapshot)+"\n"); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Draw - board, status and move list side by side.
func Draw(snapshot entity.Snapshot) string {
	status := statusStyle.Render(snapshot.Status)
	if snapshot.Winner != entity.EmptyCell {
		status = winStyle.Render(snapshot.Status)
	}

	info := lipgloss.JoinVertical(lipgloss.Left, status, "", drawMoves(snapshot))

	return lipgloss.JoinHorizontal(lipgloss.Top, boardStyle.Render(drawBoard(snapshot.Board)), "  ", info)
}

func drawBoard(board entity.Board) string {
	rows := make([]string, 0, 3)
	for row := 0; row < 3; row++ {
		cells := make([]string, 0, 3)
		for col := 0; col < 3; col++ {
			index := row*3 + col
			cells = append(cells, drawCell(index, board[index]))
		}
		rows = append(rows, strings.Join(cells, mutedStyle.Render("│")))
	}

	return strings.Join(rows, "\n"+mutedStyle.Render("───┼───┼───")+"\n")
}

// drawCell shows the cell index on empty cells so players know what to type.
func drawCell(index int, cell entity.Cell) string {
	switch cell {
	case entity.PlayerX:
		return xStyle.Render(" X ")
	case entity.PlayerO:
		return oStyle.Render(" O ")
	default:
		return emptyStyle.Render(" " + strconv.Itoa(index) + " ")
	}
}

func drawMoves(snapshot entity.Snapshot) string {
	lines := make([]string, 0, len(snapshot.Moves))
	for _, move := range snapshot.Moves {
		line := fmt.Sprintf("%d. %s", move.Step, move.Label)
		if move.Step == snapshot.Step {
			line = statusStyle.Render("> " + line)
		} else {
			line = mutedStyle.Render("  " + line)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
