package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const help = "type 0-8 to place a mark, 'j N' to jump to step N, 'q' to quit"

type gameSession interface {
	Start(ctx context.Context) (entity.Snapshot, error)
	Move(ctx context.Context, cell int) (entity.Snapshot, error)
	Jump(ctx context.Context, step int) (entity.Snapshot, error)
}

type commandKind int

const (
	commandMove commandKind = iota
	commandJump
	commandQuit
)

type command struct {
	kind commandKind
	arg  int
}

// Console reads commands line by line and feeds them to a session.
type Console struct {
	logger *slog.Logger

	in  io.Reader
	out io.Writer
}

func NewConsole(logger *slog.Logger, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger: logger.With("component", "console"),
		in:     in,
		out:    out,
	}
}

// Run - handles input until EOF, quit or context cancellation.
func (that *Console) Run(ctx context.Context, session gameSession) error {
	log := that.logger.With("method", "Run")

	if _, err := session.Start(ctx); err != nil {
		log.Error("failed to render snapshot", "error", err)
	}

	that.println(help)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go that.readLines(ctx, lines, readErr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			cmd, err := parseCommand(line)
			if err != nil {
				log.Debug("bad input", "line", line, "error", err)
				that.println(help)
				continue
			}

			if cmd.kind == commandQuit {
				return nil
			}

			if err = that.execute(ctx, session, cmd); err != nil {
				log.Error("failed to render snapshot", "error", err)
			}
		}
	}
}

func (that *Console) execute(ctx context.Context, session gameSession, cmd command) error {
	var err error

	switch cmd.kind {
	case commandMove:
		_, err = session.Move(ctx, cmd.arg)
	case commandJump:
		_, err = session.Jump(ctx, cmd.arg)
	}

	if err != nil {
		return fmt.Errorf("failed to execute command: %w", err)
	}

	return nil
}

// readLines reports EOF as a nil error.
func (that *Console) readLines(ctx context.Context, lines chan<- string, readErr chan<- error) {
	scanner := bufio.NewScanner(that.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		readErr <- fmt.Errorf("failed to read input: %w", err)
		return
	}

	readErr <- nil
}

func (that *Console) println(text string) {
	if _, err := fmt.Fprintln(that.out, mutedStyle.Render(text)); err != nil {
		that.logger.Error("failed to write", "error", err)
	}
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, fmt.Errorf("%w: empty line", apperror.ErrUnknownCommand)
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return command{kind: commandQuit}, nil
	case "j", "jump":
		if len(fields) != 2 {
			return command{}, fmt.Errorf("%w: jump needs a step", apperror.ErrUnknownCommand)
		}

		step, err := strconv.Atoi(fields[1])
		if err != nil {
			return command{}, fmt.Errorf("%w: bad step %q", apperror.ErrUnknownCommand, fields[1])
		}

		return command{kind: commandJump, arg: step}, nil
	}

	if len(fields) != 1 {
		return command{}, fmt.Errorf("%w: %q", apperror.ErrUnknownCommand, line)
	}

	cell, err := strconv.Atoi(fields[0])
	if err != nil {
		return command{}, fmt.Errorf("%w: %q", apperror.ErrUnknownCommand, line)
	}

	return command{kind: commandMove, arg: cell}, nil
}
