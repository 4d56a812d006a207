package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/transport/terminal"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrUnknownMode  = errors.New("unknown mode")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	extraRenderers, closeRenderers, err := snapshotFeed(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeRenderers(); closeErr != nil {
			log.Error("could not close snapshot feed", "error", closeErr)
		}
	}()

	switch conf.Mode {
	case config.ModeTerminal:
		sessionID := uuid.NewString()
		renderers := append([]usecase.Renderer{terminal.NewRenderer(os.Stdout)}, extraRenderers(sessionID)...)
		session := usecase.NewSession(logger, sessionID, renderers...)

		if err = terminal.NewConsole(logger, os.Stdin, os.Stdout).Run(ctx, session); err != nil {
			return fmt.Errorf("terminal error: %w", err)
		}

		return nil
	case config.ModeWebSocket:
		log.Info("Starting WebSocket server", "port", conf.SocketPort)

		if err = websocket.New(logger, extraRenderers).Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}

		log.Info("Application context canceled, shutting down")
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, conf.Mode)
	}
}

// snapshotFeed connects the Redis publisher when it is enabled.
func snapshotFeed(ctx context.Context, conf *config.Config) (websocket.RendererFactory, func() error, error) {
	if !conf.Redis.Enabled {
		return func(string) []usecase.Renderer { return nil }, func() error { return nil }, nil
	}

	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	publisher, err := redis.New(ctx, conf.Redis.GetRedisAddr(), conf.Redis.ChannelPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	factory := func(string) []usecase.Renderer {
		return []usecase.Renderer{publisher}
	}

	return factory, publisher.Close, nil
}
