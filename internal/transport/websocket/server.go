package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

const (
	readLimit    = 4096
	writeTimeout = 10 * time.Second
)

// RendererFactory builds extra renderers for a new session, e.g. the Redis snapshot feed.
type RendererFactory func(sessionID string) []usecase.Renderer

type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	extraRenderers RendererFactory
	handlers       map[string]handlerFunc
}

func New(logger *slog.Logger, extraRenderers RendererFactory) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		extraRenderers: extraRenderers,
		handlers:       make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionState] = server.handleState
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionJump] = server.handleJump

	return server
}

// Handler - routes for the game socket and the health check.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", PingHandler)
	mux.HandleFunc("/ws", that.serveWebSocket)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWebSocket upgrades the connection and gives it its own session.
func (that *Server) serveWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	conn.SetReadLimit(readLimit)

	// the server read timeout must not end idle games
	if err = conn.SetReadDeadline(time.Time{}); err != nil {
		log.Error("failed to clear read deadline", "error", err)
		return
	}

	sessionID := uuid.NewString()
	peer := &client{conn: conn}

	renderers := []usecase.Renderer{peer}
	if that.extraRenderers != nil {
		renderers = append(renderers, that.extraRenderers(sessionID)...)
	}

	session := usecase.NewSession(that.logger, sessionID, renderers...)

	log.Info("WebSocket connection established", "sessionID", sessionID)

	if err = that.handleMessages(req.Context(), peer, session); err != nil {
		log.Error("error handling messages", "sessionID", sessionID, "error", err)
	}
}

// handleMessages - processes messages from the client one at a time.
func (that *Server) handleMessages(ctx context.Context, peer *client, session *usecase.Session) error {
	log := that.logger.With("method", "handleMessages", "sessionID", session.ID())

	for {
		_, reqBody, err := peer.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("connection closed")
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			err = fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
		} else {
			err = that.processMessage(ctx, &message, session)
		}

		if err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)

			if sendErr := peer.sendError(err); sendErr != nil {
				return sendErr
			}
		}
	}
}

func (that *Server) processMessage(ctx context.Context, message *Message, session *usecase.Session) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownAction, message.Action)
	}

	return handler(ctx, message, session)
}
