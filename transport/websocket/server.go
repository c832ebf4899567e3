package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
)

type Server struct {
	logger   *slog.Logger
	rooms    service.RoomService
	hub      *Hub
	validate *validator.Validate
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, c *client, msg *Message) error
}

func New(logger *slog.Logger, rooms service.RoomService, hub *Hub) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket_server"),
		rooms:    rooms,
		hub:      hub,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionReadyForRole] = server.handleReadyForRole
	server.handlers[actionLock] = server.handleLock
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionRestartGame] = server.handleRestartGame
	server.handlers[actionLeave] = server.handleLeave

	return server
}

// Handler - the HTTP handler serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.logger, conn)
	that.hub.register(c)

	log.Info("WebSocket connection established", "connection", c.id)

	go c.writePump()

	that.handleMessages(ctx, c)
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages", "connection", c.id)

	defer func() {
		that.disconnect(ctx, c)
		that.hub.unregister(c)
		log.Info("WebSocket connection closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendErrorResponse(c, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendErrorResponse(c, fmt.Sprintf("unknown action %q", message.Action))
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			that.logHandlerError(log.With("action", message.Action), err)
		}
	}
}

// disconnect leaves the room the connection joined, seated or not.
func (that *Server) disconnect(ctx context.Context, c *client) {
	if c.joined == "" {
		return
	}

	if err := that.rooms.Leave(ctx, c.joined, c.id); err != nil {
		that.logHandlerError(that.logger.With("method", "disconnect", "connection", c.id), err)
	}

	that.hub.leave(c.joined, c)
	c.joined = ""
}

func (that *Server) sendErrorResponse(c *client, message string) {
	that.hub.Send(c.id, eventError, ErrorPayload{Message: message})
}
