package websocket

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// client is one websocket connection. Only the read loop touches joined.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// joined is the room accepted by the last joinRoom.
	joined string
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	id := uuid.NewString()

	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logger.With("connection", id),
	}
}

// enqueue must be called with the hub lock held, so that send is never closed underneath it.
func (that *client) enqueue(data []byte) {
	select {
	case that.send <- data:
	default:
		that.logger.Warn("send queue full, dropping message")
	}
}

// writePump forwards queued messages to the connection and keeps it alive with pings.
func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Info("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
