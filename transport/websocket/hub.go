package websocket

import (
	"log/slog"
	"sync"
)

// Hub tracks connections and the rooms they listen to. It implements the
// room service's notifier: messages are encoded on the caller's goroutine
// and queued on each connection's write pump.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "websocket_hub"),
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.id] = c
}

// unregister drops the client from every room and closes its send queue.
func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c.id]; !ok {
		return
	}

	delete(that.clients, c.id)
	for name, members := range that.rooms {
		delete(members, c.id)
		if len(members) == 0 {
			delete(that.rooms, name)
		}
	}

	close(c.send)
}

// Subscribe adds a registered connection to the room's broadcasts.
func (that *Hub) Subscribe(room, connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	c, ok := that.clients[connectionID]
	if !ok {
		return
	}

	members, ok := that.rooms[room]
	if !ok {
		members = make(map[string]*client)
		that.rooms[room] = members
	}

	members[c.id] = c
}

func (that *Hub) leave(room string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[room]
	if !ok {
		return
	}

	delete(members, c.id)
	if len(members) == 0 {
		delete(that.rooms, room)
	}
}

func (that *Hub) Broadcast(room, event string, payload any) {
	log := that.logger.With("method", "Broadcast", "room", room, "event", event)

	data, err := encodeMessage(event, payload)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, c := range that.rooms[room] {
		c.enqueue(data)
	}
}

func (that *Hub) Send(connectionID, event string, payload any) {
	log := that.logger.With("method", "Send", "connection", connectionID, "event", event)

	data, err := encodeMessage(event, payload)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if c, ok := that.clients[connectionID]; ok {
		c.enqueue(data)
	}
}
