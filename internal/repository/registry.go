package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// RoomRegistry owns the active rooms keyed by name. Operations on one room
// run one at a time; different rooms never wait for each other.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*roomEntry
}

type roomEntry struct {
	mu      sync.Mutex
	room    *entity.Room
	removed bool
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*roomEntry),
	}
}

// Upsert runs fn on the room with the name, creating it in mode when absent.
// created tells fn whether this call made the room.
func (that *RoomRegistry) Upsert(name string, mode entity.Mode, fn func(room *entity.Room, created bool) error) error {
	for {
		that.mu.Lock()
		entry, ok := that.rooms[name]
		if !ok {
			entry = &roomEntry{room: entity.NewRoom(name, mode)}
			that.rooms[name] = entry
		}
		that.mu.Unlock()

		entry.mu.Lock()
		if entry.removed {
			// destroyed while we waited; look it up again
			entry.mu.Unlock()
			continue
		}

		err := fn(entry.room, !ok)
		entry.mu.Unlock()

		return err
	}
}

// Update runs fn on an existing room, or returns apperror.ErrRoomNotFound.
func (that *RoomRegistry) Update(name string, fn func(room *entity.Room) error) error {
	that.mu.Lock()
	entry, ok := that.rooms[name]
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.removed {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, name)
	}

	return fn(entry.room)
}

// Remove destroys the room. It is meant to be called from inside Update or
// Upsert, while the room is held.
func (that *RoomRegistry) Remove(name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if entry, ok := that.rooms[name]; ok {
		entry.removed = true
		delete(that.rooms, name)
	}
}

func (that *RoomRegistry) Names() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	names := make([]string, 0, len(that.rooms))
	for name := range that.rooms {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
