package service

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

// Sent to the seated connection only.
const EventPlayerRole = "playerRole"

// Events broadcast to every member of a room.
const (
	EventUpdatePlayers = "updatePlayers"
	EventLocksUpdated  = "locksUpdated"
	EventStateUpdated  = "stateUpdated"
	EventGameRestarted = "gameRestarted"
)

// Broadcaster delivers an event to every connection in a room. Implementations
// must not call back into the room service.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
}

type PlayersPayload struct {
	Players []*entity.Player `json:"players"`
}

type LocksPayload struct {
	Locks map[int]int `json:"locks"`
}

type StatePayload struct {
	Players     []*entity.Player `json:"players"`
	CurrentTurn entity.Mark      `json:"currentTurn"`
	Board       entity.Board     `json:"board"`
	WinningLine []int            `json:"winningLine"`
	Winner      *string          `json:"winner"`
}

type RestartedPayload struct {
	CurrentTurn entity.Mark      `json:"currentTurn"`
	Board       entity.Board     `json:"board"`
	Players     []*entity.Player `json:"players"`
}

func newStatePayload(room *entity.Room) StatePayload {
	return StatePayload{
		Players:     room.ClonePlayers(),
		CurrentTurn: room.CurrentTurn,
		Board:       room.Board,
	}
}

func (that StatePayload) withWinner(winner string, line []int) StatePayload {
	that.Winner = &winner
	that.WinningLine = line

	return that
}
