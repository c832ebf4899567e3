package entity

import "time"

type Phase string

const (
	PhaseWaitingForPlayers Phase = "WaitingForPlayers"
	PhaseInProgress        Phase = "InProgress"
	PhaseRoundResolving    Phase = "RoundResolving"
	PhaseTerminated        Phase = "Terminated"
)

const MaxPlayers = 2

type Side string

const (
	SideHuman    Side = "human"
	SideComputer Side = "computer"
)

type MoveRecord struct {
	Number int  `json:"number"`
	Side   Side `json:"side"`
	Seat   Mark `json:"seat"`
	Cell   int  `json:"cell"`
}

type AdvisoryRole string

const (
	AdvisoryRoleSystem    AdvisoryRole = "system"
	AdvisoryRoleUser      AdvisoryRole = "user"
	AdvisoryRoleAssistant AdvisoryRole = "assistant"
)

type AdvisoryMessage struct {
	Role    AdvisoryRole `json:"role"`
	Content string       `json:"content"`
}

// Room is the full state of one game room. It is not safe for concurrent
// use; the registry serializes access to it.
type Room struct {
	Name        string
	Mode        Mode
	Players     []*Player
	Board       Board
	CurrentTurn Mark
	Locks       map[int]int
	Phase       Phase
	History     []MoveRecord
	AdvisoryLog []AdvisoryMessage

	// Seq changes whenever the board is rewritten; deferred work compares it
	// to detect stale state.
	Seq uint64
}

func NewRoom(name string, mode Mode) *Room {
	return &Room{
		Name:        name,
		Mode:        mode,
		CurrentTurn: MarkX,
		Locks:       make(map[int]int),
		Phase:       PhaseWaitingForPlayers,
	}
}

func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Room) PlayerBySeat(seat Mark) *Player {
	for _, player := range that.Players {
		if player.Seat == seat {
			return player
		}
	}

	return nil
}

func (that *Room) Computer() *Player {
	return that.PlayerByID(ComputerID)
}

// RemovePlayer drops the player with the id and reports whether one was found.
func (that *Room) RemovePlayer(id string) bool {
	for i, player := range that.Players {
		if player.ID == id {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}

	return false
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) ClonePlayers() []*Player {
	players := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player.Clone())
	}

	return players
}

func (that *Room) CloneLocks() map[int]int {
	locks := make(map[int]int, len(that.Locks))
	for cell, turns := range that.Locks {
		locks[cell] = turns
	}

	return locks
}

// RoomSnapshot is the read-only lobby view of a room.
type RoomSnapshot struct {
	Name        string    `json:"name"`
	Mode        Mode      `json:"mode"`
	Phase       Phase     `json:"phase"`
	Players     []*Player `json:"players"`
	Board       Board     `json:"board"`
	CurrentTurn Mark      `json:"currentTurn"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (that *Room) Snapshot(now time.Time) *RoomSnapshot {
	return &RoomSnapshot{
		Name:        that.Name,
		Mode:        that.Mode,
		Phase:       that.Phase,
		Players:     that.ClonePlayers(),
		Board:       that.Board,
		CurrentTurn: that.CurrentTurn,
		UpdatedAt:   now,
	}
}
