package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type LockAction string

const (
	LockActionLock   LockAction = "lock"
	LockActionUnlock LockAction = "unlock"
)

type MoveCommand struct {
	Room         string
	ConnectionID string
	Cell         int
	Marker       entity.Cell
	// Seat is the seat the client claims to play; empty skips the check.
	Seat entity.Mark
}

type RestartOptions struct {
	PreserveScores bool
	RerollSkills   bool
}

type PlayerRolePayload struct {
	Seat   entity.Mark   `json:"seat"`
	Skills entity.Skills `json:"skills,omitempty"`
}

type Options struct {
	LockTurns    int
	ClearDelay   time.Duration
	WinningScore int
}

type RoomService interface {
	Join(ctx context.Context, roomName string, mode entity.Mode) error
	AssignSeat(ctx context.Context, roomName, connectionID, displayName string) error
	SetLock(ctx context.Context, roomName string, cell int, action LockAction) error
	Move(ctx context.Context, cmd MoveCommand) error
	Restart(ctx context.Context, roomName string, opts RestartOptions) error
	Leave(ctx context.Context, roomName, connectionID string) error
}

// Notifier delivers events to a whole room or to one connection.
type Notifier interface {
	Broadcaster
	Send(connectionID, event string, payload any)
	// Subscribe adds the connection to the room's broadcasts.
	Subscribe(room, connectionID string)
}

type roomRegistry interface {
	Upsert(name string, mode entity.Mode, fn func(room *entity.Room, created bool) error) error
	Update(name string, fn func(room *entity.Room) error) error
	Remove(name string)
}

type roomDirectory interface {
	Save(ctx context.Context, snapshot *entity.RoomSnapshot) error
	DeleteByName(ctx context.Context, name string) error
}

type roomService struct {
	logger *slog.Logger

	registry  roomRegistry
	directory roomDirectory
	notifier  Notifier
	mover     ComputerMover
	dice      Dice
	scheduler Scheduler
	options   Options

	now func() time.Time
}

func NewRoomService(
	logger *slog.Logger,
	registry roomRegistry,
	directory roomDirectory,
	notifier Notifier,
	mover ComputerMover,
	dice Dice,
	scheduler Scheduler,
	options Options,
) RoomService {
	return &roomService{
		logger:    logger.With("component", "room_service"),
		registry:  registry,
		directory: directory,
		notifier:  notifier,
		mover:     mover,
		dice:      dice,
		scheduler: scheduler,
		options:   options,
		now:       time.Now,
	}
}

func (that *roomService) Join(ctx context.Context, roomName string, mode entity.Mode) error {
	log := that.logger.With("method", "Join", "room", roomName)

	return that.registry.Upsert(roomName, mode, func(room *entity.Room, created bool) error {
		if room.Mode != mode {
			return fmt.Errorf("%w: choose %s to join", apperror.ErrModeMismatch, room.Mode)
		}

		if room.IsFull() {
			return apperror.ErrRoomFull
		}

		if created {
			log.Info("room created", "mode", mode)
			that.publish(ctx, room)
		}

		return nil
	})
}

func (that *roomService) AssignSeat(ctx context.Context, roomName, connectionID, displayName string) error {
	log := that.logger.With("method", "AssignSeat", "room", roomName)

	return that.registry.Update(roomName, func(room *entity.Room) error {
		if room.PlayerByID(connectionID) != nil {
			log.Info("seat request ignored", "connection", connectionID, "error", apperror.ErrDuplicateSeat)
			return nil
		}

		if room.IsFull() {
			return apperror.ErrRoomFull
		}

		player := &entity.Player{
			ID:   connectionID,
			Name: displayName,
			Seat: that.nextSeat(room),
		}

		if room.Mode == entity.ModeHalfStrength {
			player.Skills = RollSkills(that.dice)
		}

		room.Players = append(room.Players, player)
		log.Info("player seated", "name", displayName, "seat", player.Seat, "skills", player.Skills)

		that.notifier.Subscribe(room.Name, connectionID)
		that.notifier.Send(connectionID, EventPlayerRole, PlayerRolePayload{
			Seat:   player.Seat,
			Skills: player.Clone().Skills,
		})

		if room.Mode == entity.ModeComputerOpponent && room.Computer() == nil {
			room.Players = append(room.Players, entity.NewComputerPlayer(player.Seat.Opponent()))
			log.Info("computer seated", "seat", player.Seat.Opponent())
		}

		if room.IsFull() {
			room.Phase = entity.PhaseInProgress
		}

		that.notifier.Broadcast(room.Name, EventUpdatePlayers, PlayersPayload{Players: room.ClonePlayers()})
		that.publish(ctx, room)

		return nil
	})
}

// nextSeat - the computer always plays against X; otherwise the first seat is
// random and the second takes the complement.
func (that *roomService) nextSeat(room *entity.Room) entity.Mark {
	if room.Mode == entity.ModeComputerOpponent {
		return entity.MarkX
	}

	if len(room.Players) > 0 {
		return room.Players[0].Seat.Opponent()
	}

	return that.randomMark()
}

func (that *roomService) randomMark() entity.Mark {
	if that.dice.IntN(2) == 0 {
		return entity.MarkX
	}

	return entity.MarkO
}

func (that *roomService) SetLock(_ context.Context, roomName string, cell int, action LockAction) error {
	return that.registry.Update(roomName, func(room *entity.Room) error {
		if room.Mode != entity.ModeHalfStrength {
			return nil
		}

		if !entity.ValidIndex(cell) {
			return apperror.ErrInvalidCell
		}

		switch action {
		case LockActionLock:
			room.Locks[cell] = that.options.LockTurns
		case LockActionUnlock:
			delete(room.Locks, cell)
		default:
			return fmt.Errorf("%w: unknown lock action %q", apperror.ErrInvalidMove, action)
		}

		that.notifier.Broadcast(room.Name, EventLocksUpdated, LocksPayload{Locks: room.CloneLocks()})

		return nil
	})
}

func (that *roomService) Move(ctx context.Context, cmd MoveCommand) error {
	return that.registry.Update(cmd.Room, func(room *entity.Room) error {
		player := room.PlayerByID(cmd.ConnectionID)
		if player == nil || player.IsComputer() {
			return fmt.Errorf("%w: connection is not seated", apperror.ErrNotYourTurn)
		}

		if cmd.Seat != entity.MarkNone && cmd.Seat != player.Seat {
			return apperror.ErrNotYourTurn
		}

		if cmd.Marker.Mark != player.Seat {
			return fmt.Errorf("%w: marker %s belongs to another seat", apperror.ErrInvalidMove, cmd.Marker)
		}

		if err := that.applyMove(ctx, room, player, cmd.Cell, cmd.Marker); err != nil {
			return err
		}

		that.continueWithComputer(ctx, room)

		return nil
	})
}

// applyMove validates and places one marker, then resolves the outcome.
// The room must be held by the caller.
func (that *roomService) applyMove(ctx context.Context, room *entity.Room, player *entity.Player, cell int, marker entity.Cell) error {
	if room.Phase != entity.PhaseInProgress {
		return apperror.ErrRoundOver
	}

	if player.Seat != room.CurrentTurn {
		return apperror.ErrNotYourTurn
	}

	if !entity.ValidIndex(cell) {
		return apperror.ErrInvalidCell
	}

	if _, locked := room.Locks[cell]; locked {
		return apperror.ErrCellLocked
	}

	if err := tictactoe.ValidatePlacement(room.Board, cell, marker, room.Mode); err != nil {
		return err
	}

	that.tickLocks(room)

	room.Board[cell] = marker
	room.CurrentTurn = player.Seat.Opponent()
	room.Seq++

	if room.Mode == entity.ModeComputerOpponent {
		side := entity.SideHuman
		if player.IsComputer() {
			side = entity.SideComputer
		}

		room.History = append(room.History, entity.MoveRecord{
			Number: len(room.History) + 1,
			Side:   side,
			Seat:   player.Seat,
			Cell:   cell,
		})
	}

	that.resolveOutcome(ctx, room, tictactoe.Evaluate(room.Board, room.Mode))

	return nil
}

// tickLocks - every lock loses one turn per accepted move; spent locks are removed.
func (that *roomService) tickLocks(room *entity.Room) {
	if len(room.Locks) == 0 {
		return
	}

	for cell, turns := range room.Locks {
		if turns > 1 {
			room.Locks[cell] = turns - 1
		} else {
			delete(room.Locks, cell)
		}
	}

	that.notifier.Broadcast(room.Name, EventLocksUpdated, LocksPayload{Locks: room.CloneLocks()})
}

// continueWithComputer plays the computer seat when it is its turn.
func (that *roomService) continueWithComputer(ctx context.Context, room *entity.Room) {
	if room.Mode != entity.ModeComputerOpponent || room.Phase != entity.PhaseInProgress {
		return
	}

	computer := room.Computer()
	if computer == nil || computer.Seat != room.CurrentTurn {
		return
	}

	log := that.logger.With("method", "continueWithComputer", "room", room.Name)

	cell, err := that.mover.ChooseCell(ctx, room, computer.Seat)
	if err != nil {
		log.Info("computer move skipped", "error", err)
		return
	}

	if err = that.applyMove(ctx, room, computer, cell, entity.Marker(computer.Seat)); err != nil {
		log.Warn("computer move rejected", "cell", cell, "error", err)
	}
}

func (that *roomService) Restart(ctx context.Context, roomName string, opts RestartOptions) error {
	log := that.logger.With("method", "Restart", "room", roomName)

	return that.registry.Update(roomName, func(room *entity.Room) error {
		room.Board.Clear()
		room.Locks = make(map[int]int)
		room.CurrentTurn = that.randomMark()
		room.Seq++

		for _, player := range room.Players {
			if !opts.PreserveScores {
				player.Score = 0
			}

			if opts.RerollSkills && room.Mode == entity.ModeHalfStrength && !player.IsComputer() {
				player.Skills = RollSkills(that.dice)
			}
		}

		if room.Mode == entity.ModeComputerOpponent {
			room.History = nil
			room.AdvisoryLog = nil
		}

		if room.IsFull() {
			room.Phase = entity.PhaseInProgress
		} else {
			room.Phase = entity.PhaseWaitingForPlayers
		}

		log.Info("room restarted", "preserve_scores", opts.PreserveScores, "reroll_skills", opts.RerollSkills, "turn", room.CurrentTurn)

		that.notifier.Broadcast(room.Name, EventStateUpdated, newStatePayload(room))
		that.publish(ctx, room)

		that.continueWithComputer(ctx, room)

		return nil
	})
}

func (that *roomService) Leave(ctx context.Context, roomName, connectionID string) error {
	log := that.logger.With("method", "Leave", "room", roomName)

	return that.registry.Update(roomName, func(room *entity.Room) error {
		removed := room.RemovePlayer(connectionID)

		if len(room.Players) == 0 || (room.Mode == entity.ModeComputerOpponent && len(room.Players) < entity.MaxPlayers) {
			that.registry.Remove(room.Name)
			if err := that.directory.DeleteByName(ctx, room.Name); err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
				log.Warn("failed to delete room snapshot", "error", err)
			}

			log.Info("room destroyed")

			return nil
		}

		if !removed {
			return nil
		}

		room.Board.Clear()
		room.Locks = make(map[int]int)
		room.CurrentTurn = entity.MarkX
		room.Phase = entity.PhaseWaitingForPlayers
		room.Seq++

		log.Info("player left", "connection", connectionID)

		players := room.ClonePlayers()
		that.notifier.Broadcast(room.Name, EventUpdatePlayers, PlayersPayload{Players: players})
		that.notifier.Broadcast(room.Name, EventGameRestarted, RestartedPayload{
			CurrentTurn: room.CurrentTurn,
			Board:       room.Board,
			Players:     players,
		})
		that.publish(ctx, room)

		return nil
	})
}

// publish mirrors the room into the directory; failures only get logged.
func (that *roomService) publish(ctx context.Context, room *entity.Room) {
	if err := that.directory.Save(ctx, room.Snapshot(that.now())); err != nil {
		that.logger.Warn("failed to save room snapshot", "room", room.Name, "error", err)
	}
}
