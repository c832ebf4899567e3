package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
)

func (that *Server) handleJoinRoom(ctx context.Context, c *client, msg *Message) error {
	var payload JoinRoomPayload
	if err := decodePayload(that.validate, msg, &payload); err != nil {
		that.sendErrorResponse(c, err.Error())
		return err
	}

	mode, err := entity.ParseMode(payload.mode())
	if err != nil {
		that.sendErrorResponse(c, err.Error())
		return err
	}

	if c.joined != "" && c.joined != payload.Room {
		that.disconnect(ctx, c)
	}

	if err = that.rooms.Join(ctx, payload.Room, mode); err != nil {
		if errors.Is(err, apperror.ErrRoomFull) || errors.Is(err, apperror.ErrModeMismatch) {
			that.sendErrorResponse(c, err.Error())
		}

		return fmt.Errorf("failed to join room %s: %w", payload.Room, err)
	}

	c.joined = payload.Room
	that.hub.Send(c.id, eventAllowed, nil)

	return nil
}

func (that *Server) handleReadyForRole(ctx context.Context, c *client, msg *Message) error {
	var payload ReadyForRolePayload
	if err := decodePayload(that.validate, msg, &payload); err != nil {
		that.sendErrorResponse(c, err.Error())
		return err
	}

	if payload.Room != c.joined {
		that.sendErrorResponse(c, errNotJoined.Error())
		return fmt.Errorf("failed to assign seat in %s: %w", payload.Room, errNotJoined)
	}

	// the room service subscribes the connection once the seat is granted
	if err := that.rooms.AssignSeat(ctx, payload.Room, c.id, payload.Name); err != nil {
		return fmt.Errorf("failed to assign seat in %s: %w", payload.Room, err)
	}

	return nil
}

func (that *Server) handleLock(ctx context.Context, c *client, msg *Message) error {
	var payload LockPayload
	if err := decodePayload(that.validate, msg, &payload); err != nil {
		that.sendErrorResponse(c, err.Error())
		return err
	}

	return that.rooms.SetLock(ctx, payload.Room, *payload.Cell, service.LockAction(payload.Action))
}

func (that *Server) handleMove(ctx context.Context, c *client, msg *Message) error {
	var payload MovePayload
	if err := decodePayload(that.validate, msg, &payload); err != nil {
		that.sendErrorResponse(c, err.Error())
		return err
	}

	marker, err := entity.ParseCell(payload.Marker)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	var seat entity.Mark
	if payload.Seat != "" {
		if seat, err = entity.ParseMark(payload.Seat); err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
		}
	}

	return that.rooms.Move(ctx, service.MoveCommand{
		Room:         payload.Room,
		ConnectionID: c.id,
		Cell:         *payload.Cell,
		Marker:       marker,
		Seat:         seat,
	})
}

func (that *Server) handleRestartGame(ctx context.Context, c *client, msg *Message) error {
	var payload RestartGamePayload
	if err := decodePayload(that.validate, msg, &payload); err != nil {
		that.sendErrorResponse(c, err.Error())
		return err
	}

	return that.rooms.Restart(ctx, payload.Room, service.RestartOptions{
		PreserveScores: payload.PreserveScores,
		RerollSkills:   payload.RerollSkills,
	})
}

func (that *Server) handleLeave(ctx context.Context, c *client, _ *Message) error {
	that.disconnect(ctx, c)
	return nil
}

// logHandlerError - rejected moves and duplicate requests are expected traffic,
// anything else is an error.
func (that *Server) logHandlerError(log *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrRoomFull),
		errors.Is(err, apperror.ErrModeMismatch),
		errors.Is(err, apperror.ErrRoomNotFound),
		errors.Is(err, errInvalidPayload),
		errors.Is(err, errNotJoined),
		errors.Is(err, apperror.ErrUnknownMode):
		log.Info("request rejected", "error", err)
	default:
		log.Error("error processing message", "error", err)
	}
}
