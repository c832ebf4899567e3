package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full, choose another room")
	ErrModeMismatch = errors.New("room is played in another mode")
	ErrUnknownMode  = errors.New("unknown game mode")

	ErrDuplicateSeat = errors.New("connection already holds a seat in this room")

	ErrInvalidMove  = errors.New("invalid move")
	ErrNotYourTurn  = fmt.Errorf("%w: it's not your turn", ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrCellLocked   = fmt.Errorf("%w: cell is locked", ErrInvalidMove)
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", ErrInvalidMove)
	ErrRoundOver    = fmt.Errorf("%w: round is not in progress", ErrInvalidMove)

	ErrAdvisoryUnavailable = errors.New("advisory collaborator unavailable")
	ErrNoLegalMove         = errors.New("no legal move left on the board")
)
