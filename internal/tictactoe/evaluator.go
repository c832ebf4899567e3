package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// Evaluate reports the outcome of the board under the rules of the mode.
// The first winning line in canonical order wins.
func Evaluate(board entity.Board, mode entity.Mode) entity.Outcome {
	for _, line := range entity.Lines {
		if mark, ok := lineWinner(board, line); ok {
			return entity.Win(mark, line)
		}
	}

	if mode == entity.ModeHalfStrength {
		return evaluateHalfDraw(board)
	}

	if board.IsFull() {
		return entity.Draw()
	}

	return entity.NoOutcome()
}

// lineWinner - a line wins only with three full markers of one seat; a half
// marker breaks the line.
func lineWinner(board entity.Board, line [3]int) (entity.Mark, bool) {
	first := board[line[0]]
	if first.Kind != entity.CellMarker {
		return entity.MarkNone, false
	}

	for _, index := range line[1:] {
		if board[index] != first {
			return entity.MarkNone, false
		}
	}

	return first.Mark, true
}

// evaluateHalfDraw - the board is a draw when every cell holds a full marker,
// or when a single half marker is left and every other cell is full.
func evaluateHalfDraw(board entity.Board) entity.Outcome {
	var empty, half int
	for _, cell := range board {
		switch cell.Kind {
		case entity.CellEmpty:
			empty++
		case entity.CellHalfMarker:
			half++
		}
	}

	if empty == 0 && half <= 1 {
		return entity.Draw()
	}

	return entity.NoOutcome()
}

// ValidatePlacement checks whether marker may be put on the cell at index.
// Outside HalfStrength only empty cells are playable. In HalfStrength a half
// marker may also borrow a cell holding the opponent's full marker, and a full
// marker may promote the mover's own half marker.
func ValidatePlacement(board entity.Board, index int, marker entity.Cell, mode entity.Mode) error {
	if !entity.ValidIndex(index) {
		return apperror.ErrInvalidCell
	}

	if marker.IsEmpty() || !marker.Mark.Valid() {
		return apperror.ErrInvalidMove
	}

	if marker.IsHalf() && mode != entity.ModeHalfStrength {
		return apperror.ErrInvalidMove
	}

	target := board[index]
	if target.IsEmpty() {
		return nil
	}

	if mode == entity.ModeHalfStrength {
		borrow := marker.IsHalf() && target.Kind == entity.CellMarker && target.Mark == marker.Mark.Opponent()
		promote := marker.Kind == entity.CellMarker && target.IsHalf() && target.Mark == marker.Mark
		if borrow || promote {
			return nil
		}
	}

	return apperror.ErrCellOccupied
}
