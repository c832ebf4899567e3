package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const BoardSize = 9

const halfSuffix = "_HALF"

var ErrUnknownCell = errors.New("unknown cell value")

// Lines are the 8 canonical winning lines in scan order: rows, columns, diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Mark string

const (
	MarkNone Mark = ""
	MarkX    Mark = "X"
	MarkO    Mark = "O"
)

func ParseMark(value string) (Mark, error) {
	switch mark := Mark(value); mark {
	case MarkX, MarkO:
		return mark, nil
	default:
		return MarkNone, fmt.Errorf("%w: mark %q", ErrUnknownCell, value)
	}
}

func (that Mark) Valid() bool {
	return that == MarkX || that == MarkO
}

func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkNone
	}
}

type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellMarker
	CellHalfMarker
)

// Cell is the content of one board square: empty, a seat marker, or a
// half-strength seat marker.
type Cell struct {
	Kind CellKind
	Mark Mark
}

func EmptyCell() Cell {
	return Cell{Kind: CellEmpty}
}

func Marker(mark Mark) Cell {
	return Cell{Kind: CellMarker, Mark: mark}
}

func HalfMarker(mark Mark) Cell {
	return Cell{Kind: CellHalfMarker, Mark: mark}
}

// ParseCell reads the wire form of a cell: "" for empty, "X"/"O" for a
// marker and "X_HALF"/"O_HALF" for a half-strength marker.
func ParseCell(value string) (Cell, error) {
	if value == "" {
		return EmptyCell(), nil
	}

	if base, ok := strings.CutSuffix(value, halfSuffix); ok {
		mark, err := ParseMark(base)
		if err != nil {
			return Cell{}, err
		}

		return HalfMarker(mark), nil
	}

	mark, err := ParseMark(value)
	if err != nil {
		return Cell{}, err
	}

	return Marker(mark), nil
}

func (that Cell) IsEmpty() bool {
	return that.Kind == CellEmpty
}

func (that Cell) IsHalf() bool {
	return that.Kind == CellHalfMarker
}

// OwnedBy reports whether the cell carries the mark, half-strength or not.
func (that Cell) OwnedBy(mark Mark) bool {
	return !that.IsEmpty() && that.Mark == mark
}

func (that Cell) String() string {
	switch that.Kind {
	case CellMarker:
		return string(that.Mark)
	case CellHalfMarker:
		return string(that.Mark) + halfSuffix
	default:
		return ""
	}
}

func (that Cell) MarshalJSON() ([]byte, error) {
	if that.IsEmpty() {
		return []byte("null"), nil
	}

	return json.Marshal(that.String())
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to unmarshal cell: %w", err)
	}

	if value == nil {
		*that = EmptyCell()
		return nil
	}

	cell, err := ParseCell(*value)
	if err != nil {
		return err
	}

	*that = cell

	return nil
}

type Board [BoardSize]Cell

func ValidIndex(index int) bool {
	return index >= 0 && index < BoardSize
}

// FirstEmpty returns the lowest empty index.
func (that *Board) FirstEmpty() (int, bool) {
	for i, cell := range that {
		if cell.IsEmpty() {
			return i, true
		}
	}

	return -1, false
}

func (that *Board) IsFull() bool {
	_, ok := that.FirstEmpty()
	return !ok
}

func (that *Board) Clear() {
	*that = Board{}
}

// ClearLine empties exactly the cells of the line.
func (that *Board) ClearLine(line [3]int) {
	for _, index := range line {
		that[index] = EmptyCell()
	}
}
