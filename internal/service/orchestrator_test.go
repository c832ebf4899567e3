package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func computerRoom(t *testing.T, f *fixture) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, f.service.Join(ctx, "cpu", entity.ModeComputerOpponent))
	require.NoError(t, f.service.AssignSeat(ctx, "cpu", "a", "alice"))
}

func TestRoomService_ComputerOpponent(t *testing.T) {
	t.Run("Human is X and the computer answers with the advised cell", func(t *testing.T) {
		f := newFixture(t)
		computerRoom(t, f)

		room := f.room(t, "cpu")
		require.Len(t, room.Players, 2)
		assert.Equal(t, entity.MarkX, room.Players[0].Seat)
		assert.Equal(t, entity.ComputerID, room.Players[1].ID)
		assert.Equal(t, entity.MarkO, room.Players[1].Seat)
		assert.Equal(t, entity.PhaseInProgress, room.Phase)

		f.completer.On("Complete", mock.Anything, mock.MatchedBy(func(messages []entity.AdvisoryMessage) bool {
			return len(messages) == 2 &&
				messages[0].Role == entity.AdvisoryRoleSystem &&
				messages[1].Role == entity.AdvisoryRoleUser
		})).Return("Index: 4", nil).Once()

		// When: the human takes a corner
		require.NoError(t, f.move("cpu", "a", 0, entity.Marker(entity.MarkX)))

		// Then: the computer takes the advised center and it is the human's turn again
		room = f.room(t, "cpu")
		assert.Equal(t, entity.Marker(entity.MarkO), room.Board[4])
		assert.Equal(t, entity.MarkX, room.CurrentTurn)
		assert.Equal(t, []entity.MoveRecord{
			{Number: 1, Side: entity.SideHuman, Seat: entity.MarkX, Cell: 0},
			{Number: 2, Side: entity.SideComputer, Seat: entity.MarkO, Cell: 4},
		}, room.History)
		require.Len(t, room.AdvisoryLog, 2)
		assert.Equal(t, "Index: 4", room.AdvisoryLog[1].Content)

		f.completer.AssertExpectations(t)
	})

	t.Run("Advisory log is replayed on the next call", func(t *testing.T) {
		f := newFixture(t)
		computerRoom(t, f)

		f.completer.On("Complete", mock.Anything, mock.Anything).Return("Index: 4", nil).Once()
		require.NoError(t, f.move("cpu", "a", 0, entity.Marker(entity.MarkX)))

		f.completer.On("Complete", mock.Anything, mock.MatchedBy(func(messages []entity.AdvisoryMessage) bool {
			return len(messages) == 4 && messages[2].Content == "Index: 4"
		})).Return("Index: 6", nil).Once()

		// X on 8 leaves no immediate threat for either side
		require.NoError(t, f.move("cpu", "a", 8, entity.Marker(entity.MarkX)))

		assert.Equal(t, entity.Marker(entity.MarkO), f.room(t, "cpu").Board[6])
		f.completer.AssertExpectations(t)
	})

	t.Run("Failed advisory call falls back to the first empty cell", func(t *testing.T) {
		f := newFixture(t)
		computerRoom(t, f)

		f.completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection refused")).Once()

		require.NoError(t, f.move("cpu", "a", 4, entity.Marker(entity.MarkX)))

		room := f.room(t, "cpu")
		assert.Equal(t, entity.Marker(entity.MarkO), room.Board[0])
		assert.Empty(t, room.AdvisoryLog)
	})

	t.Run("Unparseable reply falls back to the first empty cell", func(t *testing.T) {
		f := newFixture(t)
		computerRoom(t, f)

		f.completer.On("Complete", mock.Anything, mock.Anything).Return("I like corners", nil).Once()

		require.NoError(t, f.move("cpu", "a", 0, entity.Marker(entity.MarkX)))

		room := f.room(t, "cpu")
		assert.Equal(t, entity.Marker(entity.MarkO), room.Board[1])
		assert.Len(t, room.AdvisoryLog, 2)
	})

	t.Run("Computer win ends the game", func(t *testing.T) {
		f := newFixture(t)
		computerRoom(t, f)
		f.edit(t, "cpu", func(room *entity.Room) {
			room.Board[3] = entity.Marker(entity.MarkO)
			room.Board[4] = entity.Marker(entity.MarkO)
			room.Board[0] = entity.Marker(entity.MarkX)
		})

		// When: the human ignores the threat
		require.NoError(t, f.move("cpu", "a", 8, entity.Marker(entity.MarkX)))

		// Then: the computer completes the middle row without consulting anyone
		state := f.notifier.lastState(t)
		require.NotNil(t, state.Winner)
		assert.Equal(t, entity.ComputerName, *state.Winner)
		assert.Equal(t, []int{3, 4, 5}, state.WinningLine)
		assert.Equal(t, entity.PhaseTerminated, f.room(t, "cpu").Phase)
		f.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("Restart with the computer first plays immediately", func(t *testing.T) {
		f := newFixture(t)
		computerRoom(t, f)
		f.edit(t, "cpu", func(room *entity.Room) {
			room.History = []entity.MoveRecord{{Number: 1, Side: entity.SideHuman, Seat: entity.MarkX, Cell: 0}}
			room.AdvisoryLog = []entity.AdvisoryMessage{{Role: entity.AdvisoryRoleUser, Content: "old"}}
		})
		f.dice.ints = []int{1}

		f.completer.On("Complete", mock.Anything, mock.MatchedBy(func(messages []entity.AdvisoryMessage) bool {
			return len(messages) == 2
		})).Return("Index: 4", nil).Once()

		require.NoError(t, f.service.Restart(context.Background(), "cpu", RestartOptions{}))

		room := f.room(t, "cpu")
		assert.Equal(t, entity.Marker(entity.MarkO), room.Board[4])
		assert.Equal(t, entity.MarkX, room.CurrentTurn)
		require.Len(t, room.History, 1)
		assert.Equal(t, entity.SideComputer, room.History[0].Side)
		f.completer.AssertExpectations(t)
	})
}

func TestAdvisoryOrchestrator_ChooseCell(t *testing.T) {
	ctx := context.Background()

	newRoom := func(cells map[int]entity.Mark) *entity.Room {
		room := entity.NewRoom("cpu", entity.ModeComputerOpponent)
		for index, mark := range cells {
			room.Board[index] = entity.Marker(mark)
		}

		return room
	}

	t.Run("Immediate win is preferred over a block", func(t *testing.T) {
		completer := &mockCompleter{}
		orchestrator := NewAdvisoryOrchestrator(discardLogger(), completer, time.Second)

		room := newRoom(map[int]entity.Mark{0: entity.MarkX, 1: entity.MarkX, 6: entity.MarkO, 7: entity.MarkO})

		cell, err := orchestrator.ChooseCell(ctx, room, entity.MarkO)

		require.NoError(t, err)
		assert.Equal(t, 8, cell)
		completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("Full board has no legal move", func(t *testing.T) {
		completer := &mockCompleter{}
		orchestrator := NewAdvisoryOrchestrator(discardLogger(), completer, time.Second)

		room := newRoom(map[int]entity.Mark{
			0: entity.MarkX, 1: entity.MarkO, 2: entity.MarkX,
			3: entity.MarkX, 4: entity.MarkO, 5: entity.MarkO,
			6: entity.MarkO, 7: entity.MarkX, 8: entity.MarkX,
		})

		_, err := orchestrator.ChooseCell(ctx, room, entity.MarkO)

		require.ErrorIs(t, err, apperror.ErrNoLegalMove)
	})

	t.Run("Out of range and occupied answers fall back", func(t *testing.T) {
		for _, reply := range []string{"Index: 12", "Index: 4"} {
			completer := &mockCompleter{}
			completer.On("Complete", mock.Anything, mock.Anything).Return(reply, nil).Once()
			orchestrator := NewAdvisoryOrchestrator(discardLogger(), completer, time.Second)

			room := newRoom(map[int]entity.Mark{4: entity.MarkX})

			cell, err := orchestrator.ChooseCell(ctx, room, entity.MarkO)

			require.NoError(t, err)
			assert.Equal(t, 0, cell, reply)
		}
	})

	t.Run("Advisory call carries a deadline", func(t *testing.T) {
		completer := &mockCompleter{}
		completer.On("Complete", mock.MatchedBy(func(callCtx context.Context) bool {
			_, ok := callCtx.Deadline()
			return ok
		}), mock.Anything).Return("Index: 2", nil).Once()
		orchestrator := NewAdvisoryOrchestrator(discardLogger(), completer, time.Second)

		cell, err := orchestrator.ChooseCell(ctx, newRoom(map[int]entity.Mark{4: entity.MarkX}), entity.MarkO)

		require.NoError(t, err)
		assert.Equal(t, 2, cell)
		completer.AssertExpectations(t)
	})
}

func TestComposeRequest(t *testing.T) {
	room := entity.NewRoom("cpu", entity.ModeComputerOpponent)
	room.Board[0] = entity.Marker(entity.MarkX)
	for i := 1; i <= 5; i++ {
		room.History = append(room.History, entity.MoveRecord{Number: i, Side: entity.SideHuman, Seat: entity.MarkX, Cell: i})
	}

	request, err := composeRequest(room, entity.MarkO)
	require.NoError(t, err)

	assert.Contains(t, request, `Board: ["X",null,null,null,null,null,null,null,null]`)
	assert.Contains(t, request, "move 5")
	assert.Contains(t, request, "move 3")
	assert.NotContains(t, request, "move 2")
	assert.Contains(t, request, "Recommended cells: 1, 2")
	assert.Contains(t, request, "Discouraged cells: none")
	assert.Contains(t, request, "center cell 4 is open")
	assert.Contains(t, request, `"Index: N"`)
}

func TestParseIndex(t *testing.T) {
	board := entity.Board{}
	board[3] = entity.Marker(entity.MarkX)

	index, err := parseIndex("Index: 7", board)
	require.NoError(t, err)
	assert.Equal(t, 7, index)

	index, err = parseIndex("I'd go 2, then 5", board)
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	_, err = parseIndex("no digits", board)
	require.ErrorIs(t, err, apperror.ErrAdvisoryUnavailable)

	_, err = parseIndex("Index: 3", board)
	require.ErrorIs(t, err, apperror.ErrCellOccupied)

	_, err = parseIndex("Index: 9", board)
	require.ErrorIs(t, err, apperror.ErrInvalidCell)
}
