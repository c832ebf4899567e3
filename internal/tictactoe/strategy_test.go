package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindImmediateMove(t *testing.T) {
	t.Run("Winning move beats blocking move", func(t *testing.T) {
		// Given: O can win on 5 and X threatens to win on 2
		board := boardOf(t,
			"X", "X", "",
			"O", "O", "",
			"", "", "",
		)

		// When: O looks for an immediate move
		cell, ok := FindImmediateMove(board, entity.MarkO)

		// Then: the winning cell is chosen
		require.True(t, ok)
		assert.Equal(t, 5, cell)
	})

	t.Run("Blocking move", func(t *testing.T) {
		board := boardOf(t,
			"X", "X", "",
			"", "O", "",
			"", "", "",
		)

		cell, ok := FindImmediateMove(board, entity.MarkO)

		require.True(t, ok)
		assert.Equal(t, 2, cell)
	})

	t.Run("No immediate move", func(t *testing.T) {
		board := boardOf(t,
			"X", "", "",
			"", "O", "",
			"", "", "",
		)

		_, ok := FindImmediateMove(board, entity.MarkO)
		assert.False(t, ok)
	})

	t.Run("Board is not mutated", func(t *testing.T) {
		board := boardOf(t,
			"O", "O", "",
			"", "", "",
			"", "", "",
		)
		before := board

		_, _ = FindImmediateMove(board, entity.MarkO)
		_ = RankCandidates(board, entity.MarkO)

		assert.Equal(t, before, board)
	})
}

func TestRankCandidates(t *testing.T) {
	t.Run("Single marker recommends its open lines", func(t *testing.T) {
		// Given: only X in the corner
		board := boardOf(t,
			"X", "", "",
			"", "", "",
			"", "", "",
		)

		// When: O ranks candidates
		ranking := RankCandidates(board, entity.MarkO)

		// Then: cells on the row, column and diagonal through 0 are recommended
		assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1, 6: 1, 4: 1, 8: 1}, ranking.Recommended)
		assert.Empty(t, ranking.Discouraged)
	})

	t.Run("Mixed line is discouraged", func(t *testing.T) {
		board := boardOf(t,
			"X", "O", "",
			"", "", "",
			"", "", "",
		)

		ranking := RankCandidates(board, entity.MarkO)

		assert.Equal(t, map[int]int{2: 1}, ranking.Discouraged)
		assert.Equal(t, 2, ranking.Recommended[4])
		assert.Equal(t, 1, ranking.Recommended[3])
	})
}

func TestTop(t *testing.T) {
	scores := map[int]int{8: 1, 4: 3, 1: 3, 6: 2}

	assert.Equal(t, []int{1, 4}, Top(scores, 2))
	assert.Equal(t, []int{1, 4, 6, 8}, Top(scores, 10))
	assert.Empty(t, Top(map[int]int{}, 2))
}

func TestCenterOpen(t *testing.T) {
	assert.True(t, CenterOpen(entity.Board{}))

	board := entity.Board{}
	board[CenterCell] = entity.Marker(entity.MarkX)
	assert.False(t, CenterOpen(board))
}
