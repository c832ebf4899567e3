package tictactoe

import (
	"sort"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const CenterCell = 4

// Ranking holds the per-cell scores of the candidate heuristic.
type Ranking struct {
	Recommended map[int]int
	Discouraged map[int]int
}

// FindImmediateMove returns a cell that wins the game for seat, or failing
// that a cell that blocks the opponent's win. Wins take priority over blocks;
// within each, the first line in canonical order is used.
func FindImmediateMove(board entity.Board, seat entity.Mark) (int, bool) {
	if cell, ok := completingCell(board, seat); ok {
		return cell, true
	}

	return completingCell(board, seat.Opponent())
}

// completingCell - the empty cell of the first line where mark holds the other two.
func completingCell(board entity.Board, mark entity.Mark) (int, bool) {
	for _, line := range entity.Lines {
		owned, empty, emptyCell := 0, 0, -1
		for _, index := range line {
			switch cell := board[index]; {
			case cell.IsEmpty():
				empty++
				emptyCell = index
			case cell.OwnedBy(mark):
				owned++
			}
		}

		if owned == 2 && empty == 1 {
			return emptyCell, true
		}
	}

	return -1, false
}

// RankCandidates scores empty cells per line: a line with one occupied and two
// empty cells recommends both empty cells, a line with one cell of each seat
// discourages its last empty cell.
func RankCandidates(board entity.Board, seat entity.Mark) Ranking {
	ranking := Ranking{
		Recommended: make(map[int]int),
		Discouraged: make(map[int]int),
	}

	opponent := seat.Opponent()

	for _, line := range entity.Lines {
		var own, foreign int
		empties := make([]int, 0, len(line))

		for _, index := range line {
			switch cell := board[index]; {
			case cell.IsEmpty():
				empties = append(empties, index)
			case cell.OwnedBy(seat):
				own++
			case cell.OwnedBy(opponent):
				foreign++
			}
		}

		switch {
		case len(empties) == 2 && own+foreign == 1:
			for _, index := range empties {
				ranking.Recommended[index]++
			}
		case len(empties) == 1 && own == 1 && foreign == 1:
			ranking.Discouraged[empties[0]]++
		}
	}

	return ranking
}

// Top returns up to n cells ordered by descending score, ties by ascending index.
func Top(scores map[int]int, n int) []int {
	cells := make([]int, 0, len(scores))
	for cell := range scores {
		cells = append(cells, cell)
	}

	sort.Slice(cells, func(i, j int) bool {
		if scores[cells[i]] != scores[cells[j]] {
			return scores[cells[i]] > scores[cells[j]]
		}
		return cells[i] < cells[j]
	})

	if len(cells) > n {
		cells = cells[:n]
	}

	return cells
}

func CenterOpen(board entity.Board) bool {
	return board[CenterCell].IsEmpty()
}
