package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

const (
	historyWindow  = 3
	candidateLimit = 2
)

var indexPattern = regexp.MustCompile(`\d+`)

// Completer answers an advisory conversation with free text.
type Completer interface {
	Complete(ctx context.Context, messages []entity.AdvisoryMessage) (string, error)
}

// ComputerMover picks the cell the computer seat plays next.
type ComputerMover interface {
	ChooseCell(ctx context.Context, room *entity.Room, seat entity.Mark) (int, error)
}

type advisoryOrchestrator struct {
	logger    *slog.Logger
	completer Completer
	timeout   time.Duration
}

func NewAdvisoryOrchestrator(logger *slog.Logger, completer Completer, timeout time.Duration) ComputerMover {
	return &advisoryOrchestrator{
		logger:    logger.With("component", "advisory_orchestrator"),
		completer: completer,
		timeout:   timeout,
	}
}

// ChooseCell plays an immediate win or block when there is one, otherwise asks
// the advisory collaborator. A failed or unusable answer falls back to the
// first empty cell. The room must be held by the caller.
func (that *advisoryOrchestrator) ChooseCell(ctx context.Context, room *entity.Room, seat entity.Mark) (int, error) {
	log := that.logger.With("method", "ChooseCell", "room", room.Name)

	if cell, ok := tictactoe.FindImmediateMove(room.Board, seat); ok {
		log.Debug("immediate move", "cell", cell)
		return cell, nil
	}

	fallback, ok := room.Board.FirstEmpty()
	if !ok {
		return -1, apperror.ErrNoLegalMove
	}

	cell, err := that.consult(ctx, room, seat)
	if err != nil {
		log.Warn("advisory answer unusable, using first empty cell", "cell", fallback, "error", err)
		return fallback, nil
	}

	log.Debug("advisory move", "cell", cell)

	return cell, nil
}

func (that *advisoryOrchestrator) consult(ctx context.Context, room *entity.Room, seat entity.Mark) (int, error) {
	content, err := composeRequest(room, seat)
	if err != nil {
		return -1, err
	}

	request := entity.AdvisoryMessage{Role: entity.AdvisoryRoleUser, Content: content}

	conversation := make([]entity.AdvisoryMessage, 0, len(room.AdvisoryLog)+2)
	conversation = append(conversation, systemFraming(seat))
	conversation = append(conversation, room.AdvisoryLog...)
	conversation = append(conversation, request)

	callCtx, cancel := context.WithTimeout(ctx, that.timeout)
	defer cancel()

	reply, err := that.completer.Complete(callCtx, conversation)
	if err != nil {
		return -1, fmt.Errorf("advisory call failed: %w", err)
	}

	room.AdvisoryLog = append(room.AdvisoryLog,
		request,
		entity.AdvisoryMessage{Role: entity.AdvisoryRoleAssistant, Content: reply},
	)

	return parseIndex(reply, room.Board)
}

func systemFraming(seat entity.Mark) entity.AdvisoryMessage {
	return entity.AdvisoryMessage{
		Role: entity.AdvisoryRoleSystem,
		Content: fmt.Sprintf(
			"You are playing tic-tac-toe as %q against %q. Each turn you receive the board as an array of 9 cells "+
				"indexed 0..8 where %q are your cells, %q are your opponent's and null is empty. "+
				"Pick the best empty cell and answer only in the format \"Index: N\".",
			seat, seat.Opponent(), seat, seat.Opponent(),
		),
	}
}

// composeRequest - rules, the last moves, the board and the ranked candidates.
func composeRequest(room *entity.Room, seat entity.Mark) (string, error) {
	board, err := json.Marshal(room.Board)
	if err != nil {
		return "", fmt.Errorf("failed to marshal board: %w", err)
	}

	ranking := tictactoe.RankCandidates(room.Board, seat)

	var builder strings.Builder

	fmt.Fprintf(&builder, "Your move. You are %s, your opponent is %s.\n", seat, seat.Opponent())
	fmt.Fprintf(&builder, "Rules: three of one mark on a line wins; the lines are %v. Only null cells may be played.\n", entity.Lines)

	history := room.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	if len(history) > 0 {
		builder.WriteString("Recent moves:\n")
		for _, move := range history {
			fmt.Fprintf(&builder, "- move %d: %s (%s) took cell %d\n", move.Number, move.Side, move.Seat, move.Cell)
		}
	}

	fmt.Fprintf(&builder, "Board: %s\n", board)
	fmt.Fprintf(&builder, "Recommended cells: %s\n", joinCells(tictactoe.Top(ranking.Recommended, candidateLimit)))
	fmt.Fprintf(&builder, "Discouraged cells: %s\n", joinCells(tictactoe.Top(ranking.Discouraged, candidateLimit)))

	if tictactoe.CenterOpen(room.Board) {
		fmt.Fprintf(&builder, "The center cell %d is open, prefer it.\n", tictactoe.CenterCell)
	}

	builder.WriteString(`Answer in the format "Index: N".`)

	return builder.String(), nil
}

func joinCells(cells []int) string {
	if len(cells) == 0 {
		return "none"
	}

	parts := make([]string, 0, len(cells))
	for _, cell := range cells {
		parts = append(parts, strconv.Itoa(cell))
	}

	return strings.Join(parts, ", ")
}

// parseIndex takes the first integer of the reply; it must name an empty cell.
func parseIndex(reply string, board entity.Board) (int, error) {
	match := indexPattern.FindString(reply)
	if match == "" {
		return -1, fmt.Errorf("%w: no index in reply %q", apperror.ErrAdvisoryUnavailable, reply)
	}

	index, err := strconv.Atoi(match)
	if err != nil {
		return -1, fmt.Errorf("%w: %w", apperror.ErrInvalidCell, err)
	}

	if !entity.ValidIndex(index) {
		return -1, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, index)
	}

	if !board[index].IsEmpty() {
		return -1, fmt.Errorf("%w: %d", apperror.ErrCellOccupied, index)
	}

	return index, nil
}
