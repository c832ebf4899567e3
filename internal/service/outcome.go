package service

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// resolveOutcome broadcasts the result of a move and applies the
// mode-specific follow-up: terminal win, score, or highlight then clear.
func (that *roomService) resolveOutcome(ctx context.Context, room *entity.Room, outcome entity.Outcome) {
	log := that.logger.With("method", "resolveOutcome", "room", room.Name)

	switch outcome.Kind {
	case entity.OutcomeNone:
		that.notifier.Broadcast(room.Name, EventStateUpdated, newStatePayload(room))

	case entity.OutcomeDraw:
		room.Phase = entity.PhaseTerminated
		log.Info("round drawn")
		that.notifier.Broadcast(room.Name, EventStateUpdated, newStatePayload(room).withWinner(entity.DrawSentinel, nil))

	case entity.OutcomeWin:
		winner := room.PlayerBySeat(outcome.Mark)
		if winner == nil {
			log.Warn("winning seat has no player", "seat", outcome.Mark)
			return
		}

		line := []int{outcome.Line[0], outcome.Line[1], outcome.Line[2]}

		if !room.Mode.TracksScore() {
			room.Phase = entity.PhaseTerminated
			log.Info("game won", "winner", winner.Name, "line", line)
			that.notifier.Broadcast(room.Name, EventStateUpdated, newStatePayload(room).withWinner(winner.Name, line))
			break
		}

		winner.Score++

		if winner.Score >= that.options.WinningScore {
			room.Phase = entity.PhaseTerminated
			log.Info("game won on score", "winner", winner.Name, "score", winner.Score)
			that.notifier.Broadcast(room.Name, EventStateUpdated, newStatePayload(room).withWinner(winner.Name, line))
			break
		}

		room.Phase = entity.PhaseRoundResolving
		log.Info("round won", "winner", winner.Name, "score", winner.Score, "line", line)
		that.notifier.Broadcast(room.Name, EventStateUpdated, newStatePayload(room).withWinner(winner.Name, line))
		that.scheduleLineClear(room, outcome.Line)
	}

	that.publish(ctx, room)
}

// scheduleLineClear empties the winning line after the highlight delay. The
// clear is dropped when the room was destroyed, replaced or changed meanwhile.
// fn runs after the current operation has released the room.
func (that *roomService) scheduleLineClear(room *entity.Room, line [3]int) {
	name, seq := room.Name, room.Seq

	that.scheduler.AfterFunc(that.options.ClearDelay, func() {
		log := that.logger.With("method", "clearLine", "room", name)

		err := that.registry.Update(name, func(current *entity.Room) error {
			if current != room || current.Seq != seq || current.Phase != entity.PhaseRoundResolving {
				log.Debug("stale line clear dropped")
				return nil
			}

			current.Board.ClearLine(line)
			current.Phase = entity.PhaseInProgress
			current.Seq++

			that.notifier.Broadcast(current.Name, EventStateUpdated, newStatePayload(current))
			that.publish(context.Background(), current)

			return nil
		})
		if err != nil {
			log.Debug("line clear dropped", "error", err)
		}
	})
}
