package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

type Mode string

const (
	ModeClassic          Mode = "Classic"
	ModeScoreToThree     Mode = "ScoreToThree"
	ModeHalfStrength     Mode = "HalfStrength"
	ModeComputerOpponent Mode = "ComputerOpponent"
)

// modeAliases maps the names older clients send to the canonical modes.
var modeAliases = map[string]Mode{
	"Standard":    ModeClassic,
	"Score":       ModeScoreToThree,
	"Half":        ModeHalfStrength,
	"AI_Standard": ModeComputerOpponent,
}

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case ModeClassic, ModeScoreToThree, ModeHalfStrength, ModeComputerOpponent:
		return mode, nil
	}

	if mode, ok := modeAliases[value]; ok {
		return mode, nil
	}

	return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, value)
}

// TracksScore reports whether wins accumulate score instead of ending the game.
func (that Mode) TracksScore() bool {
	return that == ModeScoreToThree || that == ModeHalfStrength
}
