package entity

// DrawSentinel is the winner value broadcast for a draw.
const DrawSentinel = "draw"

type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeDraw
	OutcomeWin
)

type Outcome struct {
	Kind OutcomeKind
	Mark Mark
	Line [3]int
}

func NoOutcome() Outcome {
	return Outcome{Kind: OutcomeNone}
}

func Draw() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

func Win(mark Mark, line [3]int) Outcome {
	return Outcome{Kind: OutcomeWin, Mark: mark, Line: line}
}

func (that Outcome) IsNone() bool {
	return that.Kind == OutcomeNone
}
