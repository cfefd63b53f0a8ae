package game

// Outcome of a finished game, stated from the perspective of the side to move
// in the terminal position.
type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

// Value maps an outcome to a win probability: 1 for a win, 0 for a loss, 0.5 for a draw.
func (o Outcome) Value() float64 {
	switch o {
	case Win:
		return 1
	case Draw:
		return 0.5
	default:
		return 0
	}
}

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "loss"
	}
}

// MovePrior is a legal move with the policy's estimate of it being the best move.
type MovePrior[M comparable] struct {
	Move  M
	Prior float64
}

// Oracle answers rules questions about positions. Positions are immutable values:
// Apply returns a new position and never modifies its argument.
type Oracle[P any, M comparable] interface {
	// LegalMovesWithPriors lists every legal move of a non-terminal position, in a
	// deterministic order, with non-negative priors summing to 1.
	LegalMovesWithPriors(position P) []MovePrior[M]
	// Apply plays a legal move. Applying an illegal move is a caller bug and may panic.
	Apply(position P, move M) P
	// TerminalOutcome reports the outcome for the side to move if the game is over.
	TerminalOutcome(position P) (Outcome, bool)
}

// Evaluator estimates the probability in [0,1] that the side to move wins a
// non-terminal position.
type Evaluator[P any] interface {
	StaticValue(position P) float64
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc[P any] func(position P) float64

func (f EvaluatorFunc[P]) StaticValue(position P) float64 {
	return f(position)
}
