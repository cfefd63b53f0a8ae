package game

import "fmt"

// TicTacToe is the reference Oracle and Evaluator: rules of noughts and crosses
// with linear policy and value models over a small feature set.
type TicTacToe struct {
	params Params
}

var (
	_ Oracle[Board, Square] = (*TicTacToe)(nil)
	_ Evaluator[Board]      = (*TicTacToe)(nil)
)

func NewTicTacToe(params Params) (*TicTacToe, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &TicTacToe{params: params}, nil
}

func (t *TicTacToe) Params() Params {
	return t.params
}

func (t *TicTacToe) LegalMovesWithPriors(b Board) []MovePrior[Square] {
	if _, over := t.TerminalOutcome(b); over {
		return nil
	}

	squares := b.EmptySquares()
	scores := make([]float64, len(squares))
	for i, sq := range squares {
		features := policyFeatures(b, sq)
		scores[i] = dot(t.params.Policy, features[:])
	}
	softmax(scores)

	moves := make([]MovePrior[Square], len(squares))
	for i, sq := range squares {
		moves[i] = MovePrior[Square]{Move: sq, Prior: scores[i]}
	}
	return moves
}

func (t *TicTacToe) Apply(b Board, sq Square) Board {
	next, err := b.Play(sq)
	if err != nil {
		panic(fmt.Sprintf("illegal move in position %v: %v", b, err))
	}
	return next
}

func (t *TicTacToe) TerminalOutcome(b Board) (Outcome, bool) {
	if _, won := b.Winner(); won {
		// Only the player who just moved can have completed a line.
		return Loss, true
	}
	if b.Full() {
		return Draw, true
	}
	return Loss, false
}

func (t *TicTacToe) StaticValue(b Board) float64 {
	features := valueFeatures(b)
	return sigmoid(dot(t.params.Value, features[:]))
}
