package agent

import (
	"fmt"

	"boardmcts/experiments/metrics"
	"boardmcts/searcher"
)

type evaluationAgent[P any, M comparable] struct {
	mcts *searcher.MCTS[P, M]
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent[P any, M comparable](mcts *searcher.MCTS[P, M]) Agent[P, M] {
	return evaluationAgent[P, M]{mcts: mcts}
}

func (a evaluationAgent[P, M]) FindMove(position P) (M, searcher.Decision[M], metrics.SearchMetric, error) {
	decision, metric, err := a.mcts.Decide(position)
	if err != nil {
		var none M
		return none, decision, metric, err
	}
	if !decision.HasMove {
		var none M
		return none, decision, metric, fmt.Errorf("no move to play: position is already decided")
	}
	return decision.Move, decision, metric, nil
}
