package agent

import (
	"fmt"
	"math"

	"boardmcts/experiments/metrics"
	"boardmcts/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent[P any, M comparable] struct {
	mcts        *searcher.MCTS[P, M]
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play. It samples the root move
// with probability proportional to visits^(1/temperature); temperature 0 always
// plays the most visited move.
func NewTrainingAgent[P any, M comparable](mcts *searcher.MCTS[P, M], temperature float64, seed uint64) Agent[P, M] {
	return &trainingAgent[P, M]{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent[P, M]) FindMove(position P) (M, searcher.Decision[M], metrics.SearchMetric, error) {
	var none M
	decision, metric, err := a.mcts.Decide(position)
	if err != nil {
		return none, decision, metric, err
	}
	if !decision.HasMove {
		return none, decision, metric, fmt.Errorf("no move to play: position is already decided")
	}
	if a.temperature == 0 {
		return decision.Move, decision, metric, nil
	}

	policy := adjustTemperature(decision.Children, a.temperature)
	if policy == nil {
		return decision.Move, decision, metric, nil
	}
	return decision.Children[sample(policy, a.rng.Float64())].Move, decision, metric, nil
}

// adjustTemperature turns visit counts into move probabilities. It returns nil
// when no move has been visited.
func adjustTemperature[M comparable](children []searcher.MoveInfo[M], temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make([]float64, len(children))
	for i, child := range children {
		prob := math.Pow(float64(child.Visits), exponent)
		sum += prob
		policy[i] = prob
	}
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return nil
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

func sample(policy []float64, sampled float64) int {
	cumulative := 0.0
	last := 0
	for i, prob := range policy {
		if prob == 0 {
			continue
		}
		last = i
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return last // Fallback in case of rounding errors
}
