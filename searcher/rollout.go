package searcher

import (
	"fmt"
	"math"

	"boardmcts/game"
)

// rollout plays up to RolloutDepth moves sampled from the oracle's priors and
// returns the value of the reached position for the side to move at the start.
func (t *Tree[P, M]) rollout(position P) float64 {
	t.metrics.AddRollout()

	flipped := false
	for depth := uint16(0); depth < t.settings.RolloutDepth; depth++ {
		moves := t.oracle.LegalMovesWithPriors(position)
		if len(moves) == 0 {
			panic(fmt.Errorf("%w: non-terminal position has no legal moves", ErrContractViolation))
		}
		position = t.oracle.Apply(position, sampleMove(t.rng, moves, t.settings.RolloutTemperature))
		flipped = !flipped

		if outcome, over := t.oracle.TerminalOutcome(position); over {
			t.metrics.AddFullPlayout()
			return perspective(outcome.Value(), flipped)
		}
	}
	return perspective(t.staticValue(position), flipped)
}

func perspective(v float64, flipped bool) float64 {
	if flipped {
		return 1 - v
	}
	return v
}

type random interface {
	Float64() float64
}

// sampleMove draws a move with probability proportional to prior^(1/temperature).
// Temperature 0 is greedy; an infinite temperature is uniform over the moves
// with a positive prior. Priors are scaled by the largest one first so the
// power cannot underflow for small temperatures.
func sampleMove[M comparable](rng random, moves []game.MovePrior[M], temperature float64) M {
	best := 0
	for i, mp := range moves {
		if mp.Prior > moves[best].Prior {
			best = i
		}
	}
	maxPrior := moves[best].Prior
	if temperature == 0 && maxPrior > 0 {
		return moves[best].Move
	}

	weights := make([]float64, len(moves))
	total := 0.0
	for i, mp := range moves {
		if maxPrior > 0 && mp.Prior <= 0 {
			continue
		}
		w := 1.0
		if maxPrior > 0 {
			w = math.Pow(mp.Prior/maxPrior, 1/temperature)
		}
		weights[i] = w
		total += w
	}

	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return moves[i].Move
		}
		r -= w
	}
	return moves[best].Move
}
