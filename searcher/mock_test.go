package searcher

import (
	"testing"

	"boardmcts/game"

	"github.com/stretchr/testify/require"
)

// mockPosition is the sequence of move indexes played from the start of a
// synthetic game.
type mockPosition string

func (p mockPosition) depth() int {
	return len(p)
}

type mockMove int

// mockOracle is an endless game where every position has width moves.
type mockOracle struct {
	width    int
	priors   func(p mockPosition) []float64 // uniform when nil
	terminal func(p mockPosition) (game.Outcome, bool)
}

func (o mockOracle) LegalMovesWithPriors(p mockPosition) []game.MovePrior[mockMove] {
	var priors []float64
	if o.priors != nil {
		priors = o.priors(p)
	} else {
		priors = make([]float64, o.width)
		for i := range priors {
			priors[i] = 1 / float64(o.width)
		}
	}
	moves := make([]game.MovePrior[mockMove], len(priors))
	for i, prior := range priors {
		moves[i] = game.MovePrior[mockMove]{Move: mockMove(i), Prior: prior}
	}
	return moves
}

func (o mockOracle) Apply(p mockPosition, m mockMove) mockPosition {
	return p + mockPosition(rune('A'+m))
}

func (o mockOracle) TerminalOutcome(p mockPosition) (game.Outcome, bool) {
	if o.terminal != nil {
		return o.terminal(p)
	}
	return game.Loss, false
}

func constantValue(v float64) game.Evaluator[mockPosition] {
	return game.EvaluatorFunc[mockPosition](func(mockPosition) float64 { return v })
}

// lineValues scores every position below root move i as rootValue[i] for the
// root player, stated for whoever is to move.
func lineValues(rootValue ...float64) game.Evaluator[mockPosition] {
	return game.EvaluatorFunc[mockPosition](func(p mockPosition) float64 {
		if p.depth() == 0 {
			return 0.5
		}
		v := rootValue[p[0]-'A']
		if p.depth()%2 == 1 {
			return 1 - v
		}
		return v
	})
}

func newTestTree[P any, M comparable](t *testing.T, position P, oracle game.Oracle[P, M], evaluator game.Evaluator[P], settings ...Setting[M]) *Tree[P, M] {
	t.Helper()
	tree, err := New(position, oracle, evaluator, NewSettings(settings...))
	require.NoError(t, err)
	return tree
}

// requireTreeInvariants walks every materialized node.
func requireTreeInvariants[P any, M comparable](t *testing.T, tree *Tree[P, M]) {
	t.Helper()
	for i := range tree.arena.Len() {
		n := tree.arena.node(NodeIndex(i))
		if n.visits > 0 {
			mean := n.mean()
			require.GreaterOrEqual(t, mean, 0.0, "node %d mean", i)
			require.LessOrEqual(t, mean, 1.0, "node %d mean", i)
		}
		if n.terminal || !n.expanded {
			continue
		}

		edges := tree.arena.edgesOf(n)
		sum := 0.0
		var childVisits uint64
		for j := range edges {
			require.GreaterOrEqual(t, edges[j].prior, 0.0)
			sum += edges[j].prior
			childVisits += tree.edgeVisits(&edges[j])
		}
		require.InDelta(t, 1.0, sum, 1e-4, "priors of node %d", i)
		if n.visits > 0 {
			require.Equal(t, n.visits, 1+childVisits, "visits of node %d", i)
		}
	}
}
