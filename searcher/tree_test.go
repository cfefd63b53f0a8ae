package searcher

import (
	"math"
	"slices"
	"testing"

	"boardmcts/experiments/metrics"
	"boardmcts/game"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("allocates the root without expanding it", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 3}, constantValue(0.5))

		require.Equal(t, 1, tree.arena.Len())
		require.False(t, tree.arena.node(rootIndex).expanded)
		require.Zero(t, tree.Visits())
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		tests := []struct {
			name     string
			settings []Setting[mockMove]
		}{
			{"zero arena capacity", []Setting[mockMove]{WithArenaCapacity[mockMove](0)}},
			{"negative exploration", []Setting[mockMove]{WithExploration[mockMove](-1)}},
			{"NaN exploration", []Setting[mockMove]{WithExploration[mockMove](math.NaN())}},
			{"negative exploration base", []Setting[mockMove]{WithExplorationGrowth[mockMove](-10)}},
			{"noise weight above 1", []Setting[mockMove]{WithDirichlet[mockMove](1.5, 0.3)}},
			{"noise without alpha", []Setting[mockMove]{WithDirichlet[mockMove](0.25, 0)}},
			{"negative rollout temperature", []Setting[mockMove]{WithRollout[mockMove](4, -1)}},
			{"zero progress interval", []Setting[mockMove]{WithProgressInterval[mockMove](0)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(mockPosition(""), mockOracle{width: 2}, constantValue(0.5), NewSettings(tt.settings...))
				require.ErrorIs(t, err, ErrInvalidSettings)
			})
		}
	})

	t.Run("rejects root priors that are negative or do not sum to 1", func(t *testing.T) {
		for _, priors := range [][]float64{{0.7, 0.7}, {-0.5, 1.5}, {0.2, math.NaN()}} {
			oracle := mockOracle{priors: func(mockPosition) []float64 { return priors }}
			_, err := New(mockPosition(""), oracle, constantValue(0.5), NewSettings[mockMove]())
			require.ErrorIs(t, err, ErrInvalidPriors, "priors %v", priors)
		}
	})

	t.Run("normalizes priors within tolerance", func(t *testing.T) {
		oracle := mockOracle{priors: func(mockPosition) []float64 { return []float64{0.5, 0.5005} }}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5))
		require.True(t, tree.Select())

		edges := tree.arena.edgesOf(tree.arena.node(rootIndex))
		require.InDelta(t, 1.0, edges[0].prior+edges[1].prior, 1e-12)
	})

	t.Run("rejects a non-terminal root without moves", func(t *testing.T) {
		_, err := New(mockPosition(""), mockOracle{width: 0}, constantValue(0.5), NewSettings[mockMove]())
		require.ErrorIs(t, err, ErrContractViolation)
	})

	t.Run("rejects a root whose moves are all excluded", func(t *testing.T) {
		_, err := New(mockPosition(""), mockOracle{width: 2}, constantValue(0.5),
			NewSettings(WithExcludedMoves[mockMove](0, 1)))
		require.ErrorIs(t, err, ErrNoMoves)
	})
}

func TestSelect(t *testing.T) {
	t.Run("first select expands and evaluates the root", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 3}, constantValue(0.7))

		require.True(t, tree.Select())

		root := tree.arena.node(rootIndex)
		require.True(t, root.expanded)
		require.Len(t, tree.arena.edgesOf(root), 3)
		require.Equal(t, 1, tree.arena.Len(), "children are materialized on first traversal")
		require.Equal(t, uint64(1), root.visits)
		require.InDelta(t, 0.7, root.valueSum, 1e-12)
	})

	t.Run("each select adds one root visit and never removes any", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 3}, lineValues(0.6, 0.4, 0.5))

		for i := 1; i <= 200; i++ {
			before := make([]uint64, tree.arena.Len())
			for j := range before {
				before[j] = tree.arena.node(NodeIndex(j)).visits
			}

			require.True(t, tree.Select())
			require.Equal(t, uint64(i), tree.Visits())
			for j, visits := range before {
				require.GreaterOrEqual(t, tree.arena.node(NodeIndex(j)).visits, visits)
			}
		}
		requireTreeInvariants(t, tree)
	})

	t.Run("backpropagation flips the value at every ply", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 1}, constantValue(0.8))

		for range 3 {
			require.True(t, tree.Select())
		}

		// root, its only child and grandchild, each evaluated once at 0.8
		require.Equal(t, 3, tree.arena.Len())
		require.InDelta(t, 0.8+0.2+0.8, tree.arena.node(0).valueSum, 1e-12)
		require.InDelta(t, 0.8+0.2, tree.arena.node(1).valueSum, 1e-12)
		require.InDelta(t, 0.8, tree.arena.node(2).valueSum, 1e-12)
	})

	t.Run("terminal nodes keep their outcome", func(t *testing.T) {
		// Move B ends the game: the side to move afterwards has lost.
		oracle := mockOracle{width: 2, terminal: func(p mockPosition) (game.Outcome, bool) {
			return game.Loss, p == "B"
		}}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5))

		for range 50 {
			require.True(t, tree.Select())
		}

		move, value, ok := tree.BestMove()
		require.True(t, ok)
		require.Equal(t, mockMove(1), move)
		require.Zero(t, value)

		b, _ := tree.arena.edgesOf(tree.arena.node(rootIndex))[1].child.get()
		child := tree.arena.node(b)
		require.True(t, child.terminal)
		require.Zero(t, child.valueSum)
		require.Equal(t, 0, int(child.edges.count))
		requireTreeInvariants(t, tree)
	})

	t.Run("panics when the evaluator leaves [0,1]", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, constantValue(1.5))
		require.Panics(t, func() { tree.Select() })
	})

	t.Run("panics on invalid priors below the root", func(t *testing.T) {
		oracle := mockOracle{priors: func(p mockPosition) []float64 {
			if p.depth() == 0 {
				return []float64{0.5, 0.5}
			}
			return []float64{0.9, 0.9}
		}}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5))
		require.True(t, tree.Select())

		require.PanicsWithError(t, "oracle contract violation: invalid move priors: priors sum to 1.8", func() { tree.Select() })
	})
}

func TestExhaustion(t *testing.T) {
	t.Run("an arena of 5 nodes is exhausted on the 6th select", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, constantValue(0.5),
			WithArenaCapacity[mockMove](5))

		for i := 1; i <= 5; i++ {
			require.True(t, tree.Select(), "select %d", i)
		}
		require.False(t, tree.Select())
		require.False(t, tree.Select(), "exhaustion is permanent")

		require.Equal(t, 5, tree.arena.Len())
		require.Equal(t, uint64(5), tree.Visits())

		move, value, ok := tree.BestMove()
		require.True(t, ok)
		require.Contains(t, []mockMove{0, 1}, move)
		require.InDelta(t, 0.5, value, 1e-12)
		require.NotEmpty(t, slices.Collect(tree.PV()))
		require.Len(t, tree.BestChildren(2), 2)
		requireTreeInvariants(t, tree)
	})

	t.Run("wide positions are exhausted by nodes, not edges", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 10}, constantValue(0.5),
			WithArenaCapacity[mockMove](5))

		for i := 1; i <= 5; i++ {
			require.True(t, tree.Select(), "select %d", i)
		}
		require.False(t, tree.Select())

		require.Equal(t, 5, tree.arena.Len())
		require.Len(t, tree.arena.edges, 50)
		require.Equal(t, uint64(5), tree.Visits())
		requireTreeInvariants(t, tree)
	})

	t.Run("a tree of decided positions never runs out", func(t *testing.T) {
		oracle := mockOracle{width: 2, terminal: func(p mockPosition) (game.Outcome, bool) {
			return game.Draw, p.depth() == 1
		}}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5),
			WithArenaCapacity[mockMove](3))

		result := tree.SearchForNodes(100, nil)
		require.Equal(t, StopNodes, result.StopReason)
		require.Equal(t, uint64(100), result.Simulations)
		require.Equal(t, 3, tree.arena.Len())
		requireTreeInvariants(t, tree)
	})

	t.Run("a terminal root is revisited without allocating", func(t *testing.T) {
		oracle := mockOracle{width: 2, terminal: func(mockPosition) (game.Outcome, bool) { return game.Win, true }}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5),
			WithArenaCapacity[mockMove](1))

		for range 10 {
			require.True(t, tree.Select())
		}
		require.Equal(t, uint64(10), tree.Visits())
		require.Equal(t, 1, tree.arena.Len())
	})

	t.Run("a failed select leaves the statistics untouched", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 3}, lineValues(0.3, 0.6, 0.5),
			WithArenaCapacity[mockMove](4))
		for tree.Select() {
		}

		nodes := slices.Clone(tree.arena.nodes)
		edges := slices.Clone(tree.arena.edges)
		require.False(t, tree.Select())
		require.Equal(t, nodes, tree.arena.nodes)
		require.Equal(t, edges, tree.arena.edges)
	})

	t.Run("a full edge slab stops expansion without allocating the node", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, constantValue(0.5),
			WithArenaCapacity[mockMove](10), WithEdgeCapacity[mockMove](4))

		require.True(t, tree.Select()) // root edges
		require.True(t, tree.Select()) // first child and its edges
		require.False(t, tree.Select())
		require.Equal(t, 2, tree.arena.Len())
	})

	t.Run("answers from priors when the root cannot be expanded", func(t *testing.T) {
		oracle := mockOracle{priors: func(mockPosition) []float64 { return []float64{0.3, 0.7} }}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5),
			WithEdgeCapacity[mockMove](1))

		require.False(t, tree.Select())

		move, value, ok := tree.BestMove()
		require.True(t, ok)
		require.Equal(t, mockMove(1), move)
		require.Equal(t, 0.5, value)
		require.Empty(t, slices.Collect(tree.PV()))
	})
}

func TestSearchConvergence(t *testing.T) {
	t.Run("prefers the move worth 0.9 over the move worth 0.1", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, lineValues(0.9, 0.1))

		result := tree.SearchForNodes(1000, nil)
		require.Equal(t, uint64(1000), result.Simulations)

		move, value, ok := tree.BestMove()
		require.True(t, ok)
		require.Equal(t, mockMove(0), move)
		require.InDelta(t, 0.1, value, 1e-9, "opponent's win probability after A")

		best := tree.BestChildren(2)
		require.Equal(t, mockMove(0), best[0].Move)
		require.Greater(t, best[0].VisitShare, 0.9)
		require.InDelta(t, 0.9, best[0].WinProbability, 1e-9)
		require.InDelta(t, 0.1, best[1].WinProbability, 1e-9)
		requireTreeInvariants(t, tree)
	})

	t.Run("edge values mirror child values", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, lineValues(0.9, 0.1))
		tree.SearchForNodes(500, nil)

		for i := range tree.arena.Len() {
			n := tree.arena.node(NodeIndex(i))
			edges := tree.arena.edgesOf(n)
			for j := range edges {
				index, ok := edges[j].child.get()
				if !ok {
					continue
				}
				require.InDelta(t, 1-tree.arena.node(index).mean(), tree.edgeValue(&edges[j]), 1e-12)
			}
		}
		// Nearly every simulation goes through A, worth 0.9 to the root player.
		require.Greater(t, tree.arena.node(rootIndex).mean(), 0.85)
	})

	t.Run("finds a win in one", func(t *testing.T) {
		ttt, err := game.NewTicTacToe(game.DefaultParams())
		require.NoError(t, err)
		board, err := game.ParseBoard("xx./oo./...")
		require.NoError(t, err)

		tree := newTestTree[game.Board, game.Square](t, board, ttt, ttt)
		tree.SearchForNodes(300, nil)

		move, value, ok := tree.BestMove()
		require.True(t, ok)
		require.Equal(t, game.Square(2), move)
		require.Zero(t, value)
		require.Equal(t, []game.Square{2}, slices.Collect(tree.PV()), "the line ends at the terminal node")
		requireTreeInvariants(t, tree)
	})
}

func TestExcludedMoves(t *testing.T) {
	ttt, err := game.NewTicTacToe(game.DefaultParams())
	require.NoError(t, err)
	board, err := game.ParseBoard("xx./oo./...")
	require.NoError(t, err)

	t.Run("never searches or reports an excluded move", func(t *testing.T) {
		tree := newTestTree(t, board, game.Oracle[game.Board, game.Square](ttt), game.Evaluator[game.Board](ttt),
			WithExcludedMoves[game.Square](2))
		tree.SearchForNodes(300, nil)

		require.Len(t, tree.arena.edgesOf(tree.arena.node(rootIndex)), 4)
		move, _, ok := tree.BestMove()
		require.True(t, ok)
		require.NotEqual(t, game.Square(2), move)
		for _, info := range tree.BestChildren(10) {
			require.NotEqual(t, game.Square(2), info.Move)
		}
		pv := slices.Collect(tree.PV())
		require.NotEmpty(t, pv)
		require.NotEqual(t, game.Square(2), pv[0])
		requireTreeInvariants(t, tree)
	})

	t.Run("exclusion only applies to the root move", func(t *testing.T) {
		oracle := mockOracle{priors: func(p mockPosition) []float64 {
			if p.depth() == 1 {
				return []float64{0.1, 0.9}
			}
			return []float64{0.5, 0.5}
		}}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5),
			WithExcludedMoves[mockMove](1))
		tree.SearchForNodes(50, nil)

		move, _, ok := tree.BestMove()
		require.True(t, ok)
		require.Equal(t, mockMove(0), move)
		require.Len(t, tree.BestChildren(10), 1)

		pv := slices.Collect(tree.PV())
		require.GreaterOrEqual(t, len(pv), 2)
		require.Equal(t, mockMove(0), pv[0])
		require.Equal(t, mockMove(1), pv[1])
	})

	t.Run("excluding every move is an error", func(t *testing.T) {
		_, err := New(board, game.Oracle[game.Board, game.Square](ttt), game.Evaluator[game.Board](ttt),
			NewSettings(WithExcludedMoves[game.Square](2, 5, 6, 7, 8)))
		require.ErrorIs(t, err, ErrNoMoves)
	})
}

func TestDeterminism(t *testing.T) {
	ttt, err := game.NewTicTacToe(game.DefaultParams())
	require.NoError(t, err)

	search := func(settings ...Setting[game.Square]) []MoveInfo[game.Square] {
		tree := newTestTree(t, game.NewBoard(), game.Oracle[game.Board, game.Square](ttt), game.Evaluator[game.Board](ttt), settings...)
		tree.SearchForNodes(500, nil)
		return tree.BestChildren(9)
	}

	t.Run("static evaluation", func(t *testing.T) {
		require.Equal(t, search(), search())
	})

	t.Run("rollouts and noise with the same seed", func(t *testing.T) {
		settings := []Setting[game.Square]{
			WithRollout[game.Square](4, 0.5),
			WithDirichlet[game.Square](0.25, 0.3),
			WithSeed[game.Square](7),
		}
		require.Equal(t, search(settings...), search(settings...))
	})
}

func TestRootNoise(t *testing.T) {
	t.Run("keeps root priors normalized and close to the policy", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 4}, constantValue(0.5),
			WithDirichlet[mockMove](0.25, 0.3), WithSeed[mockMove](3))
		require.True(t, tree.Select())

		edges := tree.arena.edgesOf(tree.arena.node(rootIndex))
		sum := 0.0
		changed := false
		for _, e := range edges {
			sum += e.prior
			require.GreaterOrEqual(t, e.prior, 0.75*0.25-1e-12)
			if math.Abs(e.prior-0.25) > 1e-9 {
				changed = true
			}
		}
		require.InDelta(t, 1.0, sum, 1e-4)
		require.True(t, changed)
	})

	t.Run("leaves a single root move alone", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 1}, constantValue(0.5),
			WithDirichlet[mockMove](0.5, 0.3))
		require.True(t, tree.Select())
		require.Equal(t, 1.0, tree.arena.edgesOf(tree.arena.node(rootIndex))[0].prior)
	})

	t.Run("only perturbs the root", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, constantValue(0.5),
			WithDirichlet[mockMove](0.5, 0.3))
		for range 10 {
			require.True(t, tree.Select())
		}
		for i := 1; i < tree.arena.Len(); i++ {
			for _, e := range tree.arena.edgesOf(tree.arena.node(NodeIndex(i))) {
				require.Equal(t, 0.5, e.prior)
			}
		}
	})
}

func TestRolloutEvaluation(t *testing.T) {
	t.Run("plays out to the end of the game", func(t *testing.T) {
		// The game ends after three plies with the side to move lost, so the
		// root player wins.
		oracle := mockOracle{width: 2, terminal: func(p mockPosition) (game.Outcome, bool) {
			return game.Loss, p.depth() >= 3
		}}
		tree := newTestTree(t, mockPosition(""), oracle, constantValue(0.5),
			WithRollout[mockMove](10, 1))
		collector := metrics.NewCollector()
		collector.Start()
		tree.metrics = collector

		require.True(t, tree.Select())
		require.InDelta(t, 1.0, tree.arena.node(rootIndex).valueSum, 1e-12)

		metric := collector.Complete()
		require.Equal(t, 1, metric.Rollouts)
		require.Equal(t, 1, metric.FullPlayouts)
	})

	t.Run("evaluates the position where the rollout stops", func(t *testing.T) {
		tree := newTestTree(t, mockPosition(""), mockOracle{width: 2}, constantValue(0.8),
			WithRollout[mockMove](1, 1))

		require.True(t, tree.Select())
		require.InDelta(t, 0.2, tree.arena.node(rootIndex).valueSum, 1e-12)
	})
}
