package searcher

import (
	"fmt"
	"math"

	"boardmcts/experiments/metrics"
	"boardmcts/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Priors may be off by this much before they are rejected. Accepted priors are
// then normalized exactly.
const priorTolerance = 1e-3

// Tree is a single-owner MCTS tree over one root position. Every node lives in
// the tree's Arena and is addressed by index; the selection path of the
// running simulation is kept in path instead of parent links.
type Tree[P any, M comparable] struct {
	arena     *Arena[M]
	position  P
	oracle    game.Oracle[P, M]
	evaluator game.Evaluator[P]
	settings  Settings[M]
	excluded  map[M]struct{}
	rng       *rand.Rand
	metrics   metrics.Collector

	rootMoves []game.MovePrior[M] // validated root moves, consumed by the first Select
	path      []NodeIndex
}

// New allocates the root of a search over position. The root is checked but
// not expanded until the first call to Select.
func New[P any, M comparable](position P, oracle game.Oracle[P, M], evaluator game.Evaluator[P], settings Settings[M]) (*Tree[P, M], error) {
	if oracle == nil || evaluator == nil {
		return nil, fmt.Errorf("%w: oracle and evaluator are required", ErrInvalidSettings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	t := &Tree[P, M]{
		arena:     NewArena[M](int(settings.ArenaCapacity), settings.edgeLimit()),
		position:  position,
		oracle:    oracle,
		evaluator: evaluator,
		settings:  settings,
		excluded:  make(map[M]struct{}, len(settings.ExcludedMoves)),
		rng:       rand.New(rand.NewSource(settings.Seed)),
		metrics:   metrics.NewDummyCollector(),
		path:      make([]NodeIndex, 0, 64),
	}
	for _, move := range settings.ExcludedMoves {
		t.excluded[move] = struct{}{}
	}

	index, ok := t.arena.Allocate()
	if !ok || index != rootIndex {
		panic("root must be the first node of a fresh arena")
	}

	if outcome, over := oracle.TerminalOutcome(position); over {
		root := t.arena.node(rootIndex)
		root.terminal = true
		root.expanded = true
		root.outcome = outcome.Value()
		return t, nil
	}

	moves := oracle.LegalMovesWithPriors(position)
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: non-terminal root has no legal moves", ErrContractViolation)
	}
	if err := checkPriors(moves); err != nil {
		return nil, err
	}
	if t.rootMoves = t.searchable(moves); len(t.rootMoves) == 0 {
		return nil, fmt.Errorf("%w: all %d legal moves are excluded", ErrNoMoves, len(moves))
	}
	return t, nil
}

// searchable drops excluded moves and renormalizes the remaining priors.
func (t *Tree[P, M]) searchable(moves []game.MovePrior[M]) []game.MovePrior[M] {
	kept := make([]game.MovePrior[M], 0, len(moves))
	for _, mp := range moves {
		if _, ok := t.excluded[mp.Move]; !ok {
			kept = append(kept, mp)
		}
	}
	if dropped := len(moves) - len(kept); dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", len(kept)).Msg("excluded root moves")
	}

	sum := 0.0
	for _, mp := range kept {
		sum += mp.Prior
	}
	for i := range kept {
		if sum > 0 {
			kept[i].Prior /= sum
		} else {
			kept[i].Prior = 1 / float64(len(kept))
		}
	}
	return kept
}

// Select runs one simulation: it walks down from the root by PUCT, expands
// the first unmaterialized edge it meets, evaluates the new leaf and
// backpropagates the value. It returns false, leaving the tree unchanged, when
// the arena cannot hold the new node and its edges.
func (t *Tree[P, M]) Select() bool {
	t.path = append(t.path[:0], rootIndex)
	root := t.arena.node(rootIndex)

	switch {
	case root.terminal:
		t.backpropagate(root.outcome)
		return true
	case !root.expanded:
		if !t.expandRoot() {
			return false
		}
		t.backpropagate(t.evaluate(t.position))
		return true
	}

	position := t.position
	current := root
	for {
		i := t.selectEdge(current)
		e := &t.arena.edgesOf(current)[i]
		position = t.oracle.Apply(position, e.move)

		index, ok := e.child.get()
		if !ok {
			if index, ok = t.materialize(current, i, position); !ok {
				return false
			}
			t.path = append(t.path, index)
			t.backpropagate(t.leafValue(index, position))
			return true
		}

		t.path = append(t.path, index)
		current = t.arena.node(index)
		if current.terminal {
			t.backpropagate(current.outcome)
			return true
		}
	}
}

func (t *Tree[P, M]) expandRoot() bool {
	span, ok := t.arena.allocateEdges(len(t.rootMoves))
	if !ok {
		return false
	}
	root := t.arena.node(rootIndex)
	root.edges = span
	root.expanded = true

	edges := t.arena.edgesOf(root)
	for i, mp := range t.rootMoves {
		edges[i] = edge[M]{move: mp.Move, prior: mp.Prior}
	}
	if t.settings.DirichletWeight > 0 && len(edges) > 1 {
		t.addNoise(edges)
	}
	t.rootMoves = nil
	return true
}

// materialize creates the child reached through the i-th edge of parent. The
// node and its edge list are allocated together or not at all.
func (t *Tree[P, M]) materialize(parent *node, i int, position P) (NodeIndex, bool) {
	if outcome, over := t.oracle.TerminalOutcome(position); over {
		index, ok := t.arena.Allocate()
		if !ok {
			return 0, false
		}
		n := t.arena.node(index)
		n.terminal = true
		n.expanded = true
		n.outcome = outcome.Value()
		t.arena.edgesOf(parent)[i].child = someChild(index)
		return index, true
	}

	moves := t.oracle.LegalMovesWithPriors(position)
	if len(moves) == 0 {
		panic(fmt.Errorf("%w: non-terminal position has no legal moves", ErrContractViolation))
	}
	if err := checkPriors(moves); err != nil {
		panic(fmt.Errorf("%w: %w", ErrContractViolation, err))
	}
	if !t.arena.fits(1, len(moves)) {
		return 0, false
	}

	index, _ := t.arena.Allocate()
	span, _ := t.arena.allocateEdges(len(moves))
	n := t.arena.node(index)
	n.edges = span
	n.expanded = true

	sum := 0.0
	for _, mp := range moves {
		sum += mp.Prior
	}
	edges := t.arena.edgesOf(n)
	for j, mp := range moves {
		edges[j] = edge[M]{move: mp.Move, prior: mp.Prior / sum}
	}
	// The edge slab may have moved.
	t.arena.edgesOf(parent)[i].child = someChild(index)
	return index, true
}

func (t *Tree[P, M]) leafValue(index NodeIndex, position P) float64 {
	if n := t.arena.node(index); n.terminal {
		return n.outcome
	}
	return t.evaluate(position)
}

// evaluate estimates a non-terminal position for its side to move.
func (t *Tree[P, M]) evaluate(position P) float64 {
	if t.settings.RolloutDepth > 0 {
		return t.rollout(position)
	}
	return t.staticValue(position)
}

func (t *Tree[P, M]) staticValue(position P) float64 {
	v := t.evaluator.StaticValue(position)
	if math.IsNaN(v) || v < 0 || v > 1 {
		panic(fmt.Errorf("%w: static value %v outside [0,1]", ErrContractViolation, v))
	}
	return v
}

// backpropagate adds v to the leaf at the end of the path and its flipped value
// to each ancestor in turn.
func (t *Tree[P, M]) backpropagate(v float64) {
	for i := len(t.path) - 1; i >= 0; i-- {
		n := t.arena.node(t.path[i])
		n.visits++
		n.valueSum += v
		v = 1 - v
	}
}

func checkPriors[M comparable](moves []game.MovePrior[M]) error {
	sum := 0.0
	for _, mp := range moves {
		if math.IsNaN(mp.Prior) || mp.Prior < 0 {
			return fmt.Errorf("%w: prior %v of move %v", ErrInvalidPriors, mp.Prior, mp.Move)
		}
		sum += mp.Prior
	}
	if math.Abs(sum-1) > priorTolerance {
		return fmt.Errorf("%w: priors sum to %v", ErrInvalidPriors, sum)
	}
	return nil
}
