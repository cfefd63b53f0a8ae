package searcher

import (
	"cmp"
	"iter"
	"slices"
)

// MoveInfo describes one root move after a search.
type MoveInfo[M comparable] struct {
	Move   M
	Visits uint64
	// WinProbability is the root side to move's estimated win probability after playing Move.
	WinProbability float64
	// VisitShare is Visits as a fraction of all root child visits.
	VisitShare float64
	Prior      float64
}

// BestMove returns the most visited root move and the mean value of the
// position it leads to. That value is from the opponent's perspective: the
// root side's win probability is 1 minus it. Before any child has been
// visited the highest prior move is returned with a neutral 0.5. ok is false
// only when the root is terminal.
func (t *Tree[P, M]) BestMove() (move M, value float64, ok bool) {
	root := t.arena.node(rootIndex)
	if !root.expanded {
		return t.bestRootMove()
	}
	best := t.bestEdge(root)
	if best < 0 {
		return move, 0, false
	}
	e := &t.arena.edgesOf(root)[best]
	return e.move, 1 - t.edgeValue(e), true
}

// bestRootMove answers from the validated root moves before the first expansion.
func (t *Tree[P, M]) bestRootMove() (move M, value float64, ok bool) {
	if len(t.rootMoves) == 0 {
		return move, 0, false
	}
	best := 0
	for i, mp := range t.rootMoves {
		if mp.Prior > t.rootMoves[best].Prior {
			best = i
		}
	}
	return t.rootMoves[best].Move, 0.5, true
}

// BestChildren returns up to k root moves ordered by visits, most visited first.
// Equal visit counts keep move generation order.
func (t *Tree[P, M]) BestChildren(k int) []MoveInfo[M] {
	root := t.arena.node(rootIndex)
	if k <= 0 || !root.expanded {
		return nil
	}
	edges := t.arena.edgesOf(root)

	var total uint64
	for i := range edges {
		total += t.edgeVisits(&edges[i])
	}

	infos := make([]MoveInfo[M], 0, len(edges))
	for i := range edges {
		e := &edges[i]
		info := MoveInfo[M]{
			Move:           e.move,
			Visits:         t.edgeVisits(e),
			WinProbability: t.edgeValue(e),
			Prior:          e.prior,
		}
		if total > 0 {
			info.VisitShare = float64(info.Visits) / float64(total)
		}
		infos = append(infos, info)
	}
	slices.SortStableFunc(infos, func(a, b MoveInfo[M]) int {
		return cmp.Compare(b.Visits, a.Visits)
	})
	return infos[:min(k, len(infos))]
}

// PV follows the most visited edge from the root until it reaches a node that
// is terminal, unexpanded or unvisited below. Every call walks the current tree.
// Excluded moves are only removed at the root, so they can appear from the
// second move on.
func (t *Tree[P, M]) PV() iter.Seq[M] {
	return func(yield func(M) bool) {
		n := t.arena.node(rootIndex)
		for n.expanded && !n.terminal {
			edges := t.arena.edgesOf(n)
			best := -1
			var bestVisits uint64
			for i := range edges {
				if v := t.edgeVisits(&edges[i]); v > bestVisits {
					best, bestVisits = i, v
				}
			}
			if best < 0 {
				return
			}
			if !yield(edges[best].move) {
				return
			}
			index, _ := edges[best].child.get()
			n = t.arena.node(index)
		}
	}
}

// Visits is the root's visit count.
func (t *Tree[P, M]) Visits() uint64 {
	return t.arena.node(rootIndex).visits
}

// MemUsage is the number of bytes used by the tree's allocated nodes and edges.
func (t *Tree[P, M]) MemUsage() uint64 {
	return t.arena.MemUsage()
}

// Position is the root position.
func (t *Tree[P, M]) Position() P {
	return t.position
}

// Terminal reports whether the root position is already decided, and its value
// for the side to move.
func (t *Tree[P, M]) Terminal() (float64, bool) {
	root := t.arena.node(rootIndex)
	return root.outcome, root.terminal
}
