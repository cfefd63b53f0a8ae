package searcher

import "math"

type puct struct {
	numerator float64 // c * sqrt(N)
}

func newPUCT(c float64, parentVisits uint64) puct {
	return puct{numerator: c * math.Sqrt(float64(parentVisits))}
}

func (p puct) evaluate(q, prior float64, visits uint64) float64 {
	// PUCT = Q + c * P * sqrt(N) / (1 + n)
	return q + p.numerator*prior/(1+float64(visits))
}

// exploration is the prior weight used below a node with parentVisits visits.
func (t *Tree[P, M]) exploration(parentVisits uint64) float64 {
	c := t.settings.Exploration
	if base := t.settings.ExplorationBase; base > 0 {
		c += math.Log((1 + float64(parentVisits) + base) / base)
	}
	return c
}

// edgeValue is the mean value of taking e, from the perspective of the side that
// chooses it.
func (t *Tree[P, M]) edgeValue(e *edge[M]) float64 {
	index, ok := e.child.get()
	if !ok {
		return 0.5
	}
	child := t.arena.node(index)
	if child.visits == 0 {
		return 0.5
	}
	return 1 - child.mean()
}

func (t *Tree[P, M]) edgeVisits(e *edge[M]) uint64 {
	index, ok := e.child.get()
	if !ok {
		return 0
	}
	return t.arena.node(index).visits
}

// selectEdge returns the index of the child edge with the highest PUCT score.
// Ties go to the earliest edge in move generation order.
func (t *Tree[P, M]) selectEdge(n *node) int {
	edges := t.arena.edgesOf(n)
	policy := newPUCT(t.exploration(n.visits), n.visits)

	best := 0
	bestScore := math.Inf(-1)
	for i := range edges {
		e := &edges[i]
		score := policy.evaluate(t.edgeValue(e), e.prior, t.edgeVisits(e))
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// bestEdge is the most visited edge of n, falling back to the highest prior
// when nothing has been visited. It returns -1 for a node without edges.
func (t *Tree[P, M]) bestEdge(n *node) int {
	edges := t.arena.edgesOf(n)
	best := -1
	var bestVisits uint64
	for i := range edges {
		if v := t.edgeVisits(&edges[i]); v > bestVisits {
			bestVisits = v
			best = i
		}
	}
	if best >= 0 || len(edges) == 0 {
		return best
	}

	best = 0
	for i := range edges {
		if edges[i].prior > edges[best].prior {
			best = i
		}
	}
	return best
}
