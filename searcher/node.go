package searcher

// node is one visited position. valueSum is accumulated from the perspective
// of the side to move at this node.
type node struct {
	visits   uint64
	valueSum float64
	edges    edgeSpan
	expanded bool
	terminal bool
	outcome  float64 // cached value of a terminal position
}

// mean is the node's average value, 0.5 before its first visit.
func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0.5
	}
	return n.valueSum / float64(n.visits)
}

// childSlot is an edge's link to its child: empty until the move is first
// traversed, then the index of the materialized node.
type childSlot struct {
	index NodeIndex
	set   bool
}

func someChild(index NodeIndex) childSlot {
	return childSlot{index: index, set: true}
}

func (c childSlot) get() (NodeIndex, bool) {
	return c.index, c.set
}

// edge is a candidate move out of a node.
type edge[M comparable] struct {
	move  M
	prior float64
	child childSlot
}
