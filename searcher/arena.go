package searcher

import (
	"math"
	"slices"
	"unsafe"
)

// NodeIndex addresses a node inside its Arena.
type NodeIndex uint32

// The root is always the first node allocated.
const rootIndex NodeIndex = 0

// edgeSpan is a contiguous run of edges in the arena's edge slab.
type edgeSpan struct {
	start uint32
	count uint32
}

// Arena is a bump allocator for nodes and their edge lists. The node slab is
// allocated up front and never grows, so node pointers stay valid for the
// arena's lifetime; its capacity is what exhausts the arena. The edge slab
// grows with the tree unless an edge limit is set, so edge pointers are only
// valid until the next allocation. Nothing is ever freed: once full, every
// further allocation fails. An Arena is owned by a single tree and is not safe
// for concurrent use.
type Arena[M comparable] struct {
	nodes     []node
	edges     []edge[M]
	edgeLimit int
}

// NewArena reserves nodeCapacity nodes. A positive edgeLimit caps the edge
// slab as well; otherwise it starts at defaultEdgesPerNode per node and grows.
func NewArena[M comparable](nodeCapacity, edgeLimit int) *Arena[M] {
	reserve := edgeLimit
	if edgeLimit <= 0 {
		edgeLimit = 0
		reserve = min(nodeCapacity*defaultEdgesPerNode, math.MaxUint32)
	}
	return &Arena[M]{
		nodes:     make([]node, 0, nodeCapacity),
		edges:     make([]edge[M], 0, reserve),
		edgeLimit: edgeLimit,
	}
}

// Allocate returns a fresh zeroed node, or false once the arena is full.
func (a *Arena[M]) Allocate() (NodeIndex, bool) {
	if len(a.nodes) == cap(a.nodes) {
		return 0, false
	}
	a.nodes = append(a.nodes, node{})
	return NodeIndex(len(a.nodes) - 1), true
}

// fits reports whether nodes more nodes and edges more edges can be allocated.
func (a *Arena[M]) fits(nodes, edges int) bool {
	if cap(a.nodes)-len(a.nodes) < nodes {
		return false
	}
	if a.edgeLimit > 0 {
		return a.edgeLimit-len(a.edges) >= edges
	}
	return uint64(len(a.edges))+uint64(edges) <= math.MaxUint32
}

func (a *Arena[M]) allocateEdges(count int) (edgeSpan, bool) {
	if !a.fits(0, count) {
		return edgeSpan{}, false
	}
	start := len(a.edges)
	a.edges = slices.Grow(a.edges, count)[:start+count]
	clear(a.edges[start:])
	return edgeSpan{start: uint32(start), count: uint32(count)}, true
}

func (a *Arena[M]) node(i NodeIndex) *node {
	return &a.nodes[i]
}

func (a *Arena[M]) edgesOf(n *node) []edge[M] {
	end := n.edges.start + n.edges.count
	return a.edges[n.edges.start:end:end]
}

// Len is the number of allocated nodes.
func (a *Arena[M]) Len() int {
	return len(a.nodes)
}

func (a *Arena[M]) Capacity() int {
	return cap(a.nodes)
}

// MemUsage is the number of bytes taken by allocated nodes and edges.
func (a *Arena[M]) MemUsage() uint64 {
	var (
		n node
		e edge[M]
	)
	return uint64(len(a.nodes))*uint64(unsafe.Sizeof(n)) + uint64(len(a.edges))*uint64(unsafe.Sizeof(e))
}
