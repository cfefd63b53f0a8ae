package searcher

import (
	"fmt"
	"math"
	"slices"
	"unsafe"
)

// Hyperparameters for MCTS

const (
	DefaultArenaCapacity      = 1 << 16
	DefaultExploration        = 1.25
	DefaultDirichletAlpha     = 0.3
	DefaultRolloutTemperature = 0.25
	DefaultProgressInterval   = 100

	// Initial edge slab size per node, and the edge share of a memory budget.
	defaultEdgesPerNode = 8
)

// Settings configure a single search. They are fixed when the tree is built.
type Settings[M comparable] struct {
	// ArenaCapacity is the maximum number of tree nodes, root included.
	ArenaCapacity uint32
	// EdgeCapacity caps the number of edges. With 0 the edge slab grows as
	// needed and only ArenaCapacity exhausts the arena.
	EdgeCapacity uint32

	// Exploration is the PUCT weight on the prior term.
	Exploration float64
	// ExplorationBase, when positive, grows the weight with the parent's visits:
	// Exploration + ln((1 + N + base) / base).
	ExplorationBase float64

	// DirichletWeight blends root priors with Dirichlet(DirichletAlpha) noise; 0 disables it.
	DirichletWeight float64
	DirichletAlpha  float64

	// RolloutDepth > 0 replaces the direct static evaluation of a new leaf with a
	// playout of up to RolloutDepth plies sampled from priors^(1/RolloutTemperature).
	RolloutDepth       uint16
	RolloutTemperature float64

	// ExcludedMoves are dropped from the root and never searched or reported.
	ExcludedMoves []M

	Seed uint64

	// ProgressInterval is the number of simulations between progress callbacks.
	ProgressInterval uint64
}

type Setting[M comparable] func(s *Settings[M])

func DefaultSettings[M comparable]() Settings[M] {
	return Settings[M]{
		ArenaCapacity:      DefaultArenaCapacity,
		Exploration:        DefaultExploration,
		DirichletAlpha:     DefaultDirichletAlpha,
		RolloutTemperature: DefaultRolloutTemperature,
		ProgressInterval:   DefaultProgressInterval,
	}
}

// NewSettings applies options on top of the defaults.
func NewSettings[M comparable](options ...Setting[M]) Settings[M] {
	s := DefaultSettings[M]()
	for _, option := range options {
		option(&s)
	}
	return s
}

func WithArenaCapacity[M comparable](nodes uint32) Setting[M] {
	return func(s *Settings[M]) {
		s.ArenaCapacity = nodes
	}
}

func WithEdgeCapacity[M comparable](edges uint32) Setting[M] {
	return func(s *Settings[M]) {
		s.EdgeCapacity = edges
	}
}

// WithMemoryBudget sizes both arena slabs so that a full arena uses about
// bytes. The budget assumes defaultEdgesPerNode edges per node; wider trees run
// out of edges before nodes.
func WithMemoryBudget[M comparable](bytes uint64) Setting[M] {
	return func(s *Settings[M]) {
		var (
			n node
			e edge[M]
		)
		perNode := uint64(unsafe.Sizeof(n)) + defaultEdgesPerNode*uint64(unsafe.Sizeof(e))
		nodes := min(bytes/perNode, math.MaxUint32/defaultEdgesPerNode)
		s.ArenaCapacity = uint32(nodes)
		s.EdgeCapacity = uint32(nodes * defaultEdgesPerNode)
	}
}

func WithExploration[M comparable](c float64) Setting[M] {
	return func(s *Settings[M]) {
		s.Exploration = c
	}
}

func WithExplorationGrowth[M comparable](base float64) Setting[M] {
	return func(s *Settings[M]) {
		s.ExplorationBase = base
	}
}

func WithDirichlet[M comparable](weight, alpha float64) Setting[M] {
	return func(s *Settings[M]) {
		s.DirichletWeight = weight
		s.DirichletAlpha = alpha
	}
}

func WithRollout[M comparable](depth uint16, temperature float64) Setting[M] {
	return func(s *Settings[M]) {
		s.RolloutDepth = depth
		s.RolloutTemperature = temperature
	}
}

func WithExcludedMoves[M comparable](moves ...M) Setting[M] {
	return func(s *Settings[M]) {
		s.ExcludedMoves = append(slices.Clone(s.ExcludedMoves), moves...)
	}
}

func WithSeed[M comparable](seed uint64) Setting[M] {
	return func(s *Settings[M]) {
		s.Seed = seed
	}
}

func WithProgressInterval[M comparable](simulations uint64) Setting[M] {
	return func(s *Settings[M]) {
		s.ProgressInterval = simulations
	}
}

func (s Settings[M]) Validate() error {
	switch {
	case s.ArenaCapacity == 0:
		return fmt.Errorf("%w: arena capacity must be positive", ErrInvalidSettings)
	case !finite(s.Exploration) || s.Exploration < 0:
		return fmt.Errorf("%w: exploration %v must be a non-negative number", ErrInvalidSettings, s.Exploration)
	case !finite(s.ExplorationBase) || s.ExplorationBase < 0:
		return fmt.Errorf("%w: exploration base %v must be a non-negative number", ErrInvalidSettings, s.ExplorationBase)
	case !finite(s.DirichletWeight) || s.DirichletWeight < 0 || s.DirichletWeight > 1:
		return fmt.Errorf("%w: dirichlet weight %v must be within [0,1]", ErrInvalidSettings, s.DirichletWeight)
	case s.DirichletWeight > 0 && (!finite(s.DirichletAlpha) || s.DirichletAlpha <= 0):
		return fmt.Errorf("%w: dirichlet alpha %v must be positive", ErrInvalidSettings, s.DirichletAlpha)
	case math.IsNaN(s.RolloutTemperature) || s.RolloutTemperature < 0:
		return fmt.Errorf("%w: rollout temperature %v must be non-negative", ErrInvalidSettings, s.RolloutTemperature)
	case s.ProgressInterval == 0:
		return fmt.Errorf("%w: progress interval must be positive", ErrInvalidSettings)
	}
	return nil
}

// edgeLimit is the arena's edge cap, 0 for a growing edge slab.
func (s Settings[M]) edgeLimit() int {
	return int(s.EdgeCapacity)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
