package searcher

import (
	"math"
	"slices"
	"time"

	"boardmcts/experiments/metrics"
	"boardmcts/game"
)

type Option func(b *budget)

type budget struct {
	duration time.Duration
	nodes    uint64
	metrics  metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(b *budget) {
		if duration > 0 {
			b.duration = duration
		}
	}
}

func WithNodes(nodes uint64) Option {
	return func(b *budget) {
		if nodes > 0 {
			b.nodes = nodes
		}
	}
}

func WithMetrics() Option {
	return func(b *budget) {
		b.metrics = metrics.NewCollector()
	}
}

// Decision is the answer of one search.
type Decision[M comparable] struct {
	Move M
	// HasMove is false when the root was already terminal.
	HasMove bool
	// Score is the side to move's win probability.
	Score      float64
	PV         []M
	Visits     uint64
	MemUsage   uint64
	Elapsed    time.Duration
	StopReason StopReason
	// Children ranks every root move by visits.
	Children []MoveInfo[M]
}

// MCTS searches one position at a time with fixed settings and budget. Every
// Decide builds a fresh tree, so an MCTS can be reused across positions but
// not shared between goroutines.
type MCTS[P any, M comparable] struct {
	oracle    game.Oracle[P, M]
	evaluator game.Evaluator[P]
	settings  Settings[M]
	budget    budget
	progress  ProgressFunc[M]
}

func NewMCTS[P any, M comparable](oracle game.Oracle[P, M], evaluator game.Evaluator[P], settings Settings[M], options ...Option) (*MCTS[P, M], error) {
	m := &MCTS[P, M]{ // Default values
		oracle:    oracle,
		evaluator: evaluator,
		settings:  settings,
		budget: budget{
			metrics: metrics.NewDummyCollector(),
		},
	}
	for _, option := range options {
		option(&m.budget)
	}
	if m.budget.duration <= 0 && m.budget.nodes == 0 {
		return nil, ErrNoBudget
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// OnProgress registers a callback for progress snapshots during Decide.
func (m *MCTS[P, M]) OnProgress(progress ProgressFunc[M]) *MCTS[P, M] {
	m.progress = progress
	return m
}

func (m *MCTS[P, M]) Settings() Settings[M] {
	return m.settings
}

// Decide searches position and reports the best move found. A terminal
// position is answered immediately with its outcome and no move.
func (m *MCTS[P, M]) Decide(position P) (Decision[M], metrics.SearchMetric, error) {
	tree, err := New(position, m.oracle, m.evaluator, m.settings)
	if err != nil {
		return Decision[M]{}, metrics.SearchMetric{}, err
	}
	tree.metrics = m.budget.metrics

	m.budget.metrics.Start()
	result := tree.SearchWithin(m.budget.duration, m.budget.nodes, m.progress)
	metric := m.budget.metrics.Complete()

	decision := Decision[M]{
		PV:         slices.Collect(tree.PV()),
		Visits:     tree.Visits(),
		MemUsage:   tree.MemUsage(),
		Elapsed:    result.Elapsed,
		StopReason: result.StopReason,
		Children:   tree.BestChildren(math.MaxInt),
	}
	if outcome, terminal := tree.Terminal(); terminal {
		decision.Score = outcome
	} else if move, value, ok := tree.BestMove(); ok {
		decision.Move = move
		decision.HasMove = true
		decision.Score = 1 - value
	}

	metric.Visits = decision.Visits
	metric.MemUsage = decision.MemUsage
	metric.StopReason = result.StopReason.String()
	return decision, metric, nil
}
