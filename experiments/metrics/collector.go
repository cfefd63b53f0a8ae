package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Duration     time.Duration
	Simulations  int
	Rollouts     int
	FullPlayouts int
	Visits       uint64
	MemUsage     uint64
	StopReason   string
	Exhausted    bool
}

type MoveMetric struct {
	Step   int
	Player int // 0 moves first
	Move   string
	Score  float64
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // -1 for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start()
	AddSimulation()
	AddRollout()
	AddFullPlayout()
	SetExhausted()
	Complete() SearchMetric
}

type collector struct {
	startTime    time.Time
	simulations  atomic.Int32
	rollouts     atomic.Int32
	fullPlayouts atomic.Int32
	exhausted    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.simulations.Store(0)
	m.rollouts.Store(0)
	m.fullPlayouts.Store(0)
	m.exhausted.Store(false)
}

func (m *collector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *collector) AddRollout() {
	m.rollouts.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) SetExhausted() {
	m.exhausted.Store(true)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Duration:     time.Since(m.startTime),
		Simulations:  int(m.simulations.Load()),
		Rollouts:     int(m.rollouts.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Exhausted:    m.exhausted.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                 {}
func (m *dummyCollector) AddSimulation()         {}
func (m *dummyCollector) AddRollout()            {}
func (m *dummyCollector) AddFullPlayout()        {}
func (m *dummyCollector) SetExhausted()          {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
