package searcher

import (
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

type StopReason int

const (
	StopMovetime StopReason = iota
	StopNodes
	StopExhausted
	StopTerminal
)

func (r StopReason) String() string {
	switch r {
	case StopMovetime:
		return "movetime"
	case StopNodes:
		return "nodes"
	case StopExhausted:
		return "exhausted"
	case StopTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Progress is a snapshot of a running search.
type Progress[M comparable] struct {
	Visits   uint64
	Elapsed  time.Duration
	BestMove M
	// Score is the root side to move's win probability after BestMove.
	Score    float64
	PV       []M
	MemUsage uint64
}

type ProgressFunc[M comparable] func(Progress[M])

// Result summarizes one call to SearchForTime or SearchForNodes.
type Result struct {
	Simulations uint64
	Elapsed     time.Duration
	StopReason  StopReason
}

// SearchForTime runs simulations until d has elapsed or the arena is full.
// progress, if not nil, is called every ProgressInterval simulations and once
// more when the search stops. The deadline is only checked between simulations.
// A d of zero or less runs no simulation.
func (t *Tree[P, M]) SearchForTime(d time.Duration, progress ProgressFunc[M]) Result {
	return t.search(d, 0, StopMovetime, progress)
}

// SearchForNodes runs n simulations, fewer if the arena fills up first.
func (t *Tree[P, M]) SearchForNodes(n uint64, progress ProgressFunc[M]) Result {
	return t.search(0, n, StopNodes, progress)
}

// SearchWithin stops at whichever comes first of d elapsing and n simulations.
// A zero d or n leaves that budget unbounded. With neither set, nothing is
// searched and the result stops with StopNodes.
func (t *Tree[P, M]) SearchWithin(d time.Duration, n uint64, progress ProgressFunc[M]) Result {
	return t.search(d, n, StopNodes, progress)
}

// search runs the simulation loop; spent is the stop reason when there is no
// budget at all.
func (t *Tree[P, M]) search(d time.Duration, n uint64, spent StopReason, progress ProgressFunc[M]) Result {
	start := time.Now()
	deadline := start.Add(d)
	result := Result{}

	_, terminal := t.Terminal()
	switch {
	case terminal:
		result.StopReason = StopTerminal
	case d <= 0 && n == 0:
		result.StopReason = spent
	default:
		for {
			if n > 0 && result.Simulations >= n {
				result.StopReason = StopNodes
				break
			}
			if d > 0 && !time.Now().Before(deadline) {
				result.StopReason = StopMovetime
				break
			}
			if !t.Select() {
				result.StopReason = StopExhausted
				t.metrics.SetExhausted()
				break
			}
			result.Simulations++
			t.metrics.AddSimulation()

			if progress != nil && result.Simulations%t.settings.ProgressInterval == 0 {
				progress(t.Progress(time.Since(start)))
			}
		}
	}
	result.Elapsed = time.Since(start)

	if progress != nil {
		progress(t.Progress(result.Elapsed))
	}
	if result.StopReason == StopExhausted {
		log.Warn().
			Str("stop", result.StopReason.String()).
			Uint64("visits", t.Visits()).
			Uint64("mem", t.MemUsage()).
			Msg("search stopped early, arena exhausted")
	}
	log.Debug().
		Str("stop", result.StopReason.String()).
		Uint64("simulations", result.Simulations).
		Dur("elapsed", result.Elapsed).
		Msg("search finished")
	return result
}

// Progress snapshots the current statistics.
func (t *Tree[P, M]) Progress(elapsed time.Duration) Progress[M] {
	p := Progress[M]{
		Visits:   t.Visits(),
		Elapsed:  elapsed,
		PV:       slices.Collect(t.PV()),
		MemUsage: t.MemUsage(),
	}
	if move, value, ok := t.BestMove(); ok {
		p.BestMove = move
		p.Score = 1 - value
	}
	return p
}

const maxMoveTime = 40 * time.Second

// AllotTime splits the remaining clock for the next move: more conservatively
// during the first four plies, never more than 40 seconds.
func AllotTime(timeLeft, increment time.Duration, pliesPlayed int) time.Duration {
	var d time.Duration
	if pliesPlayed < 4 {
		d = timeLeft/80 + increment/6
	} else {
		d = timeLeft/40 + increment/3
	}
	return max(min(d, maxMoveTime), 0)
}
