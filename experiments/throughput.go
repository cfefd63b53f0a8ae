package experiments

import (
	"time"

	"boardmcts/experiments/metrics"
	"boardmcts/game"

	"github.com/rs/zerolog/log"
)

// Throughput is the search speed of one agent config on one position.
type Throughput struct {
	Agent             int
	Simulations       int
	Duration          time.Duration
	SimulationsPerSec float64
	MemUsage          uint64
	StopReason        string
}

// ArenaConfigs compare arena sizes at a fixed time budget; the smallest ones
// are expected to stop on exhaustion.
func ArenaConfigs() []metrics.AgentConfig {
	const Duration = 50 * time.Millisecond
	return []metrics.AgentConfig{
		{ID: 1, Duration: Duration, ArenaCapacity: 64},
		{ID: 2, Duration: Duration, ArenaCapacity: 1024},
		{ID: 3, Duration: Duration, ArenaCapacity: 1 << 14},
		{ID: 4, Duration: Duration, ArenaCapacity: 1 << 20},
		{ID: 5, Duration: Duration, ArenaCapacity: 1 << 20, RolloutDepth: 9, RolloutTemperature: 0.25},
	}
}

// RunThroughputExperiment searches position once per config and reports how
// many simulations each managed.
func RunThroughputExperiment(configs []metrics.AgentConfig, position game.Board) ([]Throughput, error) {
	ttt, err := game.NewTicTacToe(game.DefaultParams())
	if err != nil {
		return nil, err
	}

	log.Info().Msg("starting throughput experiment...")

	results := make([]Throughput, 0, len(configs))
	for _, config := range configs {
		mcts, err := createMCTS(ttt, config)
		if err != nil {
			return nil, err
		}
		decision, metric, err := mcts.Decide(position)
		if err != nil {
			return nil, err
		}

		t := Throughput{
			Agent:       config.ID,
			Simulations: metric.Simulations,
			Duration:    decision.Elapsed,
			MemUsage:    decision.MemUsage,
			StopReason:  decision.StopReason.String(),
		}
		if decision.Elapsed > 0 {
			t.SimulationsPerSec = float64(metric.Simulations) / decision.Elapsed.Seconds()
		}
		results = append(results, t)

		log.Info().Msgf("agent %d: %d simulations in %v (%.0f/s), stop=%s", t.Agent, t.Simulations, t.Duration, t.SimulationsPerSec, t.StopReason)
	}

	log.Info().Msg("completed throughput experiment")
	return results, nil
}
