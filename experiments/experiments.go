package experiments

import (
	"fmt"

	"boardmcts/agent"
	"boardmcts/engine"
	"boardmcts/experiments/metrics"
	"boardmcts/game"
	"boardmcts/searcher"

	"github.com/rs/zerolog/log"
)

// Result holds every record of an experiment run.
type Result struct {
	Name        string
	Dir         string
	Agents      []metrics.AgentConfig
	MatchUps    [][2]int
	GameRecords []metrics.GameRecord
	MoveRecords []metrics.MoveRecord
}

// Run plays config.Games games per match up, alternating the starting agent,
// and stores agent configs, game records and move records as CSV files.
func Run(config Config) (Result, error) {
	if err := config.Validate(); err != nil {
		return Result{}, err
	}
	result, err := play(config)
	if err != nil {
		return result, err
	}

	// Store experiment metadata
	writer, err := metrics.NewWriter(config.OutputDir, config.Name)
	if err != nil {
		return result, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	result.Dir = writer.Dir()

	if err = writer.WriteAgentConfigs(config.Agents); err != nil {
		return result, fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	// Store experiment results
	if err = writer.WriteGameRecords(result.GameRecords); err != nil {
		return result, fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err = writer.WriteMoveRecords(result.MoveRecords); err != nil {
		return result, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return result, nil
}

func play(config Config) (Result, error) {
	params := game.DefaultParams()
	if config.Params != nil {
		params = *config.Params
	}
	ttt, err := game.NewTicTacToe(params)
	if err != nil {
		return Result{}, err
	}
	start := game.NewBoard()
	if config.Position != "" {
		if start, err = game.ParseBoard(config.Position); err != nil {
			return Result{}, err
		}
	}

	result := Result{Name: config.Name, Agents: config.Agents, MatchUps: config.MatchUps}
	count := 0

	log.Info().Msgf("starting %s experiment...", config.Name)

	for mi, matchUp := range config.MatchUps {
		config1 := config.agent(matchUp[0])
		config2 := config.agent(matchUp[1])

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(config.MatchUps), config1, config2)

		for i := 0; i < config.Games; i++ {
			log.Info().Msgf("starting matchup %d of %d game %d of %d...", mi+1, len(config.MatchUps), i+1, config.Games)

			winner, gameMetric, moveMetrics, err := runGame(ttt, start, config1, config2, i%2)
			if err != nil {
				return result, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			count++
			result.GameRecords = append(result.GameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				result.MoveRecords = append(result.MoveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %d", mi+1, len(config.MatchUps), i+1, winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(config.MatchUps))
	}

	log.Info().Msgf("completed %s experiment", config.Name)
	return result, nil
}

// runGame executes a single game between two agents and returns the winner's seat.
func runGame(ttt *game.TicTacToe, start game.Board, config1, config2 metrics.AgentConfig, startingPlayer int) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	agent1, err := createAgent(ttt, config1)
	if err != nil {
		return engine.Draw, metrics.GameMetric{}, nil, err
	}
	agent2, err := createAgent(ttt, config2)
	if err != nil {
		return engine.Draw, metrics.GameMetric{}, nil, err
	}
	e := engine.LocalEngine(ttt, start, []agent.Agent[game.Board, game.Square]{agent1, agent2}, startingPlayer)
	return e.Run()
}

func createAgent(ttt *game.TicTacToe, config metrics.AgentConfig) (agent.Agent[game.Board, game.Square], error) {
	mcts, err := createMCTS(ttt, config)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", config.ID, err)
	}
	if config.Temperature > 0 {
		return agent.NewTrainingAgent(mcts, config.Temperature, config.Seed), nil
	}
	return agent.NewEvaluationAgent(mcts), nil
}

func createMCTS(ttt *game.TicTacToe, config metrics.AgentConfig) (*searcher.MCTS[game.Board, game.Square], error) {
	settings := []searcher.Setting[game.Square]{searcher.WithSeed[game.Square](config.Seed)}
	if config.ArenaCapacity > 0 {
		settings = append(settings, searcher.WithArenaCapacity[game.Square](config.ArenaCapacity))
	}
	if config.Exploration > 0 {
		settings = append(settings, searcher.WithExploration[game.Square](config.Exploration))
	}
	if config.ExplorationBase > 0 {
		settings = append(settings, searcher.WithExplorationGrowth[game.Square](config.ExplorationBase))
	}
	if config.DirichletWeight > 0 {
		alpha := config.DirichletAlpha
		if alpha == 0 {
			alpha = searcher.DefaultDirichletAlpha
		}
		settings = append(settings, searcher.WithDirichlet[game.Square](config.DirichletWeight, alpha))
	}
	if config.RolloutDepth > 0 {
		settings = append(settings, searcher.WithRollout[game.Square](config.RolloutDepth, config.RolloutTemperature))
	}

	options := []searcher.Option{searcher.WithMetrics()}
	if config.Nodes > 0 {
		options = append(options, searcher.WithNodes(config.Nodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	return searcher.NewMCTS[game.Board, game.Square](ttt, ttt, searcher.NewSettings(settings...), options...)
}
