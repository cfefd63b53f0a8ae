package engine

import (
	"fmt"
	"time"

	"boardmcts/agent"
	"boardmcts/experiments/metrics"
	"boardmcts/game"

	"github.com/rs/zerolog/log"
)

// Local plays two agents against each other in process.
type Local[P any, M comparable] struct {
	oracle         game.Oracle[P, M]
	position       P
	agents         [2]agent.Agent[P, M]
	startingPlayer int
	maxMoves       int
}

// LocalEngine returns a game from position where agents[startingPlayer] moves first.
func LocalEngine[P any, M comparable](oracle game.Oracle[P, M], position P, agents []agent.Agent[P, M], startingPlayer int) *Local[P, M] {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}
	if startingPlayer != 0 && startingPlayer != 1 {
		panic("starting player must be 0 or 1")
	}
	return &Local[P, M]{
		oracle:         oracle,
		position:       position,
		agents:         [2]agent.Agent[P, M]{agents[0], agents[1]},
		startingPlayer: startingPlayer,
		maxMoves:       MaxMoves,
	}
}

// Position is the current game position.
func (e *Local[P, M]) Position() P {
	return e.position
}

// Run executes the entire game loop until the game is decided.
func (e *Local[P, M]) Run() (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.startingPlayer,
		Winner:         Draw,
		StartTime:      time.Now(),
	}
	log.Info().Msgf("player %d is starting", e.startingPlayer)

	player := e.startingPlayer
	var moveMetrics []metrics.MoveMetric
	for step := 1; ; step++ {
		if outcome, over := e.oracle.TerminalOutcome(e.position); over {
			gameMetric.Winner = winner(outcome, player)
			break
		}
		if step > e.maxMoves {
			log.Warn().Msgf("stopped after %d moves without a result", e.maxMoves)
			break
		}

		move, decision, searchMetric, err := e.agents[player].FindMove(e.position)
		if err != nil {
			return Draw, gameMetric, moveMetrics, fmt.Errorf("player %d failed to find a move at step %d: %w", player, step, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         fmt.Sprint(move),
			Score:        decision.Score,
			SearchMetric: searchMetric,
		})
		log.Debug().Msgf("step %d: player %d plays %v (score %.3f, visits %d, stop %s)",
			step, player, move, decision.Score, decision.Visits, decision.StopReason)

		e.position = e.oracle.Apply(e.position, move)
		player = 1 - player
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	return gameMetric.Winner, gameMetric, moveMetrics, nil
}

// winner converts an outcome for the player to move into a seat number.
func winner(outcome game.Outcome, toMove int) int {
	switch outcome {
	case game.Win:
		return toMove
	case game.Loss:
		return 1 - toMove
	default:
		return Draw
	}
}
