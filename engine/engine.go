package engine

import "boardmcts/experiments/metrics"

const MaxMoves = 10000

// Draw is the winner reported for a drawn or unfinished game.
const Draw = -1

type Engine interface {
	// Run plays a game till it is decided or a max number of moves is reached.
	// Players are numbered 0 and 1 in seat order.
	Run() (winner int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
