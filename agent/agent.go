package agent

import (
	"boardmcts/experiments/metrics"
	"boardmcts/searcher"
)

type Agent[P any, M comparable] interface {
	// FindMove searches position and returns the chosen move with the search's
	// decision record and metrics (if collected).
	FindMove(position P) (M, searcher.Decision[M], metrics.SearchMetric, error)
}
