package searcher

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distmv"
)

// addNoise blends the root priors with a symmetric Dirichlet sample:
// p' = (1-w)*p + w*noise. Both terms sum to 1, so p' does too.
func (t *Tree[P, M]) addNoise(edges []edge[M]) {
	alpha := make([]float64, len(edges))
	for i := range alpha {
		alpha[i] = t.settings.DirichletAlpha
	}
	noise := distmv.NewDirichlet(alpha, t.rng).Rand(nil)

	// Very small alphas can underflow every gamma draw to zero.
	sum := 0.0
	for _, x := range noise {
		sum += x
	}
	if math.IsNaN(sum) || sum <= 0 {
		log.Debug().Float64("alpha", t.settings.DirichletAlpha).Msg("dirichlet sample degenerate, root priors unchanged")
		return
	}

	w := t.settings.DirichletWeight
	for i := range edges {
		edges[i].prior = (1-w)*edges[i].prior + w*noise[i]/sum
	}
	log.Debug().Float64("weight", w).Float64("alpha", t.settings.DirichletAlpha).Int("moves", len(edges)).Msg("root noise injected")
}
