package game

import "fmt"

const (
	NumValueFeatures  = 5
	NumPolicyFeatures = 5
)

// Params holds the coefficients of the linear value and policy models. They are
// versioned data handed to NewTicTacToe, never package state.
type Params struct {
	Version string    `yaml:"version"`
	Value   []float64 `yaml:"value"`
	Policy  []float64 `yaml:"policy"`
}

// DefaultParams returns the hand-tuned coefficient set.
func DefaultParams() Params {
	return Params{
		Version: "ttt-linear-1",
		// bias, own open twos, their open twos, own centre, their centre
		Value: []float64{0.0, 2.0, -1.2, 0.35, -0.35},
		// centre, corner, edge, completes own line, blocks their line
		Policy: []float64{0.8, 0.4, 0.0, 4.0, 2.5},
	}
}

func (p Params) Validate() error {
	if len(p.Value) != NumValueFeatures {
		return fmt.Errorf("params %s: expected %d value coefficients, got %d", p.Version, NumValueFeatures, len(p.Value))
	}
	if len(p.Policy) != NumPolicyFeatures {
		return fmt.Errorf("params %s: expected %d policy coefficients, got %d", p.Version, NumPolicyFeatures, len(p.Policy))
	}
	return nil
}
