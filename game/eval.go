package game

import "math"

// valueFeatures describes b from the side to move's perspective.
func valueFeatures(b Board) [NumValueFeatures]float64 {
	us, them := b.toMove, b.toMove.Opponent()
	var f [NumValueFeatures]float64
	f[0] = 1
	f[1] = float64(openTwos(b, us))
	f[2] = float64(openTwos(b, them))
	if b.cells[4] == us {
		f[3] = 1
	}
	if b.cells[4] == them {
		f[4] = 1
	}
	return f
}

// policyFeatures describes marking sq for the side to move.
func policyFeatures(b Board, sq Square) [NumPolicyFeatures]float64 {
	us, them := b.toMove, b.toMove.Opponent()
	var f [NumPolicyFeatures]float64
	switch sq {
	case 4:
		f[0] = 1
	case 0, 2, 6, 8:
		f[1] = 1
	default:
		f[2] = 1
	}
	if completesLine(b, sq, us) {
		f[3] = 1
	}
	if completesLine(b, sq, them) {
		f[4] = 1
	}
	return f
}

// openTwos counts lines holding two of m's marks and one empty square.
func openTwos(b Board, m Mark) int {
	count := 0
	for _, line := range lines {
		own, empty := 0, 0
		for _, sq := range line {
			switch b.cells[sq] {
			case m:
				own++
			case Empty:
				empty++
			}
		}
		if own == 2 && empty == 1 {
			count++
		}
	}
	return count
}

func completesLine(b Board, sq Square, m Mark) bool {
	for _, line := range lines {
		own, hit := 0, false
		for _, other := range line {
			if other == sq {
				hit = true
			} else if b.cells[other] == m {
				own++
			}
		}
		if hit && own == 2 {
			return true
		}
	}
	return false
}

func dot(coefficients []float64, features []float64) float64 {
	sum := 0.0
	for i, c := range coefficients {
		sum += c * features[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softmax normalizes scores in place into a probability distribution.
func softmax(scores []float64) {
	if len(scores) == 0 {
		return
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		maxScore = max(maxScore, s)
	}
	sum := 0.0
	for i, s := range scores {
		scores[i] = math.Exp(s - maxScore)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
}
