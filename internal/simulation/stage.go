package simulation

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

type scoredCompetitor struct {
	id    string
	score float64
}

// StageSimulator re-ranks a lineup over one stage of a race.
type StageSimulator struct {
	// PositionBonus is added per position ahead of the back of the field.
	PositionBonus float64
	// FloorStrength is used for competitors missing from the strength table.
	FloorStrength float64
}

// Simulate scores every competitor as strength + position bonus + Gumbel noise
// and returns the lineup sorted by descending score. Equal scores keep their
// previous relative order. Draws are taken in lineup order.
func (s StageSimulator) Simulate(lineup []string, strengths Strengths, noiseScale float64, rng RandomSource) ([]string, error) {
	if noiseScale <= 0 {
		return nil, fmt.Errorf("noise scale must be positive, got %v", noiseScale)
	}
	fieldSize := len(lineup)
	scored := make([]scoredCompetitor, fieldSize)
	for i, id := range lineup {
		strength, ok := strengths.Get(id)
		if !ok {
			strength = s.FloorStrength
		}
		score := strength + float64(fieldSize-i)*s.PositionBonus + gumbel(rng, noiseScale)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, &models.ComputationError{CompetitorID: id, Value: score}
		}
		scored[i] = scoredCompetitor{id: id, score: score}
	}
	return rankByScore(scored), nil
}

// perturbPits reorders the lineup by position-derived score -i plus Gaussian
// jitter, independently of strength.
func perturbPits(lineup []string, stdDev float64, rng RandomSource) ([]string, error) {
	scored := make([]scoredCompetitor, len(lineup))
	for i, id := range lineup {
		score := -float64(i) + normal(rng, 0, stdDev)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, &models.ComputationError{CompetitorID: id, Value: score}
		}
		scored[i] = scoredCompetitor{id: id, score: score}
	}
	return rankByScore(scored), nil
}

func rankByScore(scored []scoredCompetitor) []string {
	slices.SortStableFunc(scored, func(a, b scoredCompetitor) int {
		return cmp.Compare(b.score, a.score)
	})
	order := make([]string, len(scored))
	for i, c := range scored {
		order[i] = c.id
	}
	return order
}
