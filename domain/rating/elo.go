package rating

import (
	"math"
)

const (
	// DefaultKFactor is the maximum rating swing for a single contest
	DefaultKFactor = 32.0

	// DefaultFloor is the lowest rating a participant can drop to
	DefaultFloor = 100
)

// Calculator applies Elo updates after a contest resolves
type Calculator struct {
	KFactor float64
	Floor   int
}

// NewCalculator returns a calculator with K = 32 and a floor of 100
func NewCalculator() Calculator {
	return Calculator{
		KFactor: DefaultKFactor,
		Floor:   DefaultFloor,
	}
}

// ExpectedScore returns the probability that a player rated ratingA beats one rated ratingB
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// Update returns the new ratings of A and B. Scores are 1 for the winner and 0 for the loser;
// results are floored at c.Floor and then truncated toward zero.
func (c Calculator) Update(ratingA, ratingB int, aWon bool) (int, int) {
	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := 1.0 - expectedA

	scoreA, scoreB := 0.0, 1.0
	if aWon {
		scoreA, scoreB = 1.0, 0.0
	}

	newA := float64(ratingA) + c.KFactor*(scoreA-expectedA)
	newB := float64(ratingB) + c.KFactor*(scoreB-expectedB)

	return c.clamp(newA), c.clamp(newB)
}

func (c Calculator) clamp(r float64) int {
	return int(math.Max(r, float64(c.Floor)))
}
