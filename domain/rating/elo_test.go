package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1000, 1000), 1e-9)
	assert.InDelta(t, 0.909, ExpectedScore(1400, 1000), 0.001)
	assert.InDelta(t, 1.0, ExpectedScore(1200, 1000)+ExpectedScore(1000, 1200), 1e-9)
}

func TestCalculator_Update(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name    string
		ratingA int
		ratingB int
		aWon    bool
		wantA   int
		wantB   int
	}{
		{"equal ratings, A wins", 1000, 1000, true, 1016, 984},
		{"equal ratings, B wins", 1000, 1000, false, 984, 1016},
		{"favourite wins", 1400, 1000, true, 1402, 997},
		{"upset", 1000, 1400, true, 1029, 1370},
		{"heavy favourite barely moves", 1200, 105, true, 1200, 104},
		{"floor clamps loser", 110, 110, false, 100, 126},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := calc.Update(tt.ratingA, tt.ratingB, tt.aWon)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
			assert.GreaterOrEqual(t, a, DefaultFloor)
			assert.GreaterOrEqual(t, b, DefaultFloor)
		})
	}
}

func TestCalculator_ChangeFavoursWinner(t *testing.T) {
	calc := NewCalculator()
	for _, pair := range [][2]int{{800, 1600}, {1000, 1000}, {1500, 900}} {
		a, b := calc.Update(pair[0], pair[1], true)
		assert.GreaterOrEqual(t, a, pair[0], "winner should not lose rating")
		assert.LessOrEqual(t, b, pair[1], "loser should not gain rating")

		sumBefore := pair[0] + pair[1]
		assert.InDelta(t, sumBefore, a+b, 2, "update is zero-sum up to truncation")
	}
}

func TestCalculator_Floor(t *testing.T) {
	calc := NewCalculator()
	_, b := calc.Update(100, 100, true)
	assert.Equal(t, DefaultFloor, b)
}
