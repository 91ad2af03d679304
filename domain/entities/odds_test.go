package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPricedContest(t *testing.T, stakeA, stakeB int64, wagersA, wagersB []int64) *Contest {
	t.Helper()
	contest, err := NewContest(1, "alice", "bob", "Tabs or spaces", time.Hour, time.Unix(0, 0))
	require.NoError(t, err)
	require.NoError(t, contest.AddStake(SideA, stakeA))
	if stakeB > 0 {
		require.NoError(t, contest.AddStake(SideB, stakeB))
	}
	for _, amount := range wagersA {
		require.NoError(t, contest.AddWager(SideA, amount))
	}
	for _, amount := range wagersB {
		require.NoError(t, contest.AddWager(SideB, amount))
	}
	return contest
}

func TestComputeOdds(t *testing.T) {
	contest := newPricedContest(t, 1000, 1000, []int64{100}, []int64{200})

	odds, err := ComputeOdds(contest, 500)
	require.NoError(t, err)

	assert.Equal(t, int64(2300), odds.TotalPool)
	assert.Equal(t, int64(115), odds.Fee)
	assert.Equal(t, int64(2185), odds.PrizePool)

	a := odds.For(SideA)
	assert.Equal(t, int64(1100), a.Pool)
	require.NotNil(t, a.Multiplier)
	assert.Equal(t, "2.09", a.Multiplier.StringFixed(2))
	assert.Equal(t, "1.99", a.NetMultiplier.StringFixed(2))

	b := odds.For(SideB)
	assert.Equal(t, int64(1200), b.Pool)
	assert.Equal(t, "1.92", b.Multiplier.StringFixed(2))
	assert.Equal(t, "1.82", b.NetMultiplier.StringFixed(2))
}

func TestComputeOdds_EmptySideHasNoPrice(t *testing.T) {
	contest := newPricedContest(t, 500, 0, nil, nil)

	odds, err := ComputeOdds(contest, 500)
	require.NoError(t, err)

	assert.Equal(t, "1.00", odds.For(SideA).Multiplier.StringFixed(2))
	assert.Nil(t, odds.For(SideB).Multiplier)
	assert.Nil(t, odds.For(SideB).NetMultiplier)
}

func TestComputeOdds_ResolvedQuotesChargedFee(t *testing.T) {
	contest := newPricedContest(t, 1000, 1000, nil, nil)
	contest.Resolve(SideB, 7, 1993, time.Unix(3600, 0))

	odds, err := ComputeOdds(contest, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(7), odds.Fee)
	assert.Equal(t, int64(1993), odds.PrizePool)
}
