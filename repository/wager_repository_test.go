package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"arenaapp/domain/entities"
	"arenaapp/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWagerRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	setupContestFixtures(t, ctx, testDB)
	require.NoError(t, NewContestRepository(testDB.DB).Create(ctx, testutil.CreateTestContest(1, "alice", "bob", 500)))
	repo := NewWagerRepository(testDB.DB)

	carol := testutil.CreateTestWager(1, "carol", entities.SideA, 40)
	require.NoError(t, repo.Create(ctx, carol))
	assert.NotZero(t, carol.ID)

	t.Run("one wager per bettor per contest", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestWager(1, "carol", entities.SideB, 60))
		assert.ErrorIs(t, err, entities.ErrDuplicateWager)
	})

	t.Run("lookup", func(t *testing.T) {
		saved, err := repo.GetByContestAndBettor(ctx, 1, "carol")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, entities.SideA, saved.Side)
		assert.False(t, saved.HasVoted)
		assert.Nil(t, saved.Payout)

		missing, err := repo.GetByContestAndBettor(ctx, 1, "dave")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("vote flag flips once", func(t *testing.T) {
		marked, err := repo.MarkVoted(ctx, carol.ID)
		require.NoError(t, err)
		assert.True(t, marked)

		marked, err = repo.MarkVoted(ctx, carol.ID)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("concurrent claims pay once", func(t *testing.T) {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				marked, err := repo.MarkClaimed(ctx, carol.ID, 77, testutil.TestNow)
				if err == nil && marked {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())

		saved, err := repo.GetByContestAndBettorForUpdate(ctx, 1, "carol")
		require.NoError(t, err)
		assert.True(t, saved.Claimed)
		require.NotNil(t, saved.Payout)
		assert.Equal(t, int64(77), *saved.Payout)
	})

	t.Run("placement order", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestWager(1, "dave", entities.SideB, 60)))
		wagers, err := repo.GetByContest(ctx, 1)
		require.NoError(t, err)
		require.Len(t, wagers, 2)
		assert.Equal(t, "carol", wagers[0].Bettor)
		assert.Equal(t, "dave", wagers[1].Bettor)
	})
}
