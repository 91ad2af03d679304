package repository

import (
	"context"
	"testing"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupContestFixtures(t *testing.T, ctx context.Context, testDB *testutil.TestDatabase) {
	t.Helper()
	require.NoError(t, NewArenaRepository(testDB.DB).Create(ctx, testutil.CreateTestArena()))
	participants := NewParticipantRepository(testDB.DB)
	for _, identity := range []string{"alice", "bob"} {
		require.NoError(t, participants.Create(ctx, testutil.CreateTestParticipant(identity)))
	}
}

func TestContestRepository_RoundTrip(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	setupContestFixtures(t, ctx, testDB)
	repo := NewContestRepository(testDB.DB)

	contest := testutil.CreateTestContest(1, "alice", "bob", 1000)
	require.NoError(t, repo.Create(ctx, contest))

	saved, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, entities.ContestStatusProposed, saved.Status)
	assert.Equal(t, time.Hour, saved.VotingWindow)
	assert.Equal(t, int64(1000), saved.TotalsFor(entities.SideA).Votes)
	assert.Nil(t, saved.VotingEndsAt)
	assert.Nil(t, saved.Winner)

	acceptedAt := testutil.TestNow.Add(time.Minute)
	require.NoError(t, saved.AddStake(entities.SideB, 1000))
	require.NoError(t, saved.AddWager(entities.SideB, 200))
	saved.Accept(acceptedAt)
	saved.Resolve(entities.SideB, 110, 2090, acceptedAt.Add(2*time.Hour))
	require.NoError(t, repo.Update(ctx, saved))

	resolved, err := repo.GetByIDForUpdate(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, resolved.Winner)
	assert.Equal(t, entities.SideB, *resolved.Winner)
	assert.Equal(t, entities.ContestStatusResolved, resolved.Status)
	assert.Equal(t, int64(1200), resolved.TotalsFor(entities.SideB).Pool)
	assert.Equal(t, int64(110), resolved.Fee)
	assert.Equal(t, int64(2090), resolved.PrizePool)
	assert.Equal(t, 3, resolved.WagerCount)
	require.NotNil(t, resolved.VotingEndsAt)
	assert.True(t, acceptedAt.Add(time.Hour).Equal(*resolved.VotingEndsAt))

	missing, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.ErrorIs(t, repo.Update(ctx, testutil.CreateTestContest(99, "alice", "bob", 100)), entities.ErrContestNotFound)
}

func TestContestRepository_List(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	setupContestFixtures(t, ctx, testDB)
	repo := NewContestRepository(testDB.DB)

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestContest(id, "alice", "bob", 100*id)))
	}
	cancelled, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	cancelled.Cancel(testutil.TestNow)
	require.NoError(t, repo.Update(ctx, cancelled))

	all, err := repo.List(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})

	proposed := entities.ContestStatusProposed
	open, err := repo.List(ctx, &proposed, 10)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, int64(3), open[0].ID)

	limited, err := repo.List(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
