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

func TestArenaRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewArenaRepository(testDB.DB)

	arena, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, arena, "arena is absent before initialization")

	_, err = repo.NextContestID(ctx)
	assert.ErrorIs(t, err, entities.ErrArenaNotInitialized)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestArena()))
	assert.ErrorIs(t, repo.Create(ctx, testutil.CreateTestArena()), entities.ErrArenaAlreadyInitialized)

	arena, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, arena)
	assert.Equal(t, int64(500), arena.FeeBps)
	assert.Equal(t, time.Hour, arena.DefaultVotingWindow)
	assert.Equal(t, "house", arena.Treasury)
	assert.Equal(t, int64(0), arena.ContestCount)

	for want := int64(1); want <= 3; want++ {
		id, err := repo.NextContestID(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	require.NoError(t, repo.AddVolume(ctx, 2300))
	require.NoError(t, repo.AddVolume(ctx, 700))

	arena, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), arena.ContestCount)
	assert.Equal(t, int64(3000), arena.TotalVolume)
}

func TestParticipantRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewParticipantRepository(testDB.DB)

	missing, err := repo.GetByIdentity(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, identity := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestParticipant(identity)))
	}
	assert.ErrorIs(t, repo.Create(ctx, testutil.CreateTestParticipant("alice")), entities.ErrParticipantExists)

	bob, err := repo.GetByIdentity(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, bob)
	assert.Equal(t, entities.InitialRating, bob.Rating)
	assert.True(t, testutil.TestNow.Equal(bob.RegisteredAt))

	require.NoError(t, bob.RecordWin(1016, 1820))
	require.NoError(t, repo.Update(ctx, bob))

	ghost := testutil.CreateTestParticipant("ghost")
	assert.ErrorIs(t, repo.Update(ctx, ghost), entities.ErrParticipantNotFound)

	board, err := repo.GetLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Identity)
	assert.Equal(t, 1, board[0].Wins)
	assert.Equal(t, int64(1820), board[0].Earnings)
	assert.Equal(t, "alice", board[1].Identity, "ties ordered by identity")
}

func TestParticipantRepository_List(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewParticipantRepository(testDB.DB)

	late := testutil.CreateTestParticipant("aaron")
	late.RegisteredAt = testutil.TestNow.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, late))
	for _, identity := range []string{"carol", "bob"} {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestParticipant(identity)))
	}

	all, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bob", all[0].Identity)
	assert.Equal(t, "carol", all[1].Identity)
	assert.Equal(t, "aaron", all[2].Identity, "registered last")

	page, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
