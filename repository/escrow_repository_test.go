package repository

import (
	"context"
	"testing"

	"arenaapp/domain/entities"
	"arenaapp/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowRepository_Adjust(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	setupContestFixtures(t, ctx, testDB)
	require.NoError(t, NewContestRepository(testDB.DB).Create(ctx, testutil.CreateTestContest(1, "alice", "bob", 500)))
	repo := NewEscrowRepository(testDB.DB)

	missing, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, 1))

	balance, err := repo.Adjust(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	balance, err = repo.Adjust(ctx, 1, -200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	_, err = repo.Adjust(ctx, 1, -301)
	assert.ErrorIs(t, err, entities.ErrEscrowOverdrawn)

	escrow, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), escrow.Balance, "failed debit leaves the balance untouched")
}

func TestTransferRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	setupContestFixtures(t, ctx, testDB)
	require.NoError(t, NewContestRepository(testDB.DB).Create(ctx, testutil.CreateTestContest(1, "alice", "bob", 500)))
	repo := NewTransferRepository(testDB.DB)

	in := &entities.Transfer{
		ContestID: 1,
		From:      entities.UserAccount("alice"),
		To:        entities.EscrowAccount(1),
		Amount:    500,
		Reason:    entities.TransferReasonStake,
	}
	require.NoError(t, repo.Transfer(ctx, in))
	assert.NotZero(t, in.ID)
	assert.False(t, in.CreatedAt.IsZero())

	require.NoError(t, repo.Transfer(ctx, &entities.Transfer{
		ContestID: 1,
		From:      entities.EscrowAccount(1),
		To:        entities.TreasuryAccount("house"),
		Amount:    25,
		Reason:    entities.TransferReasonFee,
	}))

	transfers, err := repo.GetByContest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, entities.Account("user:alice"), transfers[0].From)
	assert.Equal(t, entities.TransferReasonFee, transfers[1].Reason)
	assert.Equal(t, entities.TreasuryAccount("house"), transfers[1].To)
}
