package services

import (
	"testing"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettlementService_FullContest(t *testing.T) {
	f := NewArenaTestFixture(t)
	f.Register(TestAlice, TestBob, TestCarol, TestDave)

	contest := f.LiveContest(1000, 1000)
	assert.Equal(t, int64(2000), f.EscrowBalance(contest.ID))

	_, err := f.Wagers.PlaceWager(f.Ctx, contest.ID, TestCarol, entities.SideA, 100)
	require.NoError(t, err)
	_, err = f.Wagers.PlaceWager(f.Ctx, contest.ID, TestDave, entities.SideB, 200)
	require.NoError(t, err)
	_, err = f.Wagers.CastVote(f.Ctx, contest.ID, TestCarol)
	require.NoError(t, err)
	_, err = f.Wagers.CastVote(f.Ctx, contest.ID, TestDave)
	require.NoError(t, err)
	f.AssertConserved(contest.ID)

	live, err := f.Contests.GetContest(f.Ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), live.TotalsFor(entities.SideA).Votes)
	assert.Equal(t, int64(1200), live.TotalsFor(entities.SideB).Votes)
	assert.Equal(t, 4, live.WagerCount)

	_, err = f.Settlement.Settle(f.Ctx, contest.ID)
	assert.ErrorIs(t, err, entities.ErrVotingNotEnded)

	f.CloseVoting(contest)
	result, err := f.Settlement.Settle(f.Ctx, contest.ID)
	require.NoError(t, err)

	assert.Equal(t, entities.SideB, *result.Contest.Winner)
	assert.Equal(t, int64(2300), result.TotalPool)
	assert.Equal(t, int64(115), result.Fee)
	assert.Equal(t, int64(2185), result.PrizePool)
	assert.Equal(t, TestBob, result.Winner.Identity)
	assert.Equal(t, 1016, result.Winner.Rating)
	assert.Equal(t, 984, result.Loser.Rating)
	assert.Equal(t, 16, result.RatingDelta[TestBob])
	assert.Equal(t, -16, result.RatingDelta[TestAlice])
	assert.Equal(t, int64(2185), f.EscrowBalance(contest.ID))

	bob, err := f.Participants.GetParticipant(f.Ctx, TestBob)
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Wins)
	assert.Equal(t, int64(1820), bob.Earnings)
	alice, err := f.Participants.GetParticipant(f.Ctx, TestAlice)
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Losses)

	arena, err := f.Arena.GetArena(f.Ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2300), arena.TotalVolume)
	assert.Equal(t, int64(1), arena.ContestCount)

	dave, err := f.Settlement.Claim(f.Ctx, contest.ID, TestDave)
	require.NoError(t, err)
	require.NotNil(t, dave.Payout)
	assert.Equal(t, int64(364), *dave.Payout)

	bobWager, err := f.Settlement.Claim(f.Ctx, contest.ID, TestBob)
	require.NoError(t, err)
	assert.Equal(t, int64(1820), *bobWager.Payout)

	_, err = f.Settlement.Claim(f.Ctx, contest.ID, TestDave)
	assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)
	_, err = f.Settlement.Claim(f.Ctx, contest.ID, TestCarol)
	assert.ErrorIs(t, err, entities.ErrNotWinner)

	// truncation dust stays in escrow
	assert.Equal(t, int64(1), f.EscrowBalance(contest.ID))

	_, err = f.Settlement.Settle(f.Ctx, contest.ID)
	assert.ErrorIs(t, err, entities.ErrAlreadySettled)

	assert.Len(t, f.Events.OfType(events.EventTypeContestSettled), 1)
	assert.Len(t, f.Events.OfType(events.EventTypeWinningsClaimed), 2)

	var fees int64
	for _, transfer := range f.Store.Transfers() {
		if transfer.Reason == entities.TransferReasonFee {
			assert.Equal(t, entities.TreasuryAccount(TestTreasury), transfer.To)
			fees += transfer.Amount
		}
	}
	assert.Equal(t, int64(115), fees)
}

func TestSettlementService_TieFallback(t *testing.T) {
	for run := 0; run < 3; run++ {
		f := NewArenaTestFixture(t)
		f.Register(TestAlice, TestBob)

		contest := f.LiveContest(500, 500)
		f.CloseVoting(contest)

		result, err := f.Settlement.Settle(f.Ctx, contest.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.SideA, *result.Contest.Winner)
		assert.Equal(t, TestAlice, result.Winner.Identity)
	}
}

func TestSettlementService_VoteTieLargerPoolWins(t *testing.T) {
	f := NewArenaTestFixture(t)
	f.Register(TestAlice, TestBob, TestCarol)

	contest := f.LiveContest(500, 500)
	// carol backs B without voting, so votes stay level and the pools decide
	_, err := f.Wagers.PlaceWager(f.Ctx, contest.ID, TestCarol, entities.SideB, 50)
	require.NoError(t, err)
	f.CloseVoting(contest)

	result, err := f.Settlement.Settle(f.Ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SideB, *result.Contest.Winner)
}

func TestSettlementService_Settle_Preconditions(t *testing.T) {
	t.Run("contest not found", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		helper.ExpectContestNotFound(42)

		service := newMockedSettlementService(mocks)
		_, err := service.Settle(helper.ctx, 42)
		assert.ErrorIs(t, err, entities.ErrContestNotFound)
	})

	t.Run("proposed contest cannot settle", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		helper.ExpectContestLock(NewProposedContest(500))

		service := newMockedSettlementService(mocks)
		_, err := service.Settle(helper.ctx, TestContestID)
		assert.ErrorIs(t, err, entities.ErrContestNotLive)
		mocks.AssertAllExpectations(t)
	})

	t.Run("escrow mismatch aborts settlement", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		mocks.Clock.Advance(2 * TestWindow)

		helper.ExpectContestLock(NewLiveContest(500, 500))
		helper.ExpectArena(NewTestArena())
		helper.ExpectEscrowBalance(TestContestID, 999)

		service := newMockedSettlementService(mocks)
		_, err := service.Settle(helper.ctx, TestContestID)
		assert.ErrorIs(t, err, entities.ErrEscrowMismatch)
		assert.Equal(t, entities.ErrorKindInvariant, entities.KindOf(err))
		mocks.ContestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mocks.AssertAllExpectations(t)
	})

	t.Run("settles exactly at the deadline", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		mocks.Clock.Advance(TestWindow)

		contest := NewLiveContest(1000, 1000)
		helper.ExpectContestLock(contest)
		helper.ExpectArena(NewTestArena())
		helper.ExpectEscrowBalance(TestContestID, 2000)
		helper.ExpectParticipantLookup(TestAlice, NewTestParticipant(TestAlice))
		helper.ExpectParticipantLookup(TestBob, NewTestParticipant(TestBob))
		helper.ExpectWagerLookup(TestContestID, TestAlice, &entities.Wager{ID: 1, ContestID: TestContestID, Bettor: TestAlice, Side: entities.SideA, Amount: 1000})
		helper.ExpectWithdrawal(TestContestID, entities.TreasuryAccount(TestTreasury), 100, 1900, entities.TransferReasonFee)
		helper.ExpectContestUpdate(entities.ContestStatusResolved)
		mocks.ParticipantRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
		mocks.ArenaRepo.On("AddVolume", mock.Anything, int64(2000)).Return(nil)
		helper.ExpectEventPublish(events.EventTypeContestSettled)

		service := newMockedSettlementService(mocks)
		result, err := service.Settle(helper.ctx, TestContestID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), result.Fee)
		assert.Equal(t, int64(1900), result.PrizePool)
		assert.Equal(t, int64(1900), result.Winner.Earnings)
		mocks.AssertAllExpectations(t)
	})
}

func TestSettlementService_Claim(t *testing.T) {
	resolved := func() *entities.Contest {
		contest := NewLiveContest(1000, 1000)
		contest.Resolve(entities.SideB, 100, 1900, TestEpoch.Add(2*time.Hour))
		return contest
	}

	tests := []struct {
		name    string
		contest *entities.Contest
		wager   *entities.Wager
		wantErr error
	}{
		{
			name:    "contest still live",
			contest: NewLiveContest(1000, 1000),
			wager:   &entities.Wager{ID: 2, Bettor: TestBob, Side: entities.SideB, Amount: 1000},
			wantErr: entities.ErrContestNotResolved,
		},
		{
			name:    "losing side",
			contest: resolved(),
			wager:   &entities.Wager{ID: 1, Bettor: TestAlice, Side: entities.SideA, Amount: 1000},
			wantErr: entities.ErrNotWinner,
		},
		{
			name:    "already claimed",
			contest: resolved(),
			wager:   &entities.Wager{ID: 2, Bettor: TestBob, Side: entities.SideB, Amount: 1000, Claimed: true},
			wantErr: entities.ErrAlreadyClaimed,
		},
		{
			name:    "no wager",
			contest: resolved(),
			wantErr: entities.ErrWagerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			helper.ExpectContestLookup(tt.contest)
			bettor := TestBob
			if tt.wager != nil {
				bettor = tt.wager.Bettor
			}
			helper.ExpectWagerLock(TestContestID, bettor, tt.wager)

			service := newMockedSettlementService(mocks)
			_, err := service.Claim(helper.ctx, TestContestID, bettor)
			assert.ErrorIs(t, err, tt.wantErr)
			mocks.EscrowRepo.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("concurrent claim loses the conditional update", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		helper.ExpectContestLookup(resolved())
		helper.ExpectWagerLock(TestContestID, TestBob, &entities.Wager{ID: 2, Bettor: TestBob, Side: entities.SideB, Amount: 1000})
		mocks.WagerRepo.On("MarkClaimed", mock.Anything, int64(2), int64(1900), mock.Anything).Return(false, nil)

		service := newMockedSettlementService(mocks)
		_, err := service.Claim(helper.ctx, TestContestID, TestBob)
		assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)
		mocks.TransferRepo.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
		mocks.AssertAllExpectations(t)
	})

	t.Run("pays the full prize to the only winner", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		helper.ExpectContestLookup(resolved())
		helper.ExpectWagerLock(TestContestID, TestBob, &entities.Wager{ID: 2, Bettor: TestBob, Side: entities.SideB, Amount: 1000})
		mocks.WagerRepo.On("MarkClaimed", mock.Anything, int64(2), int64(1900), mock.Anything).Return(true, nil)
		helper.ExpectEscrowBalance(TestContestID, 1900)
		helper.ExpectWithdrawal(TestContestID, entities.UserAccount(TestBob), 1900, 0, entities.TransferReasonPayout)
		helper.ExpectEventPublish(events.EventTypeWinningsClaimed)

		service := newMockedSettlementService(mocks)
		wager, err := service.Claim(helper.ctx, TestContestID, TestBob)
		require.NoError(t, err)
		assert.True(t, wager.Claimed)
		assert.Equal(t, int64(1900), *wager.Payout)
		mocks.AssertAllExpectations(t)
	})
}

func newMockedSettlementService(mocks *TestMocks) *settlementService {
	return NewSettlementService(
		mocks.ArenaRepo,
		mocks.ParticipantRepo,
		mocks.ContestRepo,
		mocks.WagerRepo,
		mocks.EscrowRepo,
		mocks.TransferRepo,
		mocks.EventPublisher,
		mocks.Clock,
	).(*settlementService)
}
