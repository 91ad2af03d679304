package services

import (
	"context"
	"testing"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"
	"arenaapp/domain/testhelpers"

	"github.com/stretchr/testify/require"
)

// ArenaTestFixture wires every service against one in-memory store, for end-to-end scenarios
type ArenaTestFixture struct {
	T            *testing.T
	Ctx          context.Context
	Store        *testhelpers.MemoryStore
	Events       *testhelpers.EventRecorder
	Clock        *testhelpers.FixedClock
	Arena        interfaces.ArenaService
	Participants interfaces.ParticipantService
	Contests     interfaces.ContestService
	Wagers       interfaces.WagerService
	Settlement   interfaces.SettlementService
}

// NewArenaTestFixture creates a fixture with an initialized arena
func NewArenaTestFixture(t *testing.T) *ArenaTestFixture {
	store := testhelpers.NewMemoryStore()
	recorder := &testhelpers.EventRecorder{}
	clock := &testhelpers.FixedClock{Time: TestEpoch}

	f := &ArenaTestFixture{
		T:      t,
		Ctx:    context.Background(),
		Store:  store,
		Events: recorder,
		Clock:  clock,
		Arena:  NewArenaService(store.ArenaRepository(), clock),
		Participants: NewParticipantService(
			store.ParticipantRepository(),
			recorder,
			clock,
		),
		Contests: NewContestService(
			store.ArenaRepository(),
			store.ParticipantRepository(),
			store.ContestRepository(),
			store.WagerRepository(),
			store.EscrowRepository(),
			store.TransferRepository(),
			recorder,
			clock,
		),
		Wagers: NewWagerService(
			store.ArenaRepository(),
			store.ContestRepository(),
			store.WagerRepository(),
			store.EscrowRepository(),
			store.TransferRepository(),
			recorder,
			clock,
		),
		Settlement: NewSettlementService(
			store.ArenaRepository(),
			store.ParticipantRepository(),
			store.ContestRepository(),
			store.WagerRepository(),
			store.EscrowRepository(),
			store.TransferRepository(),
			recorder,
			clock,
		),
	}

	_, err := f.Arena.Initialize(f.Ctx, NewTestArena())
	require.NoError(t, err)
	return f
}

// Register registers participants by identity
func (f *ArenaTestFixture) Register(identities ...string) {
	for _, identity := range identities {
		_, err := f.Participants.Register(f.Ctx, identity, identity)
		require.NoError(f.T, err)
	}
}

// LiveContest creates and accepts an alice-versus-bob contest
func (f *ArenaTestFixture) LiveContest(stakeA, stakeB int64) *entities.Contest {
	contest, err := f.Contests.CreateContest(f.Ctx, TestAlice, TestBob, TestTopic, stakeA, TestWindow)
	require.NoError(f.T, err)
	contest, err = f.Contests.AcceptContest(f.Ctx, contest.ID, TestBob, stakeB)
	require.NoError(f.T, err)
	return contest
}

// CloseVoting moves the clock past the contest's voting deadline
func (f *ArenaTestFixture) CloseVoting(contest *entities.Contest) {
	f.Clock.Time = contest.VotingEndsAt.Add(time.Second)
}

// EscrowBalance returns the escrow balance of a contest
func (f *ArenaTestFixture) EscrowBalance(contestID int64) int64 {
	escrow, err := f.Contests.GetEscrow(f.Ctx, contestID)
	require.NoError(f.T, err)
	return escrow.Balance
}

// AssertConserved checks escrow equals the contest's pools
func (f *ArenaTestFixture) AssertConserved(contestID int64) {
	contest, err := f.Contests.GetContest(f.Ctx, contestID)
	require.NoError(f.T, err)
	total, err := contest.TotalPool()
	require.NoError(f.T, err)
	require.Equal(f.T, total, f.EscrowBalance(contestID), "escrow must equal poolA + poolB")
}
