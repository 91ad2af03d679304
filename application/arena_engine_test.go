package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
	"arenaapp/domain/services"
	"arenaapp/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine  *ArenaEngine
	factory *MemoryUnitOfWorkFactory
	locker  *SerialLocker
	metrics *MetricsSpy
	clock   *testhelpers.FixedClock
	ctx     context.Context
}

func newEngineFixture(t *testing.T, identities ...string) *engineFixture {
	f := &engineFixture{
		factory: NewMemoryUnitOfWorkFactory(),
		locker:  &SerialLocker{},
		metrics: NewMetricsSpy(),
		clock:   &testhelpers.FixedClock{Time: services.TestEpoch},
		ctx:     context.Background(),
	}
	f.engine = NewArenaEngine(f.factory, f.locker, f.metrics, f.clock)

	_, err := f.engine.InitializeArena(f.ctx, services.NewTestArena())
	require.NoError(t, err)
	for _, identity := range identities {
		_, err := f.engine.RegisterParticipant(f.ctx, identity, identity)
		require.NoError(t, err)
	}
	return f
}

func TestArenaEngine_FullContest(t *testing.T) {
	f := newEngineFixture(t, "alice", "bob", "carol", "dave")
	ctx := f.ctx

	contest, err := f.engine.CreateContest(ctx, "alice", "bob", "Tabs or spaces", 1000, time.Hour)
	require.NoError(t, err)
	_, err = f.engine.AcceptContest(ctx, contest.ID, "bob", 1000)
	require.NoError(t, err)

	_, err = f.engine.PlaceWager(ctx, contest.ID, "carol", entities.SideA, 100)
	require.NoError(t, err)
	_, err = f.engine.PlaceWager(ctx, contest.ID, "dave", entities.SideB, 200)
	require.NoError(t, err)
	_, err = f.engine.CastVote(ctx, contest.ID, "carol")
	require.NoError(t, err)
	_, err = f.engine.CastVote(ctx, contest.ID, "dave")
	require.NoError(t, err)

	_, err = f.engine.Settle(ctx, contest.ID)
	assert.ErrorIs(t, err, entities.ErrVotingNotEnded)

	f.clock.Advance(time.Hour)
	result, err := f.engine.Settle(ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", result.Winner.Identity)
	assert.Equal(t, int64(2300), result.TotalPool)
	assert.Equal(t, int64(115), result.Fee)
	assert.Equal(t, int64(2185), result.PrizePool)

	bob, err := f.engine.Claim(ctx, contest.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1820), *bob.Payout)
	dave, err := f.engine.Claim(ctx, contest.ID, "dave")
	require.NoError(t, err)
	assert.Equal(t, int64(364), *dave.Payout)

	_, err = f.engine.Claim(ctx, contest.ID, "carol")
	assert.ErrorIs(t, err, entities.ErrNotWinner)
	_, err = f.engine.Claim(ctx, contest.ID, "dave")
	assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)

	escrow, err := f.engine.GetEscrow(ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), escrow.Balance, "truncation dust stays in escrow")

	arena, err := f.engine.GetArena(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2300), arena.TotalVolume)

	board, err := f.engine.GetLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Identity)
	assert.Equal(t, 1016, board[0].Rating)

	assert.Equal(t, int64(2300), f.metrics.Wagered)
	assert.Equal(t, int64(115), f.metrics.Fees)
	assert.Equal(t, int64(2184), f.metrics.Claimed)
	assert.Equal(t, []string{"state", ""}, f.metrics.Operations[OpSettle])
	assert.Equal(t, []string{"", "", "state", "state"}, f.metrics.Operations[OpClaim])

	assert.Len(t, f.factory.Published.OfType(events.EventTypeWinningsClaimed), 2)
}

func TestArenaEngine_FailedOperationPublishesNothing(t *testing.T) {
	f := newEngineFixture(t, "alice", "bob")

	_, err := f.engine.CreateContest(f.ctx, "alice", "bob", "", 1000, time.Hour)
	assert.ErrorIs(t, err, entities.ErrTopicEmpty)

	assert.Empty(t, f.factory.Published.OfType(events.EventTypeContestCreated))
	_, rollbacks := f.factory.Counts()
	assert.Equal(t, 1, rollbacks)
	assert.Equal(t, []string{"validation"}, f.metrics.Operations[OpCreateContest])
	assert.Zero(t, f.metrics.Wagered)
}

func TestArenaEngine_LocksContestMutations(t *testing.T) {
	f := newEngineFixture(t, "alice", "bob")

	contest, err := f.engine.CreateContest(f.ctx, "alice", "bob", "Vim or Emacs", 500, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, f.locker.Locks, "creating a contest needs no lock")

	_, err = f.engine.AcceptContest(f.ctx, contest.ID, "bob", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, f.locker.Locks)

	_, err = f.engine.GetContest(f.ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.locker.Locks, "reads take no lock")
}

func TestArenaEngine_ConcurrentWagersConserveEscrow(t *testing.T) {
	const bettors = 25
	identities := []string{"alice", "bob"}
	for i := 0; i < bettors; i++ {
		identities = append(identities, fmt.Sprintf("bettor-%02d", i))
	}
	f := newEngineFixture(t, identities...)

	contest, err := f.engine.CreateContest(f.ctx, "alice", "bob", "Spaces", 1000, time.Hour)
	require.NoError(t, err)
	_, err = f.engine.AcceptContest(f.ctx, contest.ID, "bob", 1000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < bettors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			side := entities.SideA
			if i%2 == 1 {
				side = entities.SideB
			}
			bettor := fmt.Sprintf("bettor-%02d", i)
			_, err := f.engine.PlaceWager(f.ctx, contest.ID, bettor, side, int64(10+i))
			assert.NoError(t, err)
			// every bettor also races a duplicate
			_, err = f.engine.PlaceWager(f.ctx, contest.ID, bettor, side, int64(10+i))
			assert.ErrorIs(t, err, entities.ErrDuplicateWager)
		}(i)
	}
	wg.Wait()

	contest, err = f.engine.GetContest(f.ctx, contest.ID)
	require.NoError(t, err)
	total, err := contest.TotalPool()
	require.NoError(t, err)

	escrow, err := f.engine.GetEscrow(f.ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, total, escrow.Balance)

	wagers, err := f.engine.GetWagers(f.ctx, contest.ID)
	require.NoError(t, err)
	assert.Len(t, wagers, bettors+2)

	expected := int64(2000)
	for i := 0; i < bettors; i++ {
		expected += int64(10 + i)
	}
	assert.Equal(t, expected, total)
}

func TestArenaEngine_ConcurrentClaims(t *testing.T) {
	const bettors = 16
	identities := []string{"alice", "bob"}
	for i := 0; i < bettors; i++ {
		identities = append(identities, fmt.Sprintf("bettor-%02d", i))
	}
	f := newEngineFixture(t, identities...)

	contest, err := f.engine.CreateContest(f.ctx, "alice", "bob", "Spaces", 1000, time.Hour)
	require.NoError(t, err)
	_, err = f.engine.AcceptContest(f.ctx, contest.ID, "bob", 1000)
	require.NoError(t, err)

	// odd bettors back B and vote, so B wins
	winners := []string{"bob"}
	losers := []string{"alice"}
	for i := 0; i < bettors; i++ {
		bettor := fmt.Sprintf("bettor-%02d", i)
		side := entities.SideA
		if i%2 == 1 {
			side = entities.SideB
		}
		_, err := f.engine.PlaceWager(f.ctx, contest.ID, bettor, side, int64(37+13*i))
		require.NoError(t, err)
		if side == entities.SideB {
			_, err = f.engine.CastVote(f.ctx, contest.ID, bettor)
			require.NoError(t, err)
			winners = append(winners, bettor)
		} else {
			losers = append(losers, bettor)
		}
	}

	f.clock.Advance(time.Hour)
	result, err := f.engine.Settle(f.ctx, contest.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", result.Winner.Identity)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		paid   int64
		claims = make(map[string]int)
	)
	for _, bettor := range winners {
		wg.Add(1)
		go func(bettor string) {
			defer wg.Done()
			wager, err := f.engine.Claim(f.ctx, contest.ID, bettor)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			paid += *wager.Payout
			claims[bettor]++
			mu.Unlock()

			_, err = f.engine.Claim(f.ctx, contest.ID, bettor)
			assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)
		}(bettor)
	}
	for _, bettor := range losers {
		wg.Add(1)
		go func(bettor string) {
			defer wg.Done()
			_, err := f.engine.Claim(f.ctx, contest.ID, bettor)
			assert.ErrorIs(t, err, entities.ErrNotWinner)
		}(bettor)
	}
	wg.Wait()

	for _, bettor := range winners {
		assert.Equal(t, 1, claims[bettor], bettor)
	}
	assert.LessOrEqual(t, paid, result.PrizePool)
	assert.Less(t, result.PrizePool-paid, int64(len(winners)), "only rounding dust stays behind")

	escrow, err := f.engine.GetEscrow(f.ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, result.PrizePool-paid, escrow.Balance)

	wagers, err := f.engine.GetWagers(f.ctx, contest.ID)
	require.NoError(t, err)
	for _, w := range wagers {
		assert.Equal(t, w.Side == entities.SideB, w.Claimed, w.Bettor)
	}
}

func TestArenaEngine_CancelRefunds(t *testing.T) {
	f := newEngineFixture(t, "alice", "bob", "carol")

	contest, err := f.engine.CreateContest(f.ctx, "alice", "bob", "Light or dark mode", 300, time.Hour)
	require.NoError(t, err)
	_, err = f.engine.PlaceWager(f.ctx, contest.ID, "carol", entities.SideB, 50)
	require.NoError(t, err)

	cancelled, err := f.engine.CancelContest(f.ctx, contest.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.ContestStatusCancelled, cancelled.Status)

	carol, err := f.engine.GetWager(f.ctx, contest.ID, "carol")
	require.NoError(t, err)
	assert.True(t, carol.Claimed)

	status := entities.ContestStatusCancelled
	list, err := f.engine.ListContests(f.ctx, &status, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	participant, err := f.engine.GetParticipant(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.InitialRating, participant.Rating, "cancellation does not touch ratings")
}
