package services

import (
	"context"
	"testing"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
	"arenaapp/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestAlice     = "alice"
	TestBob       = "bob"
	TestCarol     = "carol"
	TestDave      = "dave"
	TestTopic     = "Pineapple belongs on pizza"
	TestContestID = int64(1)
	TestFeeBps    = int64(500)
	TestMinBet    = int64(10)
	TestMinStake  = int64(100)
	TestTreasury  = "house"
	TestWindow    = time.Hour
)

// TestEpoch is the instant every fixed test clock starts at
var TestEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	ArenaRepo       *testhelpers.MockArenaRepository
	ParticipantRepo *testhelpers.MockParticipantRepository
	ContestRepo     *testhelpers.MockContestRepository
	WagerRepo       *testhelpers.MockWagerRepository
	EscrowRepo      *testhelpers.MockEscrowRepository
	TransferRepo    *testhelpers.MockTransferRepository
	EventPublisher  *testhelpers.MockEventPublisher
	Clock           *testhelpers.FixedClock
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		ArenaRepo:       &testhelpers.MockArenaRepository{},
		ParticipantRepo: &testhelpers.MockParticipantRepository{},
		ContestRepo:     &testhelpers.MockContestRepository{},
		WagerRepo:       &testhelpers.MockWagerRepository{},
		EscrowRepo:      &testhelpers.MockEscrowRepository{},
		TransferRepo:    &testhelpers.MockTransferRepository{},
		EventPublisher:  &testhelpers.MockEventPublisher{},
		Clock:           &testhelpers.FixedClock{Time: TestEpoch},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.ArenaRepo.AssertExpectations(t)
	m.ParticipantRepo.AssertExpectations(t)
	m.ContestRepo.AssertExpectations(t)
	m.WagerRepo.AssertExpectations(t)
	m.EscrowRepo.AssertExpectations(t)
	m.TransferRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectArena sets up the arena lookup
func (h *MockHelper) ExpectArena(arena *entities.Arena) {
	h.mocks.ArenaRepo.On("Get", mock.Anything).Return(arena, nil)
}

// ExpectParticipantLookup sets up participant repository mock expectations
func (h *MockHelper) ExpectParticipantLookup(identity string, participant *entities.Participant) {
	h.mocks.ParticipantRepo.On("GetByIdentity", mock.Anything, identity).Return(participant, nil)
}

// ExpectParticipantNotFound sets up participant repository mock to return not found
func (h *MockHelper) ExpectParticipantNotFound(identity string) {
	h.mocks.ParticipantRepo.On("GetByIdentity", mock.Anything, identity).Return(nil, nil)
}

// ExpectContestLock sets up the locking contest lookup
func (h *MockHelper) ExpectContestLock(contest *entities.Contest) {
	h.mocks.ContestRepo.On("GetByIDForUpdate", mock.Anything, contest.ID).Return(contest, nil)
}

// ExpectContestLookup sets up the plain contest lookup
func (h *MockHelper) ExpectContestLookup(contest *entities.Contest) {
	h.mocks.ContestRepo.On("GetByID", mock.Anything, contest.ID).Return(contest, nil)
}

// ExpectContestNotFound sets up both contest lookups to return not found
func (h *MockHelper) ExpectContestNotFound(contestID int64) {
	h.mocks.ContestRepo.On("GetByIDForUpdate", mock.Anything, contestID).Return(nil, nil).Maybe()
	h.mocks.ContestRepo.On("GetByID", mock.Anything, contestID).Return(nil, nil).Maybe()
}

// ExpectContestUpdate expects the contest to be persisted in the given status
func (h *MockHelper) ExpectContestUpdate(status entities.ContestStatus) {
	h.mocks.ContestRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *entities.Contest) bool {
		return c.Status == status
	})).Return(nil)
}

// ExpectWagerLookup sets up the wager lookup for a bettor
func (h *MockHelper) ExpectWagerLookup(contestID int64, bettor string, wager *entities.Wager) {
	h.mocks.WagerRepo.On("GetByContestAndBettor", mock.Anything, contestID, bettor).Return(wager, nil)
}

// ExpectWagerLock sets up the locking wager lookup for a bettor
func (h *MockHelper) ExpectWagerLock(contestID int64, bettor string, wager *entities.Wager) {
	h.mocks.WagerRepo.On("GetByContestAndBettorForUpdate", mock.Anything, contestID, bettor).Return(wager, nil)
}

// ExpectEscrowBalance sets up the escrow lookup
func (h *MockHelper) ExpectEscrowBalance(contestID, balance int64) {
	h.mocks.EscrowRepo.On("Get", mock.Anything, contestID).Return(&entities.Escrow{ContestID: contestID, Balance: balance}, nil)
}

// ExpectDeposit expects a journalled transfer into escrow followed by a credit
func (h *MockHelper) ExpectDeposit(contestID, amount, newBalance int64, reason entities.TransferReason) {
	h.mocks.TransferRepo.On("Transfer", mock.Anything, mock.MatchedBy(func(t *entities.Transfer) bool {
		return t.To == entities.EscrowAccount(contestID) && t.Amount == amount && t.Reason == reason
	})).Return(nil).Once()
	h.mocks.EscrowRepo.On("Adjust", mock.Anything, contestID, amount).Return(newBalance, nil).Once()
}

// ExpectWithdrawal expects a journalled transfer out of escrow followed by a debit
func (h *MockHelper) ExpectWithdrawal(contestID int64, to entities.Account, amount, newBalance int64, reason entities.TransferReason) {
	h.mocks.TransferRepo.On("Transfer", mock.Anything, mock.MatchedBy(func(t *entities.Transfer) bool {
		return t.From == entities.EscrowAccount(contestID) && t.To == to && t.Amount == amount && t.Reason == reason
	})).Return(nil).Once()
	h.mocks.EscrowRepo.On("Adjust", mock.Anything, contestID, -amount).Return(newBalance, nil).Once()
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// NewTestArena returns a valid arena configuration
func NewTestArena() *entities.Arena {
	return &entities.Arena{
		FeeBps:              TestFeeBps,
		MinBet:              TestMinBet,
		MinStakeToCreate:    TestMinStake,
		DefaultVotingWindow: TestWindow,
		Treasury:            TestTreasury,
		CreatedAt:           TestEpoch,
		UpdatedAt:           TestEpoch,
	}
}

// NewTestParticipant returns a registered participant with the initial rating
func NewTestParticipant(identity string) *entities.Participant {
	return &entities.Participant{
		Identity:     identity,
		DisplayName:  identity,
		Rating:       entities.InitialRating,
		RegisteredAt: TestEpoch,
	}
}

// NewProposedContest returns a proposed contest with the initiator's stake recorded
func NewProposedContest(stake int64) *entities.Contest {
	contest, _ := entities.NewContest(TestContestID, TestAlice, TestBob, TestTopic, TestWindow, TestEpoch)
	_ = contest.AddStake(entities.SideA, stake)
	return contest
}

// NewLiveContest returns a contest accepted at TestEpoch with both stakes recorded
func NewLiveContest(stakeA, stakeB int64) *entities.Contest {
	contest := NewProposedContest(stakeA)
	_ = contest.AddStake(entities.SideB, stakeB)
	contest.Accept(TestEpoch)
	return contest
}
