package testhelpers

import (
	"context"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockArenaRepository is a mock implementation of ArenaRepository
type MockArenaRepository struct {
	mock.Mock
}

func (m *MockArenaRepository) Get(ctx context.Context) (*entities.Arena, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Arena), args.Error(1)
}

func (m *MockArenaRepository) Create(ctx context.Context, arena *entities.Arena) error {
	args := m.Called(ctx, arena)
	return args.Error(0)
}

func (m *MockArenaRepository) NextContestID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArenaRepository) AddVolume(ctx context.Context, amount int64) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetByIdentity(ctx context.Context, identity string) (*entities.Participant, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) Update(ctx context.Context, participant *entities.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) List(ctx context.Context, limit int) ([]*entities.Participant, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

// MockContestRepository is a mock implementation of ContestRepository
type MockContestRepository struct {
	mock.Mock
}

func (m *MockContestRepository) Create(ctx context.Context, contest *entities.Contest) error {
	args := m.Called(ctx, contest)
	return args.Error(0)
}

func (m *MockContestRepository) GetByID(ctx context.Context, id int64) (*entities.Contest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contest), args.Error(1)
}

func (m *MockContestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Contest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contest), args.Error(1)
}

func (m *MockContestRepository) Update(ctx context.Context, contest *entities.Contest) error {
	args := m.Called(ctx, contest)
	return args.Error(0)
}

func (m *MockContestRepository) List(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Contest), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByContestAndBettor(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	args := m.Called(ctx, contestID, bettor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByContestAndBettorForUpdate(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	args := m.Called(ctx, contestID, bettor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByContest(ctx context.Context, contestID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) MarkVoted(ctx context.Context, wagerID int64) (bool, error) {
	args := m.Called(ctx, wagerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) MarkClaimed(ctx context.Context, wagerID int64, payout int64, claimedAt time.Time) (bool, error) {
	args := m.Called(ctx, wagerID, payout, claimedAt)
	return args.Bool(0), args.Error(1)
}

// MockEscrowRepository is a mock implementation of EscrowRepository
type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) Create(ctx context.Context, contestID int64) error {
	args := m.Called(ctx, contestID)
	return args.Error(0)
}

func (m *MockEscrowRepository) Get(ctx context.Context, contestID int64) (*entities.Escrow, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Escrow), args.Error(1)
}

func (m *MockEscrowRepository) Adjust(ctx context.Context, contestID int64, delta int64) (int64, error) {
	args := m.Called(ctx, contestID, delta)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Transfer(ctx context.Context, transfer *entities.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) GetByContest(ctx context.Context, contestID int64) ([]*entities.Transfer, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transfer), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// FixedClock is a Clock that always returns the same instant
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Time
}

// Advance moves the clock forward
func (c *FixedClock) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}
