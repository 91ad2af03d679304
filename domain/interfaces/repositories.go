package interfaces

import (
	"context"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
)

// ArenaRepository defines the interface for the singleton arena configuration
type ArenaRepository interface {
	// Get returns the arena, or nil if it has not been initialized
	Get(ctx context.Context) (*entities.Arena, error)

	// Create stores the arena configuration
	Create(ctx context.Context, arena *entities.Arena) error

	// NextContestID atomically increments the contest counter and returns the new value
	NextContestID(ctx context.Context) (int64, error)

	// AddVolume adds a settled pool to the cumulative volume
	AddVolume(ctx context.Context, amount int64) error
}

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// GetByIdentity retrieves a participant, or nil if not registered
	GetByIdentity(ctx context.Context, identity string) (*entities.Participant, error)

	// Create registers a new participant
	Create(ctx context.Context, participant *entities.Participant) error

	// Update persists rating, record and earnings
	Update(ctx context.Context, participant *entities.Participant) error

	// GetLeaderboard returns participants ordered by rating, highest first
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error)

	// List returns participants in registration order
	List(ctx context.Context, limit int) ([]*entities.Participant, error)
}

// ContestRepository defines the interface for contest data access
type ContestRepository interface {
	// Create stores a new contest under its pre-assigned ID
	Create(ctx context.Context, contest *entities.Contest) error

	// GetByID retrieves a contest, or nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entities.Contest, error)

	// GetByIDForUpdate retrieves a contest and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Contest, error)

	// Update persists status, totals, timestamps and settlement results
	Update(ctx context.Context, contest *entities.Contest) error

	// List returns contests newest first, optionally filtered by status
	List(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error)
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create stores a new wager; a second wager for the same (contest, bettor) fails with ErrDuplicateWager
	Create(ctx context.Context, wager *entities.Wager) error

	// GetByContestAndBettor retrieves a wager, or nil if the bettor holds none
	GetByContestAndBettor(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)

	// GetByContestAndBettorForUpdate retrieves a wager and locks its row
	GetByContestAndBettorForUpdate(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)

	// GetByContest returns every wager of a contest in placement order
	GetByContest(ctx context.Context, contestID int64) ([]*entities.Wager, error)

	// MarkVoted sets the has-voted flag if it is not already set
	MarkVoted(ctx context.Context, wagerID int64) (bool, error)

	// MarkClaimed sets the claimed flag and payout if it is not already claimed
	MarkClaimed(ctx context.Context, wagerID int64, payout int64, claimedAt time.Time) (bool, error)
}

// EscrowRepository defines the interface for per-contest escrow balances
type EscrowRepository interface {
	// Create opens an empty escrow for a contest
	Create(ctx context.Context, contestID int64) error

	// Get retrieves the escrow of a contest, or nil if none exists
	Get(ctx context.Context, contestID int64) (*entities.Escrow, error)

	// Adjust applies delta to the balance and returns the new balance; it fails rather than go negative
	Adjust(ctx context.Context, contestID int64, delta int64) (int64, error)
}

// TransferRepository records fund movements between logical accounts
type TransferRepository interface {
	// Transfer records a movement of amount from one account to another
	Transfer(ctx context.Context, transfer *entities.Transfer) error

	// GetByContest returns the journal entries of a contest
	GetByContest(ctx context.Context, contestID int64) ([]*entities.Transfer, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish publishes an event
	Publish(event events.Event) error
}

// Clock supplies the current time to time-gated operations
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
