package interfaces

import (
	"context"
	"time"

	"arenaapp/domain/entities"
)

// ArenaService manages the singleton arena configuration
type ArenaService interface {
	// Initialize creates the arena if it does not exist yet and returns the stored configuration
	Initialize(ctx context.Context, arena *entities.Arena) (*entities.Arena, error)

	// GetArena returns the arena configuration and running totals
	GetArena(ctx context.Context) (*entities.Arena, error)
}

// ParticipantService manages participant registration and rankings
type ParticipantService interface {
	// Register creates a participant with the initial rating
	Register(ctx context.Context, identity, displayName string) (*entities.Participant, error)

	// GetParticipant returns a registered participant
	GetParticipant(ctx context.Context, identity string) (*entities.Participant, error)

	// GetLeaderboard returns the top participants by rating
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error)

	// ListParticipants returns registered participants in registration order
	ListParticipants(ctx context.Context, limit int) ([]*entities.Participant, error)
}

// ContestService drives the contest lifecycle from proposal to live or cancelled
type ContestService interface {
	// CreateContest stakes a new contest against a registered opponent
	CreateContest(ctx context.Context, initiator, opponent, topic string, stake int64, votingWindow time.Duration) (*entities.Contest, error)

	// AcceptContest matches the initiator's stake and opens voting
	AcceptContest(ctx context.Context, contestID int64, caller string, stake int64) (*entities.Contest, error)

	// CancelContest withdraws a proposed contest and refunds every wager
	CancelContest(ctx context.Context, contestID int64, caller string) (*entities.Contest, error)

	// GetContest returns a contest
	GetContest(ctx context.Context, contestID int64) (*entities.Contest, error)

	// ListContests returns contests, optionally filtered by status
	ListContests(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error)

	// GetEscrow returns the escrow balance held for a contest
	GetEscrow(ctx context.Context, contestID int64) (*entities.Escrow, error)

	// GetOdds prices both sides of a contest from its current pools
	GetOdds(ctx context.Context, contestID int64) (*entities.Odds, error)
}

// WagerService records wagers and stake-weighted votes
type WagerService interface {
	// PlaceWager backs a side of a contest
	PlaceWager(ctx context.Context, contestID int64, bettor string, side entities.Side, amount int64) (*entities.Wager, error)

	// CastVote counts the bettor's own wager amount as vote weight for the side it backs
	CastVote(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)

	// GetWager returns the bettor's wager on a contest
	GetWager(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)

	// GetWagers returns every wager of a contest
	GetWagers(ctx context.Context, contestID int64) ([]*entities.Wager, error)
}

// SettlementService resolves contests and pays winners
type SettlementService interface {
	// Settle fixes the winner once voting ended, levies the fee and updates ratings
	Settle(ctx context.Context, contestID int64) (*SettlementResult, error)

	// Claim pays a winning wager its share of the prize pool exactly once
	Claim(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)
}

// SettlementResult describes the outcome of a settled contest
type SettlementResult struct {
	Contest     *entities.Contest
	Winner      *entities.Participant
	Loser       *entities.Participant
	TotalPool   int64
	Fee         int64
	PrizePool   int64
	RatingDelta map[string]int
}
