package repository

import (
	"context"
	"fmt"
	"time"

	"arenaapp/database"
	"arenaapp/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ArenaRepository implements the ArenaRepository interface
type ArenaRepository struct {
	q Queryable
}

// NewArenaRepository creates a new arena repository
func NewArenaRepository(db *database.DB) *ArenaRepository {
	return &ArenaRepository{q: db.Pool}
}

func newArenaRepository(q Queryable) *ArenaRepository {
	return &ArenaRepository{q: q}
}

// Get retrieves the arena, or nil if it has not been initialized
func (r *ArenaRepository) Get(ctx context.Context) (*entities.Arena, error) {
	query := `
		SELECT fee_bps, min_bet, min_stake_to_create, default_voting_window_seconds,
		       contest_count, total_volume, treasury, created_at, updated_at
		FROM arena
		WHERE id = 1
	`

	var arena entities.Arena
	var windowSeconds int64
	err := r.q.QueryRow(ctx, query).Scan(
		&arena.FeeBps,
		&arena.MinBet,
		&arena.MinStakeToCreate,
		&windowSeconds,
		&arena.ContestCount,
		&arena.TotalVolume,
		&arena.Treasury,
		&arena.CreatedAt,
		&arena.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}

	arena.DefaultVotingWindow = time.Duration(windowSeconds) * time.Second
	return &arena, nil
}

// Create stores the arena configuration
func (r *ArenaRepository) Create(ctx context.Context, arena *entities.Arena) error {
	query := `
		INSERT INTO arena (id, fee_bps, min_bet, min_stake_to_create, default_voting_window_seconds, treasury, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $6)
		RETURNING contest_count, total_volume
	`

	err := r.q.QueryRow(ctx, query,
		arena.FeeBps,
		arena.MinBet,
		arena.MinStakeToCreate,
		int64(arena.DefaultVotingWindow/time.Second),
		arena.Treasury,
		arena.CreatedAt,
	).Scan(&arena.ContestCount, &arena.TotalVolume)
	if isUniqueViolation(err, "") {
		return entities.ErrArenaAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to create arena: %w", err)
	}
	return nil
}

// NextContestID atomically increments the contest counter and returns the new value
func (r *ArenaRepository) NextContestID(ctx context.Context) (int64, error) {
	query := `
		UPDATE arena
		SET contest_count = contest_count + 1, updated_at = NOW()
		WHERE id = 1
		RETURNING contest_count
	`

	var id int64
	err := r.q.QueryRow(ctx, query).Scan(&id)
	if err == pgx.ErrNoRows {
		return 0, entities.ErrArenaNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("failed to allocate contest id: %w", err)
	}
	return id, nil
}

// AddVolume adds a settled pool to the cumulative volume
func (r *ArenaRepository) AddVolume(ctx context.Context, amount int64) error {
	query := `
		UPDATE arena
		SET total_volume = total_volume + $1, updated_at = NOW()
		WHERE id = 1
	`

	tag, err := r.q.Exec(ctx, query, amount)
	if err != nil {
		return fmt.Errorf("failed to add arena volume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrArenaNotInitialized
	}
	return nil
}
