package repository

import (
	"context"
	"fmt"

	"arenaapp/database"
	"arenaapp/domain/entities"

	"github.com/jackc/pgx/v5"
)

// EscrowRepository implements the EscrowRepository interface
type EscrowRepository struct {
	q Queryable
}

// NewEscrowRepository creates a new escrow repository
func NewEscrowRepository(db *database.DB) *EscrowRepository {
	return &EscrowRepository{q: db.Pool}
}

func newEscrowRepository(q Queryable) *EscrowRepository {
	return &EscrowRepository{q: q}
}

// Create opens an empty escrow for a contest
func (r *EscrowRepository) Create(ctx context.Context, contestID int64) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO escrows (contest_id, balance) VALUES ($1, 0)`, contestID); err != nil {
		return fmt.Errorf("failed to create escrow for contest %d: %w", contestID, err)
	}
	return nil
}

// Get retrieves a contest's escrow, or nil if none exists
func (r *EscrowRepository) Get(ctx context.Context, contestID int64) (*entities.Escrow, error) {
	var escrow entities.Escrow
	err := r.q.QueryRow(ctx,
		`SELECT contest_id, balance, updated_at FROM escrows WHERE contest_id = $1`,
		contestID,
	).Scan(&escrow.ContestID, &escrow.Balance, &escrow.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow for contest %d: %w", contestID, err)
	}
	return &escrow, nil
}

// Adjust applies delta to the balance and returns the new balance.
// The balance never goes negative: an overdrawing delta fails with ErrEscrowOverdrawn.
func (r *EscrowRepository) Adjust(ctx context.Context, contestID int64, delta int64) (int64, error) {
	query := `
		UPDATE escrows
		SET balance = balance + $2, updated_at = NOW()
		WHERE contest_id = $1 AND balance + $2 >= 0
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, contestID, delta).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, entities.ErrEscrowOverdrawn
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust escrow for contest %d: %w", contestID, err)
	}
	return balance, nil
}
