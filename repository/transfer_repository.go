package repository

import (
	"context"
	"fmt"

	"arenaapp/database"
	"arenaapp/domain/entities"
)

// TransferRepository journals every movement of funds in and out of escrow
type TransferRepository struct {
	q Queryable
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *database.DB) *TransferRepository {
	return &TransferRepository{q: db.Pool}
}

func newTransferRepository(q Queryable) *TransferRepository {
	return &TransferRepository{q: q}
}

// Transfer records a movement of funds between two accounts
func (r *TransferRepository) Transfer(ctx context.Context, transfer *entities.Transfer) error {
	query := `
		INSERT INTO transfers (contest_id, from_account, to_account, amount, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		transfer.ContestID,
		string(transfer.From),
		string(transfer.To),
		transfer.Amount,
		string(transfer.Reason),
	).Scan(&transfer.ID, &transfer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s transfer of %d for contest %d: %w", transfer.Reason, transfer.Amount, transfer.ContestID, err)
	}
	return nil
}

// GetByContest returns a contest's transfers in the order they happened
func (r *TransferRepository) GetByContest(ctx context.Context, contestID int64) ([]*entities.Transfer, error) {
	query := `
		SELECT id, contest_id, from_account, to_account, amount, reason, created_at
		FROM transfers
		WHERE contest_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers for contest %d: %w", contestID, err)
	}
	defer rows.Close()

	var transfers []*entities.Transfer
	for rows.Next() {
		var t entities.Transfer
		var from, to, reason string
		if err := rows.Scan(&t.ID, &t.ContestID, &from, &to, &t.Amount, &reason, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		t.From = entities.Account(from)
		t.To = entities.Account(to)
		t.Reason = entities.TransferReason(reason)
		transfers = append(transfers, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}
	return transfers, nil
}
