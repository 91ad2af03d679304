package repository

import (
	"context"
	"fmt"
	"time"

	"arenaapp/database"
	"arenaapp/domain/entities"

	"github.com/jackc/pgx/v5"
)

const wagerColumns = `id, contest_id, bettor, side, amount, has_voted, claimed, payout, placed_at, claimed_at`

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q Queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

func newWagerRepository(q Queryable) *WagerRepository {
	return &WagerRepository{q: q}
}

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var w entities.Wager
	var side string
	err := row.Scan(
		&w.ID,
		&w.ContestID,
		&w.Bettor,
		&side,
		&w.Amount,
		&w.HasVoted,
		&w.Claimed,
		&w.Payout,
		&w.PlacedAt,
		&w.ClaimedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Side = entities.Side(side)
	return &w, nil
}

// Create stores a new wager; a second wager for the same (contest, bettor) fails with ErrDuplicateWager
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO wagers (contest_id, bettor, side, amount, has_voted, claimed, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		wager.ContestID,
		wager.Bettor,
		string(wager.Side),
		wager.Amount,
		wager.HasVoted,
		wager.Claimed,
		wager.PlacedAt,
	).Scan(&wager.ID)
	if isUniqueViolation(err, "wagers_contest_bettor_key") {
		return entities.ErrDuplicateWager
	}
	if err != nil {
		return fmt.Errorf("failed to create wager for %s on contest %d: %w", wager.Bettor, wager.ContestID, err)
	}
	return nil
}

// GetByContestAndBettor retrieves a wager, or nil if the bettor holds none
func (r *WagerRepository) GetByContestAndBettor(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE contest_id = $1 AND bettor = $2`
	return r.get(ctx, query, contestID, bettor)
}

// GetByContestAndBettorForUpdate retrieves a wager and locks its row
func (r *WagerRepository) GetByContestAndBettorForUpdate(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE contest_id = $1 AND bettor = $2 FOR UPDATE`
	return r.get(ctx, query, contestID, bettor)
}

func (r *WagerRepository) get(ctx context.Context, query string, contestID int64, bettor string) (*entities.Wager, error) {
	wager, err := scanWager(r.q.QueryRow(ctx, query, contestID, bettor))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager for %s on contest %d: %w", bettor, contestID, err)
	}
	return wager, nil
}

// GetByContest returns every wager of a contest in placement order
func (r *WagerRepository) GetByContest(ctx context.Context, contestID int64) ([]*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE contest_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wagers for contest %d: %w", contestID, err)
	}
	defer rows.Close()

	var wagers []*entities.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wagers: %w", err)
	}
	return wagers, nil
}

// MarkVoted sets the has-voted flag if it is not already set
func (r *WagerRepository) MarkVoted(ctx context.Context, wagerID int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE wagers SET has_voted = TRUE WHERE id = $1 AND NOT has_voted`, wagerID)
	if err != nil {
		return false, fmt.Errorf("failed to mark wager %d voted: %w", wagerID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkClaimed sets the claimed flag and payout if it is not already claimed
func (r *WagerRepository) MarkClaimed(ctx context.Context, wagerID int64, payout int64, claimedAt time.Time) (bool, error) {
	query := `
		UPDATE wagers
		SET claimed = TRUE, payout = $2, claimed_at = $3
		WHERE id = $1 AND NOT claimed
	`

	tag, err := r.q.Exec(ctx, query, wagerID, payout, claimedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark wager %d claimed: %w", wagerID, err)
	}
	return tag.RowsAffected() == 1, nil
}
