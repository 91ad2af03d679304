package repository

import (
	"context"
	"fmt"
	"time"

	"arenaapp/database"
	"arenaapp/domain/entities"

	"github.com/jackc/pgx/v5"
)

const contestColumns = `
	id, initiator, opponent, topic, status,
	stake_a, pool_a, votes_a, stake_b, pool_b, votes_b,
	wager_count, voting_window_seconds, fee, prize_pool, winner,
	created_at, accepted_at, voting_ends_at, settled_at, cancelled_at`

// ContestRepository implements the ContestRepository interface
type ContestRepository struct {
	q Queryable
}

// NewContestRepository creates a new contest repository
func NewContestRepository(db *database.DB) *ContestRepository {
	return &ContestRepository{q: db.Pool}
}

func newContestRepository(q Queryable) *ContestRepository {
	return &ContestRepository{q: q}
}

func scanContest(row pgx.Row) (*entities.Contest, error) {
	var c entities.Contest
	var status string
	var winner *string
	var windowSeconds int64
	a, b := &c.Totals[entities.SideA.Index()], &c.Totals[entities.SideB.Index()]

	err := row.Scan(
		&c.ID,
		&c.Initiator,
		&c.Opponent,
		&c.Topic,
		&status,
		&a.Stake, &a.Pool, &a.Votes,
		&b.Stake, &b.Pool, &b.Votes,
		&c.WagerCount,
		&windowSeconds,
		&c.Fee,
		&c.PrizePool,
		&winner,
		&c.CreatedAt,
		&c.AcceptedAt,
		&c.VotingEndsAt,
		&c.SettledAt,
		&c.CancelledAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = entities.ContestStatus(status)
	c.VotingWindow = time.Duration(windowSeconds) * time.Second
	if winner != nil {
		side := entities.Side(*winner)
		c.Winner = &side
	}
	return &c, nil
}

func winnerValue(c *entities.Contest) *string {
	if c.Winner == nil {
		return nil
	}
	w := string(*c.Winner)
	return &w
}

// Create stores a new contest under its pre-assigned ID
func (r *ContestRepository) Create(ctx context.Context, contest *entities.Contest) error {
	query := `INSERT INTO contests (` + contestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	a, b := contest.TotalsFor(entities.SideA), contest.TotalsFor(entities.SideB)
	_, err := r.q.Exec(ctx, query,
		contest.ID,
		contest.Initiator,
		contest.Opponent,
		contest.Topic,
		string(contest.Status),
		a.Stake, a.Pool, a.Votes,
		b.Stake, b.Pool, b.Votes,
		contest.WagerCount,
		int64(contest.VotingWindow/time.Second),
		contest.Fee,
		contest.PrizePool,
		winnerValue(contest),
		contest.CreatedAt,
		contest.AcceptedAt,
		contest.VotingEndsAt,
		contest.SettledAt,
		contest.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contest %d: %w", contest.ID, err)
	}
	return nil
}

// GetByID retrieves a contest, or nil if it does not exist
func (r *ContestRepository) GetByID(ctx context.Context, id int64) (*entities.Contest, error) {
	return r.get(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a contest and locks its row until the transaction ends
func (r *ContestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Contest, error) {
	return r.get(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1 FOR UPDATE`, id)
}

func (r *ContestRepository) get(ctx context.Context, query string, id int64) (*entities.Contest, error) {
	contest, err := scanContest(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contest %d: %w", id, err)
	}
	return contest, nil
}

// Update persists status, totals, timestamps and settlement results
func (r *ContestRepository) Update(ctx context.Context, contest *entities.Contest) error {
	query := `
		UPDATE contests
		SET status = $2,
		    stake_a = $3, pool_a = $4, votes_a = $5,
		    stake_b = $6, pool_b = $7, votes_b = $8,
		    wager_count = $9, fee = $10, prize_pool = $11, winner = $12,
		    accepted_at = $13, voting_ends_at = $14, settled_at = $15, cancelled_at = $16
		WHERE id = $1
	`

	a, b := contest.TotalsFor(entities.SideA), contest.TotalsFor(entities.SideB)
	tag, err := r.q.Exec(ctx, query,
		contest.ID,
		string(contest.Status),
		a.Stake, a.Pool, a.Votes,
		b.Stake, b.Pool, b.Votes,
		contest.WagerCount,
		contest.Fee,
		contest.PrizePool,
		winnerValue(contest),
		contest.AcceptedAt,
		contest.VotingEndsAt,
		contest.SettledAt,
		contest.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest %d: %w", contest.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrContestNotFound
	}
	return nil
}

// List returns contests newest first, optionally filtered by status
func (r *ContestRepository) List(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	defer rows.Close()

	var contests []*entities.Contest
	for rows.Next() {
		contest, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest: %w", err)
		}
		contests = append(contests, contest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contests: %w", err)
	}
	return contests, nil
}
