package repository

import (
	"context"
	"fmt"

	"arenaapp/database"
	"arenaapp/domain/entities"

	"github.com/jackc/pgx/v5"
)

const participantColumns = `identity, display_name, rating, wins, losses, draws, earnings, registered_at`

// ParticipantRepository implements the ParticipantRepository interface
type ParticipantRepository struct {
	q Queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) *ParticipantRepository {
	return &ParticipantRepository{q: db.Pool}
}

func newParticipantRepository(q Queryable) *ParticipantRepository {
	return &ParticipantRepository{q: q}
}

func scanParticipant(row pgx.Row) (*entities.Participant, error) {
	var p entities.Participant
	err := row.Scan(
		&p.Identity,
		&p.DisplayName,
		&p.Rating,
		&p.Wins,
		&p.Losses,
		&p.Draws,
		&p.Earnings,
		&p.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIdentity retrieves a participant, or nil if not registered
func (r *ParticipantRepository) GetByIdentity(ctx context.Context, identity string) (*entities.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE identity = $1`

	participant, err := scanParticipant(r.q.QueryRow(ctx, query, identity))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %s: %w", identity, err)
	}
	return participant, nil
}

// Create registers a new participant
func (r *ParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	query := `
		INSERT INTO participants (` + participantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.Exec(ctx, query,
		participant.Identity,
		participant.DisplayName,
		participant.Rating,
		participant.Wins,
		participant.Losses,
		participant.Draws,
		participant.Earnings,
		participant.RegisteredAt,
	)
	if isUniqueViolation(err, "participants_pkey") {
		return entities.ErrParticipantExists
	}
	if err != nil {
		return fmt.Errorf("failed to create participant %s: %w", participant.Identity, err)
	}
	return nil
}

// Update persists rating, record and earnings
func (r *ParticipantRepository) Update(ctx context.Context, participant *entities.Participant) error {
	query := `
		UPDATE participants
		SET rating = $2, wins = $3, losses = $4, draws = $5, earnings = $6
		WHERE identity = $1
	`

	tag, err := r.q.Exec(ctx, query,
		participant.Identity,
		participant.Rating,
		participant.Wins,
		participant.Losses,
		participant.Draws,
		participant.Earnings,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant %s: %w", participant.Identity, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrParticipantNotFound
	}
	return nil
}

// GetLeaderboard returns participants ordered by rating, highest first
func (r *ParticipantRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		ORDER BY rating DESC, identity
		LIMIT $1
	`

	participants, err := r.queryParticipants(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	return participants, nil
}

// List returns participants in registration order
func (r *ParticipantRepository) List(ctx context.Context, limit int) ([]*entities.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		ORDER BY registered_at, identity
		LIMIT $1
	`

	participants, err := r.queryParticipants(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (r *ParticipantRepository) queryParticipants(ctx context.Context, query string, args ...any) ([]*entities.Participant, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*entities.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
