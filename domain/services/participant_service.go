package services

import (
	"context"
	"fmt"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
	"arenaapp/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultLeaderboardSize is the number of participants returned when no limit is given
	DefaultLeaderboardSize = 50

	// MaxLeaderboardSize caps how many participants one leaderboard query returns
	MaxLeaderboardSize = 200

	// DefaultParticipantPage and MaxParticipantPage bound participant listings
	DefaultParticipantPage = 100
	MaxParticipantPage     = 1000
)

type participantService struct {
	participantRepo interfaces.ParticipantRepository
	eventPublisher  interfaces.EventPublisher
	clock           interfaces.Clock
}

// NewParticipantService creates a new participant service
func NewParticipantService(
	participantRepo interfaces.ParticipantRepository,
	eventPublisher interfaces.EventPublisher,
	clock interfaces.Clock,
) interfaces.ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		eventPublisher:  eventPublisher,
		clock:           clock,
	}
}

// Register creates a participant with the initial rating
func (s *participantService) Register(ctx context.Context, identity, displayName string) (*entities.Participant, error) {
	participant, err := entities.NewParticipant(identity, displayName, s.clock.Now())
	if err != nil {
		return nil, err
	}

	existing, err := s.participantRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrParticipantExists
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ParticipantRegisteredEvent{
		Identity:    participant.Identity,
		DisplayName: participant.DisplayName,
		Rating:      participant.Rating,
	}); err != nil {
		log.WithError(err).Error("Failed to publish participant registered event")
	}

	log.WithFields(log.Fields{
		"identity": participant.Identity,
		"name":     participant.DisplayName,
	}).Info("Participant registered")

	return participant, nil
}

// GetParticipant returns a registered participant
func (s *participantService) GetParticipant(ctx context.Context, identity string) (*entities.Participant, error) {
	participant, err := s.participantRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if participant == nil {
		return nil, entities.ErrParticipantNotFound
	}
	return participant, nil
}

// GetLeaderboard returns the top participants by rating
func (s *participantService) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	participants, err := s.participantRepo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return participants, nil
}

// ListParticipants returns registered participants in registration order
func (s *participantService) ListParticipants(ctx context.Context, limit int) ([]*entities.Participant, error) {
	if limit <= 0 {
		limit = DefaultParticipantPage
	}
	if limit > MaxParticipantPage {
		limit = MaxParticipantPage
	}

	participants, err := s.participantRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}
