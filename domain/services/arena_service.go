package services

import (
	"context"
	"fmt"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type arenaService struct {
	arenaRepo interfaces.ArenaRepository
	clock     interfaces.Clock
}

// NewArenaService creates a new arena service
func NewArenaService(arenaRepo interfaces.ArenaRepository, clock interfaces.Clock) interfaces.ArenaService {
	return &arenaService{
		arenaRepo: arenaRepo,
		clock:     clock,
	}
}

// Initialize creates the arena if it does not exist yet and returns the stored configuration
func (s *arenaService) Initialize(ctx context.Context, arena *entities.Arena) (*entities.Arena, error) {
	existing, err := s.arenaRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if err := arena.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	arena.ContestCount = 0
	arena.TotalVolume = 0
	arena.CreatedAt = now
	arena.UpdatedAt = now

	if err := s.arenaRepo.Create(ctx, arena); err != nil {
		return nil, fmt.Errorf("failed to create arena: %w", err)
	}

	log.WithFields(log.Fields{
		"feeBps":           arena.FeeBps,
		"minBet":           arena.MinBet,
		"minStakeToCreate": arena.MinStakeToCreate,
		"votingWindow":     arena.DefaultVotingWindow,
		"treasury":         arena.Treasury,
	}).Info("Arena initialized")

	return arena, nil
}

// GetArena returns the arena configuration and running totals
func (s *arenaService) GetArena(ctx context.Context) (*entities.Arena, error) {
	arena, err := s.arenaRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}
	if arena == nil {
		return nil, entities.ErrArenaNotInitialized
	}
	return arena, nil
}
