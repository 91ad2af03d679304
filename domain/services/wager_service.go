package services

import (
	"context"
	"fmt"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
	"arenaapp/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type wagerService struct {
	arenaRepo      interfaces.ArenaRepository
	contestRepo    interfaces.ContestRepository
	wagerRepo      interfaces.WagerRepository
	ledger         *EscrowLedger
	eventPublisher interfaces.EventPublisher
	clock          interfaces.Clock
}

// NewWagerService creates a new wager service
func NewWagerService(
	arenaRepo interfaces.ArenaRepository,
	contestRepo interfaces.ContestRepository,
	wagerRepo interfaces.WagerRepository,
	escrowRepo interfaces.EscrowRepository,
	transferRepo interfaces.TransferRepository,
	eventPublisher interfaces.EventPublisher,
	clock interfaces.Clock,
) interfaces.WagerService {
	return &wagerService{
		arenaRepo:      arenaRepo,
		contestRepo:    contestRepo,
		wagerRepo:      wagerRepo,
		ledger:         NewEscrowLedger(escrowRepo, transferRepo),
		eventPublisher: eventPublisher,
		clock:          clock,
	}
}

// PlaceWager backs a side of a proposed or live contest before its voting deadline
func (s *wagerService) PlaceWager(ctx context.Context, contestID int64, bettor string, side entities.Side, amount int64) (*entities.Wager, error) {
	if !side.IsValid() {
		return nil, entities.ErrInvalidSide
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	arena, err := s.arenaRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}
	if arena == nil {
		return nil, entities.ErrArenaNotInitialized
	}
	if amount < arena.MinBet {
		return nil, entities.ErrBetTooSmall
	}

	contest, err := s.contestRepo.GetByIDForUpdate(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}

	now := s.clock.Now()
	if err := contest.CanAcceptWagers(now); err != nil {
		return nil, err
	}
	if contest.IsProposed() && bettor == contest.Opponent {
		return nil, entities.ErrOpponentMustAccept
	}

	existing, err := s.wagerRepo.GetByContestAndBettor(ctx, contestID, bettor)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrDuplicateWager
	}

	wager, err := entities.NewWager(contestID, bettor, side, amount, now)
	if err != nil {
		return nil, err
	}
	if err := contest.AddWager(side, amount); err != nil {
		return nil, err
	}

	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}
	if _, err := s.ledger.Deposit(ctx, contestID, entities.UserAccount(bettor), amount, entities.TransferReasonWager); err != nil {
		return nil, err
	}
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WagerPlacedEvent{
		ContestID: contestID,
		Bettor:    bettor,
		Side:      string(side),
		Amount:    amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wager placed event")
	}

	log.WithFields(log.Fields{
		"contestID": contestID,
		"bettor":    bettor,
		"side":      side,
		"amount":    amount,
	}).Info("Wager placed")

	return wager, nil
}

// CastVote counts the bettor's own wager amount as vote weight for the side it backs
func (s *wagerService) CastVote(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	contest, err := s.contestRepo.GetByIDForUpdate(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}
	if err := contest.CanVote(s.clock.Now()); err != nil {
		return nil, err
	}

	wager, err := s.wagerRepo.GetByContestAndBettorForUpdate(ctx, contestID, bettor)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}
	if err := wager.Vote(); err != nil {
		return nil, err
	}
	if err := contest.AddVotes(wager.Side, wager.Amount); err != nil {
		return nil, err
	}

	marked, err := s.wagerRepo.MarkVoted(ctx, wager.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}
	if !marked {
		return nil, entities.ErrAlreadyVoted
	}
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}

	if err := s.eventPublisher.Publish(events.VoteCastEvent{
		ContestID: contestID,
		Bettor:    bettor,
		Side:      string(wager.Side),
		Weight:    wager.Amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish vote cast event")
	}

	log.WithFields(log.Fields{
		"contestID": contestID,
		"bettor":    bettor,
		"side":      wager.Side,
		"weight":    wager.Amount,
	}).Info("Vote cast")

	return wager, nil
}

// GetWager returns the bettor's wager on a contest
func (s *wagerService) GetWager(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByContestAndBettor(ctx, contestID, bettor)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}
	return wager, nil
}

// GetWagers returns every wager of a contest
func (s *wagerService) GetWagers(ctx context.Context, contestID int64) ([]*entities.Wager, error) {
	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}

	wagers, err := s.wagerRepo.GetByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}
	return wagers, nil
}
