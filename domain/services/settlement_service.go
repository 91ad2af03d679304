package services

import (
	"context"
	"fmt"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
	"arenaapp/domain/interfaces"
	"arenaapp/domain/rating"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	arenaRepo       interfaces.ArenaRepository
	participantRepo interfaces.ParticipantRepository
	contestRepo     interfaces.ContestRepository
	wagerRepo       interfaces.WagerRepository
	ledger          *EscrowLedger
	ratings         rating.Calculator
	eventPublisher  interfaces.EventPublisher
	clock           interfaces.Clock
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	arenaRepo interfaces.ArenaRepository,
	participantRepo interfaces.ParticipantRepository,
	contestRepo interfaces.ContestRepository,
	wagerRepo interfaces.WagerRepository,
	escrowRepo interfaces.EscrowRepository,
	transferRepo interfaces.TransferRepository,
	eventPublisher interfaces.EventPublisher,
	clock interfaces.Clock,
) interfaces.SettlementService {
	return &settlementService{
		arenaRepo:       arenaRepo,
		participantRepo: participantRepo,
		contestRepo:     contestRepo,
		wagerRepo:       wagerRepo,
		ledger:          NewEscrowLedger(escrowRepo, transferRepo),
		ratings:         rating.NewCalculator(),
		eventPublisher:  eventPublisher,
		clock:           clock,
	}
}

// Settle fixes the winner once voting ended, moves the fee to the treasury, updates both
// participants' ratings and records and adds the pool to the arena volume.
func (s *settlementService) Settle(ctx context.Context, contestID int64) (*interfaces.SettlementResult, error) {
	contest, err := s.contestRepo.GetByIDForUpdate(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}

	now := s.clock.Now()
	if err := contest.CanSettle(now); err != nil {
		return nil, err
	}

	arena, err := s.arenaRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}
	if arena == nil {
		return nil, entities.ErrArenaNotInitialized
	}

	totalPool, err := contest.TotalPool()
	if err != nil {
		return nil, err
	}
	if err := s.ledger.VerifyPools(ctx, contest); err != nil {
		return nil, err
	}

	winningSide := contest.DetermineWinner()
	winningPool := contest.TotalsFor(winningSide).Pool
	if winningPool == 0 {
		return nil, entities.ErrZeroWinningPool
	}

	fee, err := entities.ComputeFee(totalPool, arena.FeeBps)
	if err != nil {
		return nil, err
	}
	prizePool, err := entities.CheckedSub(totalPool, fee)
	if err != nil {
		return nil, err
	}

	winner, err := s.getParticipant(ctx, contest.ParticipantFor(winningSide))
	if err != nil {
		return nil, err
	}
	loser, err := s.getParticipant(ctx, contest.ParticipantFor(winningSide.Opposite()))
	if err != nil {
		return nil, err
	}

	// The winning participant's earnings are the payout its own stake will claim
	winnerWager, err := s.wagerRepo.GetByContestAndBettor(ctx, contestID, winner.Identity)
	if err != nil {
		return nil, fmt.Errorf("failed to get winner wager: %w", err)
	}
	var earned int64
	if winnerWager != nil {
		if earned, err = entities.ComputePayout(winnerWager.Amount, prizePool, winningPool); err != nil {
			return nil, err
		}
	}

	oldWinnerRating, oldLoserRating := winner.Rating, loser.Rating
	newWinnerRating, newLoserRating := s.ratings.Update(winner.Rating, loser.Rating, true)
	if err := winner.RecordWin(newWinnerRating, earned); err != nil {
		return nil, err
	}
	loser.RecordLoss(newLoserRating)

	if fee > 0 {
		if _, err := s.ledger.Withdraw(ctx, contestID, arena.TreasuryAccount(), fee, entities.TransferReasonFee); err != nil {
			return nil, err
		}
	}

	contest.Resolve(winningSide, fee, prizePool, now)
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}
	if err := s.participantRepo.Update(ctx, winner); err != nil {
		return nil, fmt.Errorf("failed to update winner: %w", err)
	}
	if err := s.participantRepo.Update(ctx, loser); err != nil {
		return nil, fmt.Errorf("failed to update loser: %w", err)
	}
	if err := s.arenaRepo.AddVolume(ctx, totalPool); err != nil {
		return nil, fmt.Errorf("failed to update arena volume: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ContestSettledEvent{
		ContestID:    contest.ID,
		Topic:        contest.Topic,
		Winner:       winner.Identity,
		WinningSide:  string(winningSide),
		Loser:        loser.Identity,
		TotalPool:    totalPool,
		Fee:          fee,
		PrizePool:    prizePool,
		WinnerRating: winner.Rating,
		LoserRating:  loser.Rating,
		VotesForA:    contest.TotalsFor(entities.SideA).Votes,
		VotesForB:    contest.TotalsFor(entities.SideB).Votes,
	}); err != nil {
		log.WithError(err).Error("Failed to publish contest settled event")
	}

	log.WithFields(log.Fields{
		"contestID":   contest.ID,
		"winner":      winner.Identity,
		"winningSide": winningSide,
		"totalPool":   totalPool,
		"fee":         fee,
		"prizePool":   prizePool,
	}).Info("Contest settled")

	return &interfaces.SettlementResult{
		Contest:   contest,
		Winner:    winner,
		Loser:     loser,
		TotalPool: totalPool,
		Fee:       fee,
		PrizePool: prizePool,
		RatingDelta: map[string]int{
			winner.Identity: newWinnerRating - oldWinnerRating,
			loser.Identity:  newLoserRating - oldLoserRating,
		},
	}, nil
}

// Claim pays a winning wager its share of the prize pool. The claimed flag is persisted with a
// conditional update before any funds leave escrow, so a concurrent second claim fails.
func (s *settlementService) Claim(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}

	wager, err := s.wagerRepo.GetByContestAndBettorForUpdate(ctx, contestID, bettor)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}
	if err := wager.CanClaim(contest); err != nil {
		return nil, err
	}

	payout, err := contest.PayoutFor(wager.Amount)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	marked, err := s.wagerRepo.MarkClaimed(ctx, wager.ID, payout, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark wager claimed: %w", err)
	}
	if !marked {
		return nil, entities.ErrAlreadyClaimed
	}
	wager.MarkClaimed(payout, now)

	if payout > 0 {
		if _, err := s.ledger.Withdraw(ctx, contestID, entities.UserAccount(bettor), payout, entities.TransferReasonPayout); err != nil {
			return nil, err
		}
	}

	if err := s.eventPublisher.Publish(events.WinningsClaimedEvent{
		ContestID: contestID,
		Bettor:    bettor,
		Amount:    wager.Amount,
		Payout:    payout,
	}); err != nil {
		log.WithError(err).Error("Failed to publish winnings claimed event")
	}

	log.WithFields(log.Fields{
		"contestID": contestID,
		"bettor":    bettor,
		"amount":    wager.Amount,
		"payout":    payout,
	}).Info("Winnings claimed")

	return wager, nil
}

func (s *settlementService) getParticipant(ctx context.Context, identity string) (*entities.Participant, error) {
	participant, err := s.participantRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if participant == nil {
		return nil, fmt.Errorf("%s: %w", identity, entities.ErrParticipantNotFound)
	}
	return participant, nil
}
