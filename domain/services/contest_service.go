package services

import (
	"context"
	"fmt"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/events"
	"arenaapp/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultContestListSize is the number of contests returned when no limit is given
	DefaultContestListSize = 50

	// MaxContestListSize caps how many contests one list query returns
	MaxContestListSize = 500
)

type contestService struct {
	arenaRepo       interfaces.ArenaRepository
	participantRepo interfaces.ParticipantRepository
	contestRepo     interfaces.ContestRepository
	wagerRepo       interfaces.WagerRepository
	ledger          *EscrowLedger
	eventPublisher  interfaces.EventPublisher
	clock           interfaces.Clock
}

// NewContestService creates a new contest service
func NewContestService(
	arenaRepo interfaces.ArenaRepository,
	participantRepo interfaces.ParticipantRepository,
	contestRepo interfaces.ContestRepository,
	wagerRepo interfaces.WagerRepository,
	escrowRepo interfaces.EscrowRepository,
	transferRepo interfaces.TransferRepository,
	eventPublisher interfaces.EventPublisher,
	clock interfaces.Clock,
) interfaces.ContestService {
	return &contestService{
		arenaRepo:       arenaRepo,
		participantRepo: participantRepo,
		contestRepo:     contestRepo,
		wagerRepo:       wagerRepo,
		ledger:          NewEscrowLedger(escrowRepo, transferRepo),
		eventPublisher:  eventPublisher,
		clock:           clock,
	}
}

// CreateContest stakes a new contest against a registered opponent
func (s *contestService) CreateContest(ctx context.Context, initiator, opponent, topic string, stake int64, votingWindow time.Duration) (*entities.Contest, error) {
	if err := entities.ValidateTopic(topic); err != nil {
		return nil, err
	}
	if initiator == opponent {
		return nil, entities.ErrSameParticipant
	}
	if err := entities.ValidateVotingWindow(votingWindow); err != nil {
		return nil, err
	}

	arena, err := s.getArena(ctx)
	if err != nil {
		return nil, err
	}
	if stake < arena.MinStakeToCreate {
		return nil, entities.ErrStakeTooLow
	}

	for _, identity := range []string{initiator, opponent} {
		participant, err := s.participantRepo.GetByIdentity(ctx, identity)
		if err != nil {
			return nil, fmt.Errorf("failed to get participant: %w", err)
		}
		if participant == nil {
			return nil, fmt.Errorf("%s: %w", identity, entities.ErrParticipantNotFound)
		}
	}

	now := s.clock.Now()
	contestID, err := s.arenaRepo.NextContestID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate contest id: %w", err)
	}

	contest, err := entities.NewContest(contestID, initiator, opponent, topic, votingWindow, now)
	if err != nil {
		return nil, err
	}
	if err := contest.AddStake(entities.SideA, stake); err != nil {
		return nil, err
	}

	// The initiator funds side A, so its stake also counts as side A's first vote
	wager, err := entities.NewWager(contestID, initiator, entities.SideA, stake, now)
	if err != nil {
		return nil, err
	}
	wager.HasVoted = true

	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	if err := s.ledger.Open(ctx, contestID); err != nil {
		return nil, err
	}
	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to record initiator stake: %w", err)
	}
	if _, err := s.ledger.Deposit(ctx, contestID, entities.UserAccount(initiator), stake, entities.TransferReasonStake); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.ContestCreatedEvent{
		ContestID:    contest.ID,
		Initiator:    initiator,
		Opponent:     opponent,
		Topic:        topic,
		Stake:        stake,
		VotingWindow: int64(votingWindow.Seconds()),
	}); err != nil {
		log.WithError(err).Error("Failed to publish contest created event")
	}

	log.WithFields(log.Fields{
		"contestID": contest.ID,
		"initiator": initiator,
		"opponent":  opponent,
		"stake":     stake,
	}).Info("Contest created")

	return contest, nil
}

// AcceptContest matches the initiator's stake and opens voting
func (s *contestService) AcceptContest(ctx context.Context, contestID int64, caller string, stake int64) (*entities.Contest, error) {
	contest, err := s.lockContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if err := contest.CanAccept(caller, stake); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	wager, err := entities.NewWager(contestID, caller, entities.SideB, stake, now)
	if err != nil {
		return nil, err
	}
	wager.HasVoted = true

	if err := contest.AddStake(entities.SideB, stake); err != nil {
		return nil, err
	}
	contest.Accept(now)

	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to record opponent stake: %w", err)
	}
	if _, err := s.ledger.Deposit(ctx, contestID, entities.UserAccount(caller), stake, entities.TransferReasonStake); err != nil {
		return nil, err
	}
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ContestAcceptedEvent{
		ContestID:    contest.ID,
		Opponent:     caller,
		Stake:        stake,
		VotingEndsAt: contest.VotingEndsAt.Unix(),
	}); err != nil {
		log.WithError(err).Error("Failed to publish contest accepted event")
	}

	log.WithFields(log.Fields{
		"contestID":    contest.ID,
		"opponent":     caller,
		"stake":        stake,
		"votingEndsAt": contest.VotingEndsAt,
	}).Info("Contest accepted")

	return contest, nil
}

// CancelContest withdraws a proposed contest and refunds every wager placed on it
func (s *contestService) CancelContest(ctx context.Context, contestID int64, caller string) (*entities.Contest, error) {
	contest, err := s.lockContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if err := contest.CanCancel(caller); err != nil {
		return nil, err
	}
	if err := s.ledger.VerifyPools(ctx, contest); err != nil {
		return nil, err
	}

	wagers, err := s.wagerRepo.GetByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	now := s.clock.Now()
	var refunded int64
	for _, wager := range wagers {
		marked, err := s.wagerRepo.MarkClaimed(ctx, wager.ID, wager.Amount, now)
		if err != nil {
			return nil, fmt.Errorf("failed to mark wager refunded: %w", err)
		}
		if !marked {
			return nil, entities.ErrAlreadyClaimed
		}
		wager.MarkClaimed(wager.Amount, now)

		if _, err := s.ledger.Withdraw(ctx, contestID, entities.UserAccount(wager.Bettor), wager.Amount, entities.TransferReasonRefund); err != nil {
			return nil, err
		}
		if refunded, err = entities.CheckedAdd(refunded, wager.Amount); err != nil {
			return nil, err
		}
	}

	contest.Cancel(now)
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ContestCancelledEvent{
		ContestID: contest.ID,
		Refunded:  refunded,
	}); err != nil {
		log.WithError(err).Error("Failed to publish contest cancelled event")
	}

	log.WithFields(log.Fields{
		"contestID": contest.ID,
		"refunded":  refunded,
		"wagers":    len(wagers),
	}).Info("Contest cancelled")

	return contest, nil
}

// GetContest returns a contest
func (s *contestService) GetContest(ctx context.Context, contestID int64) (*entities.Contest, error) {
	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}
	return contest, nil
}

// ListContests returns contests, optionally filtered by status
func (s *contestService) ListContests(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error) {
	if status != nil && !status.IsValid() {
		return nil, entities.ErrInvalidStatus
	}
	if limit <= 0 {
		limit = DefaultContestListSize
	}
	if limit > MaxContestListSize {
		limit = MaxContestListSize
	}

	contests, err := s.contestRepo.List(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, nil
}

// GetEscrow returns the escrow balance held for a contest
func (s *contestService) GetEscrow(ctx context.Context, contestID int64) (*entities.Escrow, error) {
	if _, err := s.GetContest(ctx, contestID); err != nil {
		return nil, err
	}
	balance, err := s.ledger.Balance(ctx, contestID)
	if err != nil {
		return nil, err
	}
	return &entities.Escrow{ContestID: contestID, Balance: balance}, nil
}

// GetOdds prices both sides of a contest from its current pools and the arena fee
func (s *contestService) GetOdds(ctx context.Context, contestID int64) (*entities.Odds, error) {
	contest, err := s.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	arena, err := s.getArena(ctx)
	if err != nil {
		return nil, err
	}
	return entities.ComputeOdds(contest, arena.FeeBps)
}

func (s *contestService) getArena(ctx context.Context) (*entities.Arena, error) {
	arena, err := s.arenaRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}
	if arena == nil {
		return nil, entities.ErrArenaNotInitialized
	}
	return arena, nil
}

func (s *contestService) lockContest(ctx context.Context, contestID int64) (*entities.Contest, error) {
	contest, err := s.contestRepo.GetByIDForUpdate(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	if contest == nil {
		return nil, entities.ErrContestNotFound
	}
	return contest, nil
}
