package application

import (
	"context"
	"fmt"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"
	"arenaapp/domain/services"

	log "github.com/sirupsen/logrus"
)

// Operation names used for logs and metrics
const (
	OpInitializeArena     = "initialize_arena"
	OpRegisterParticipant = "register_participant"
	OpCreateContest       = "create_contest"
	OpAcceptContest       = "accept_contest"
	OpCancelContest       = "cancel_contest"
	OpPlaceWager          = "place_wager"
	OpCastVote            = "cast_vote"
	OpSettle              = "settle"
	OpClaim               = "claim"
)

// ArenaEngine runs every arena operation inside its own unit of work.
// Mutations of an existing contest hold that contest's lock for the whole transaction.
type ArenaEngine struct {
	uowFactory UnitOfWorkFactory
	locker     ContestLocker
	metrics    MetricsRecorder
	clock      interfaces.Clock
}

// NewArenaEngine creates a new arena engine
func NewArenaEngine(
	uowFactory UnitOfWorkFactory,
	locker ContestLocker,
	metrics MetricsRecorder,
	clock interfaces.Clock,
) *ArenaEngine {
	if clock == nil {
		clock = interfaces.SystemClock{}
	}
	return &ArenaEngine{
		uowFactory: uowFactory,
		locker:     locker,
		metrics:    metrics,
		clock:      clock,
	}
}

// domainServices are the services bound to one unit of work
type domainServices struct {
	arena        interfaces.ArenaService
	participants interfaces.ParticipantService
	contests     interfaces.ContestService
	wagers       interfaces.WagerService
	settlement   interfaces.SettlementService
}

func (e *ArenaEngine) servicesFor(uow UnitOfWork) *domainServices {
	return &domainServices{
		arena: services.NewArenaService(uow.ArenaRepository(), e.clock),
		participants: services.NewParticipantService(
			uow.ParticipantRepository(),
			uow.EventBus(),
			e.clock,
		),
		contests: services.NewContestService(
			uow.ArenaRepository(),
			uow.ParticipantRepository(),
			uow.ContestRepository(),
			uow.WagerRepository(),
			uow.EscrowRepository(),
			uow.TransferRepository(),
			uow.EventBus(),
			e.clock,
		),
		wagers: services.NewWagerService(
			uow.ArenaRepository(),
			uow.ContestRepository(),
			uow.WagerRepository(),
			uow.EscrowRepository(),
			uow.TransferRepository(),
			uow.EventBus(),
			e.clock,
		),
		settlement: services.NewSettlementService(
			uow.ArenaRepository(),
			uow.ParticipantRepository(),
			uow.ContestRepository(),
			uow.WagerRepository(),
			uow.EscrowRepository(),
			uow.TransferRepository(),
			uow.EventBus(),
			e.clock,
		),
	}
}

// execute runs fn in a fresh unit of work, committing on success and rolling back otherwise.
// contestID > 0 serializes fn with every other mutation of that contest.
func execute[T any](
	ctx context.Context,
	e *ArenaEngine,
	operation string,
	contestID int64,
	fn func(svc *domainServices) (T, error),
) (result T, err error) {
	start := time.Now()
	defer func() {
		e.recordOperation(ctx, operation, contestID, err, time.Since(start))
	}()

	if contestID > 0 && e.locker != nil {
		unlock, lockErr := e.locker.Lock(ctx, contestID)
		if lockErr != nil {
			return result, fmt.Errorf("failed to lock contest %d: %w", contestID, lockErr)
		}
		defer unlock()
	}

	uow := e.uowFactory.Create()
	if beginErr := uow.Begin(ctx); beginErr != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback()
			panic(r)
		}
	}()

	result, err = fn(e.servicesFor(uow))
	if err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to roll back transaction")
		}
		return result, err
	}

	if commitErr := uow.Commit(); commitErr != nil {
		var zero T
		return zero, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}
	return result, nil
}

// query runs a read-only fn in a unit of work that is always rolled back
func query[T any](ctx context.Context, e *ArenaEngine, fn func(svc *domainServices) (T, error)) (T, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return fn(e.servicesFor(uow))
}

func (e *ArenaEngine) recordOperation(ctx context.Context, operation string, contestID int64, err error, duration time.Duration) {
	errorKind := ""
	if err != nil {
		errorKind = string(entities.KindOf(err))
		if errorKind == "" {
			errorKind = "internal"
		}
	}
	if e.metrics != nil {
		e.metrics.RecordOperation(ctx, operation, errorKind, duration)
	}

	fields := log.Fields{
		"operation": operation,
		"duration":  duration,
	}
	if contestID > 0 {
		fields["contestID"] = contestID
	}
	switch errorKind {
	case "":
		log.WithFields(fields).Debug("Arena operation completed")
	case string(entities.ErrorKindValidation), string(entities.ErrorKindState), string(entities.ErrorKindNotFound):
		log.WithFields(fields).WithField("error", err).Info("Arena operation rejected")
	default:
		log.WithFields(fields).WithField("error", err).Error("Arena operation failed")
	}
}

// InitializeArena stores the arena configuration unless one exists
func (e *ArenaEngine) InitializeArena(ctx context.Context, arena *entities.Arena) (*entities.Arena, error) {
	return execute(ctx, e, OpInitializeArena, 0, func(svc *domainServices) (*entities.Arena, error) {
		return svc.arena.Initialize(ctx, arena)
	})
}

// RegisterParticipant registers the caller under a display name
func (e *ArenaEngine) RegisterParticipant(ctx context.Context, identity, displayName string) (*entities.Participant, error) {
	return execute(ctx, e, OpRegisterParticipant, 0, func(svc *domainServices) (*entities.Participant, error) {
		return svc.participants.Register(ctx, identity, displayName)
	})
}

// CreateContest stakes a new contest. The contest row is new, so no lock is needed.
func (e *ArenaEngine) CreateContest(ctx context.Context, initiator, opponent, topic string, stake int64, votingWindow time.Duration) (*entities.Contest, error) {
	contest, err := execute(ctx, e, OpCreateContest, 0, func(svc *domainServices) (*entities.Contest, error) {
		return svc.contests.CreateContest(ctx, initiator, opponent, topic, stake, votingWindow)
	})
	if err == nil && e.metrics != nil {
		e.metrics.RecordWager(ctx, string(entities.SideA), stake)
	}
	return contest, err
}

// AcceptContest matches the initiator's stake and opens voting
func (e *ArenaEngine) AcceptContest(ctx context.Context, contestID int64, caller string, stake int64) (*entities.Contest, error) {
	contest, err := execute(ctx, e, OpAcceptContest, contestID, func(svc *domainServices) (*entities.Contest, error) {
		return svc.contests.AcceptContest(ctx, contestID, caller, stake)
	})
	if err == nil && e.metrics != nil {
		e.metrics.RecordWager(ctx, string(entities.SideB), stake)
	}
	return contest, err
}

// CancelContest withdraws a proposed contest and refunds every wager
func (e *ArenaEngine) CancelContest(ctx context.Context, contestID int64, caller string) (*entities.Contest, error) {
	return execute(ctx, e, OpCancelContest, contestID, func(svc *domainServices) (*entities.Contest, error) {
		return svc.contests.CancelContest(ctx, contestID, caller)
	})
}

// PlaceWager backs a side of a contest
func (e *ArenaEngine) PlaceWager(ctx context.Context, contestID int64, bettor string, side entities.Side, amount int64) (*entities.Wager, error) {
	wager, err := execute(ctx, e, OpPlaceWager, contestID, func(svc *domainServices) (*entities.Wager, error) {
		return svc.wagers.PlaceWager(ctx, contestID, bettor, side, amount)
	})
	if err == nil && e.metrics != nil {
		e.metrics.RecordWager(ctx, string(side), amount)
	}
	return wager, err
}

// CastVote counts the bettor's wager as vote weight for its side
func (e *ArenaEngine) CastVote(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	return execute(ctx, e, OpCastVote, contestID, func(svc *domainServices) (*entities.Wager, error) {
		return svc.wagers.CastVote(ctx, contestID, bettor)
	})
}

// Settle resolves a contest whose voting window has closed; anyone may call it
func (e *ArenaEngine) Settle(ctx context.Context, contestID int64) (*interfaces.SettlementResult, error) {
	result, err := execute(ctx, e, OpSettle, contestID, func(svc *domainServices) (*interfaces.SettlementResult, error) {
		return svc.settlement.Settle(ctx, contestID)
	})
	if err == nil && e.metrics != nil {
		e.metrics.RecordSettlement(ctx, result.TotalPool, result.Fee)
	}
	return result, err
}

// Claim pays the bettor's winning wager. Claims lock only their own wager row.
func (e *ArenaEngine) Claim(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	wager, err := execute(ctx, e, OpClaim, 0, func(svc *domainServices) (*entities.Wager, error) {
		return svc.settlement.Claim(ctx, contestID, bettor)
	})
	if err == nil && e.metrics != nil && wager.Payout != nil {
		e.metrics.RecordClaim(ctx, *wager.Payout)
	}
	return wager, err
}

// GetArena returns the arena configuration and totals
func (e *ArenaEngine) GetArena(ctx context.Context) (*entities.Arena, error) {
	return query(ctx, e, func(svc *domainServices) (*entities.Arena, error) {
		return svc.arena.GetArena(ctx)
	})
}

// GetParticipant returns a registered participant
func (e *ArenaEngine) GetParticipant(ctx context.Context, identity string) (*entities.Participant, error) {
	return query(ctx, e, func(svc *domainServices) (*entities.Participant, error) {
		return svc.participants.GetParticipant(ctx, identity)
	})
}

// GetLeaderboard returns the top participants by rating
func (e *ArenaEngine) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error) {
	return query(ctx, e, func(svc *domainServices) ([]*entities.Participant, error) {
		return svc.participants.GetLeaderboard(ctx, limit)
	})
}

// GetContest returns a contest
func (e *ArenaEngine) GetContest(ctx context.Context, contestID int64) (*entities.Contest, error) {
	return query(ctx, e, func(svc *domainServices) (*entities.Contest, error) {
		return svc.contests.GetContest(ctx, contestID)
	})
}

// ListContests returns contests, newest first, optionally filtered by status
func (e *ArenaEngine) ListContests(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error) {
	return query(ctx, e, func(svc *domainServices) ([]*entities.Contest, error) {
		return svc.contests.ListContests(ctx, status, limit)
	})
}

// GetEscrow returns the escrow held for a contest
func (e *ArenaEngine) GetEscrow(ctx context.Context, contestID int64) (*entities.Escrow, error) {
	return query(ctx, e, func(svc *domainServices) (*entities.Escrow, error) {
		return svc.contests.GetEscrow(ctx, contestID)
	})
}

// GetOdds prices both sides of a contest
func (e *ArenaEngine) GetOdds(ctx context.Context, contestID int64) (*entities.Odds, error) {
	return query(ctx, e, func(svc *domainServices) (*entities.Odds, error) {
		return svc.contests.GetOdds(ctx, contestID)
	})
}

// ListParticipants returns registered participants in registration order
func (e *ArenaEngine) ListParticipants(ctx context.Context, limit int) ([]*entities.Participant, error) {
	return query(ctx, e, func(svc *domainServices) ([]*entities.Participant, error) {
		return svc.participants.ListParticipants(ctx, limit)
	})
}

// GetWager returns the bettor's wager on a contest
func (e *ArenaEngine) GetWager(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	return query(ctx, e, func(svc *domainServices) (*entities.Wager, error) {
		return svc.wagers.GetWager(ctx, contestID, bettor)
	})
}

// GetWagers returns every wager of a contest
func (e *ArenaEngine) GetWagers(ctx context.Context, contestID int64) ([]*entities.Wager, error) {
	return query(ctx, e, func(svc *domainServices) ([]*entities.Wager, error) {
		return svc.wagers.GetWagers(ctx, contestID)
	})
}
