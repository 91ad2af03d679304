package entities

import (
	"errors"
	"math"
)

// ErrorKind classifies arena failures so callers can decide how to react
type ErrorKind string

const (
	// ErrorKindValidation marks bad input; nothing was mutated and a corrected retry may succeed
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindState marks a lifecycle precondition failure (wrong status, window, caller)
	ErrorKindState ErrorKind = "state"
	// ErrorKindNotFound marks a missing arena, participant, contest or wager
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindArithmetic marks an overflow; the whole operation is aborted
	ErrorKindArithmetic ErrorKind = "arithmetic"
	// ErrorKindInvariant marks a broken bookkeeping invariant
	ErrorKindInvariant ErrorKind = "invariant"
)

// ArenaError is the typed failure returned by every arena operation
type ArenaError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *ArenaError) Error() string {
	return e.Message
}

func newArenaError(kind ErrorKind, code, message string) *ArenaError {
	return &ArenaError{Kind: kind, Code: code, Message: message}
}

// Validation errors
var (
	ErrNameEmpty           = newArenaError(ErrorKindValidation, "name_empty", "name cannot be empty")
	ErrNameTooLong         = newArenaError(ErrorKindValidation, "name_too_long", "name exceeds 32 characters")
	ErrIdentityEmpty       = newArenaError(ErrorKindValidation, "identity_empty", "identity cannot be empty")
	ErrTopicEmpty          = newArenaError(ErrorKindValidation, "topic_empty", "topic cannot be empty")
	ErrTopicTooLong        = newArenaError(ErrorKindValidation, "topic_too_long", "topic exceeds 256 characters")
	ErrStakeTooLow         = newArenaError(ErrorKindValidation, "stake_too_low", "stake is below the minimum required to create a contest")
	ErrStakeMustMatch      = newArenaError(ErrorKindValidation, "stake_must_match", "stake must match or exceed the initiator's stake")
	ErrInvalidVotingWindow = newArenaError(ErrorKindValidation, "invalid_voting_window", "voting window must be between 5 minutes and 24 hours")
	ErrBetTooSmall         = newArenaError(ErrorKindValidation, "bet_too_small", "bet is below the minimum amount")
	ErrInvalidAmount       = newArenaError(ErrorKindValidation, "invalid_amount", "amount must be positive")
	ErrInvalidSide         = newArenaError(ErrorKindValidation, "invalid_side", "side must be 'a' or 'b'")
	ErrSameParticipant     = newArenaError(ErrorKindValidation, "same_participant", "cannot challenge yourself")
	ErrInvalidFeeBps       = newArenaError(ErrorKindValidation, "invalid_fee_bps", "fee must be between 0 and 10000 basis points")
	ErrInvalidTreasury     = newArenaError(ErrorKindValidation, "invalid_treasury", "treasury account cannot be empty")
	ErrInvalidStatus       = newArenaError(ErrorKindValidation, "invalid_status", "unknown contest status")
)

// State-precondition errors
var (
	ErrArenaAlreadyInitialized = newArenaError(ErrorKindState, "arena_initialized", "arena is already initialized")
	ErrParticipantExists       = newArenaError(ErrorKindState, "participant_exists", "participant is already registered")
	ErrContestNotProposed      = newArenaError(ErrorKindState, "contest_not_open", "contest is not open for acceptance")
	ErrContestNotLive          = newArenaError(ErrorKindState, "contest_not_live", "contest is not live")
	ErrContestClosed           = newArenaError(ErrorKindState, "contest_closed", "contest is not accepting wagers")
	ErrContestNotResolved      = newArenaError(ErrorKindState, "contest_not_settled", "contest has not been settled")
	ErrAlreadySettled          = newArenaError(ErrorKindState, "already_settled", "contest has already been settled")
	ErrVotingNotEnded          = newArenaError(ErrorKindState, "voting_not_ended", "voting period has not ended")
	ErrVotingEnded             = newArenaError(ErrorKindState, "voting_ended", "voting period has ended")
	ErrDuplicateWager          = newArenaError(ErrorKindState, "duplicate_wager", "identity already holds a wager on this contest")
	ErrOpponentMustAccept      = newArenaError(ErrorKindState, "opponent_must_accept", "the designated opponent must accept the contest instead of betting")
	ErrAlreadyVoted            = newArenaError(ErrorKindState, "already_voted", "already voted")
	ErrAlreadyClaimed          = newArenaError(ErrorKindState, "already_claimed", "winnings already claimed")
	ErrNotWinner               = newArenaError(ErrorKindState, "not_winner", "you did not win this contest")
	ErrNotOpponent             = newArenaError(ErrorKindState, "not_opponent", "only the designated opponent can accept")
	ErrNotInitiator            = newArenaError(ErrorKindState, "not_initiator", "only the initiator can cancel")
)

// Not-found errors
var (
	ErrArenaNotInitialized = newArenaError(ErrorKindNotFound, "arena_not_initialized", "arena has not been initialized")
	ErrParticipantNotFound = newArenaError(ErrorKindNotFound, "participant_not_found", "participant not found")
	ErrContestNotFound     = newArenaError(ErrorKindNotFound, "contest_not_found", "contest not found")
	ErrWagerNotFound       = newArenaError(ErrorKindNotFound, "wager_not_found", "wager not found")
)

// Arithmetic and invariant errors
var (
	ErrOverflow         = newArenaError(ErrorKindArithmetic, "overflow", "arithmetic overflow")
	ErrZeroWinningPool  = newArenaError(ErrorKindInvariant, "zero_winning_pool", "winning side has an empty pool")
	ErrEscrowMismatch   = newArenaError(ErrorKindInvariant, "escrow_mismatch", "escrow balance does not match contest pools")
	ErrEscrowOverdrawn  = newArenaError(ErrorKindInvariant, "escrow_overdrawn", "escrow balance is insufficient for withdrawal")
	ErrPayoutExceedsPot = newArenaError(ErrorKindInvariant, "payout_exceeds_pot", "payout exceeds prize pool")
)

// KindOf returns the kind of the first ArenaError in err's chain, or "" when there is none
func KindOf(err error) ErrorKind {
	var arenaErr *ArenaError
	if errors.As(err, &arenaErr) {
		return arenaErr.Kind
	}
	return ""
}

// CheckedAdd adds two non-negative amounts, failing with ErrOverflow instead of wrapping
func CheckedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedSub subtracts b from a, failing with ErrOverflow on underflow below zero
func CheckedSub(a, b int64) (int64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}
