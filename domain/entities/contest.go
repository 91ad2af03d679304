package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTopicLength is the longest topic a contest can carry
const MaxTopicLength = 256

// Side identifies one of the two positions in a contest
type Side string

const (
	// SideA is the initiator's side
	SideA Side = "a"
	// SideB is the opponent's side
	SideB Side = "b"
)

// Sides lists both sides in their fixed order
var Sides = [2]Side{SideA, SideB}

// ParseSide converts user input into a Side
func ParseSide(s string) (Side, error) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	if !side.IsValid() {
		return "", ErrInvalidSide
	}
	return side, nil
}

// IsValid reports whether s is one of the two sides
func (s Side) IsValid() bool {
	return s == SideA || s == SideB
}

// Index maps a side to its position in per-side arrays
func (s Side) Index() int {
	if s == SideB {
		return 1
	}
	return 0
}

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// ContestStatus represents the lifecycle state of a contest
type ContestStatus string

const (
	ContestStatusProposed  ContestStatus = "proposed"
	ContestStatusLive      ContestStatus = "live"
	ContestStatusResolved  ContestStatus = "resolved"
	ContestStatusCancelled ContestStatus = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s ContestStatus) IsValid() bool {
	switch s {
	case ContestStatusProposed, ContestStatusLive, ContestStatusResolved, ContestStatusCancelled:
		return true
	}
	return false
}

// SideTotals aggregates the money and votes behind one side
type SideTotals struct {
	Stake int64 `db:"stake"`
	Pool  int64 `db:"pool"`
	Votes int64 `db:"votes"`
}

// Contest is one challenge between an initiator (side A) and an opponent (side B)
type Contest struct {
	ID           int64         `db:"id"`
	Initiator    string        `db:"initiator"`
	Opponent     string        `db:"opponent"`
	Topic        string        `db:"topic"`
	Status       ContestStatus `db:"status"`
	Totals       [2]SideTotals `db:"-"`
	WagerCount   int           `db:"wager_count"`
	VotingWindow time.Duration `db:"voting_window_seconds"`
	Fee          int64         `db:"fee"`
	PrizePool    int64         `db:"prize_pool"`
	Winner       *Side         `db:"winner"`
	CreatedAt    time.Time     `db:"created_at"`
	AcceptedAt   *time.Time    `db:"accepted_at"`
	VotingEndsAt *time.Time    `db:"voting_ends_at"`
	SettledAt    *time.Time    `db:"settled_at"`
	CancelledAt  *time.Time    `db:"cancelled_at"`
}

// NewContest builds a proposed contest with empty totals after validating its inputs
func NewContest(id int64, initiator, opponent, topic string, votingWindow time.Duration, now time.Time) (*Contest, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}
	if err := ValidateVotingWindow(votingWindow); err != nil {
		return nil, err
	}
	if initiator == opponent {
		return nil, ErrSameParticipant
	}
	return &Contest{
		ID:           id,
		Initiator:    initiator,
		Opponent:     opponent,
		Topic:        topic,
		Status:       ContestStatusProposed,
		VotingWindow: votingWindow,
		CreatedAt:    now,
	}, nil
}

// ValidateTopic checks the topic is present and at most 256 characters
func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return ErrTopicEmpty
	}
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return ErrTopicTooLong
	}
	return nil
}

// TotalsFor returns the totals for the given side
func (c *Contest) TotalsFor(side Side) *SideTotals {
	return &c.Totals[side.Index()]
}

// ParticipantFor returns the participant identity that owns a side
func (c *Contest) ParticipantFor(side Side) string {
	if side == SideB {
		return c.Opponent
	}
	return c.Initiator
}

// TotalPool returns the sum of both pools
func (c *Contest) TotalPool() (int64, error) {
	return CheckedAdd(c.Totals[0].Pool, c.Totals[1].Pool)
}

// IsProposed, IsLive, IsResolved and IsCancelled check the lifecycle state
func (c *Contest) IsProposed() bool  { return c.Status == ContestStatusProposed }
func (c *Contest) IsLive() bool      { return c.Status == ContestStatusLive }
func (c *Contest) IsResolved() bool  { return c.Status == ContestStatusResolved }
func (c *Contest) IsCancelled() bool { return c.Status == ContestStatusCancelled }

// IsVotingExpired reports whether a voting deadline exists and has passed
func (c *Contest) IsVotingExpired(now time.Time) bool {
	return c.VotingEndsAt != nil && !now.Before(*c.VotingEndsAt)
}

// CanAccept checks that caller may accept the contest with the given stake
func (c *Contest) CanAccept(caller string, stake int64) error {
	if !c.IsProposed() {
		return ErrContestNotProposed
	}
	if caller != c.Opponent {
		return ErrNotOpponent
	}
	if stake < c.TotalsFor(SideA).Stake {
		return ErrStakeMustMatch
	}
	return nil
}

// CanCancel checks that caller may cancel the contest
func (c *Contest) CanCancel(caller string) error {
	if !c.IsProposed() {
		return ErrContestNotProposed
	}
	if caller != c.Initiator {
		return ErrNotInitiator
	}
	return nil
}

// CanAcceptWagers checks that the contest is open for new wagers at now
func (c *Contest) CanAcceptWagers(now time.Time) error {
	if !c.IsProposed() && !c.IsLive() {
		return ErrContestClosed
	}
	if c.IsVotingExpired(now) {
		return ErrVotingEnded
	}
	return nil
}

// CanVote checks that votes are being collected at now
func (c *Contest) CanVote(now time.Time) error {
	if !c.IsLive() {
		return ErrContestNotLive
	}
	if c.IsVotingExpired(now) {
		return ErrVotingEnded
	}
	return nil
}

// CanSettle checks that the voting window closed and the contest is still live
func (c *Contest) CanSettle(now time.Time) error {
	if c.IsResolved() {
		return ErrAlreadySettled
	}
	if !c.IsLive() {
		return ErrContestNotLive
	}
	if !c.IsVotingExpired(now) {
		return ErrVotingNotEnded
	}
	return nil
}

// AddStake records a side owner's stake: it funds the side's stake and pool and counts as its vote
func (c *Contest) AddStake(side Side, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	totals := *c.TotalsFor(side)
	var err error
	if totals.Stake, err = CheckedAdd(totals.Stake, amount); err != nil {
		return err
	}
	if totals.Pool, err = CheckedAdd(totals.Pool, amount); err != nil {
		return err
	}
	if totals.Votes, err = CheckedAdd(totals.Votes, amount); err != nil {
		return err
	}
	if _, err := CheckedAdd(c.Totals[side.Opposite().Index()].Pool, totals.Pool); err != nil {
		return err
	}
	*c.TotalsFor(side) = totals
	c.WagerCount++
	return nil
}

// AddWager adds a third-party wager to a side's pool
func (c *Contest) AddWager(side Side, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	totals := c.TotalsFor(side)
	pool, err := CheckedAdd(totals.Pool, amount)
	if err != nil {
		return err
	}
	if _, err := CheckedAdd(c.Totals[side.Opposite().Index()].Pool, pool); err != nil {
		return err
	}
	totals.Pool = pool
	c.WagerCount++
	return nil
}

// AddVotes adds vote weight to a side
func (c *Contest) AddVotes(side Side, weight int64) error {
	totals := c.TotalsFor(side)
	votes, err := CheckedAdd(totals.Votes, weight)
	if err != nil {
		return err
	}
	totals.Votes = votes
	return nil
}

// Accept moves the contest live and opens the voting window
func (c *Contest) Accept(now time.Time) {
	endsAt := now.Add(c.VotingWindow)
	c.Status = ContestStatusLive
	c.AcceptedAt = &now
	c.VotingEndsAt = &endsAt
}

// Cancel closes a proposed contest
func (c *Contest) Cancel(now time.Time) {
	c.Status = ContestStatusCancelled
	c.CancelledAt = &now
}

// DetermineWinner picks the side with more votes, then the larger pool, then side A
func (c *Contest) DetermineWinner() Side {
	a, b := c.Totals[0], c.Totals[1]
	switch {
	case a.Votes > b.Votes:
		return SideA
	case b.Votes > a.Votes:
		return SideB
	case a.Pool > b.Pool:
		return SideA
	case b.Pool > a.Pool:
		return SideB
	default:
		return SideA
	}
}

// Resolve records the settlement outcome and moves the contest to its terminal state
func (c *Contest) Resolve(winner Side, fee, prizePool int64, now time.Time) {
	c.Status = ContestStatusResolved
	c.Winner = &winner
	c.Fee = fee
	c.PrizePool = prizePool
	c.SettledAt = &now
}

// WinningPool returns the pool of the resolved winner
func (c *Contest) WinningPool() int64 {
	if c.Winner == nil {
		return 0
	}
	return c.TotalsFor(*c.Winner).Pool
}

// PayoutFor returns the share of the prize pool owed to a winning wager of amount
func (c *Contest) PayoutFor(amount int64) (int64, error) {
	return ComputePayout(amount, c.PrizePool, c.WinningPool())
}
