package entities

import (
	"time"
)

// Wager is one identity's position on one contest
type Wager struct {
	ID        int64      `db:"id"`
	ContestID int64      `db:"contest_id"`
	Bettor    string     `db:"bettor"`
	Side      Side       `db:"side"`
	Amount    int64      `db:"amount"`
	HasVoted  bool       `db:"has_voted"`
	Claimed   bool       `db:"claimed"`
	Payout    *int64     `db:"payout"`
	PlacedAt  time.Time  `db:"placed_at"`
	ClaimedAt *time.Time `db:"claimed_at"`
}

// NewWager creates an unvoted wager
func NewWager(contestID int64, bettor string, side Side, amount int64, now time.Time) (*Wager, error) {
	if bettor == "" {
		return nil, ErrIdentityEmpty
	}
	if !side.IsValid() {
		return nil, ErrInvalidSide
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Wager{
		ContestID: contestID,
		Bettor:    bettor,
		Side:      side,
		Amount:    amount,
		PlacedAt:  now,
	}, nil
}

// Vote marks the wager as voted; its own amount becomes vote weight on its own side
func (w *Wager) Vote() error {
	if w.HasVoted {
		return ErrAlreadyVoted
	}
	w.HasVoted = true
	return nil
}

// CanClaim checks the wager backs the winner of a resolved contest and is unclaimed
func (w *Wager) CanClaim(contest *Contest) error {
	if !contest.IsResolved() || contest.Winner == nil {
		return ErrContestNotResolved
	}
	if w.Side != *contest.Winner {
		return ErrNotWinner
	}
	if w.Claimed {
		return ErrAlreadyClaimed
	}
	return nil
}

// MarkClaimed flips the claimed flag and records what was paid
func (w *Wager) MarkClaimed(payout int64, now time.Time) {
	w.Claimed = true
	w.Payout = &payout
	w.ClaimedAt = &now
}
