package entities

import (
	"time"
)

const (
	// MaxFeeBps is 100% expressed in basis points
	MaxFeeBps = 10000

	// MinVotingWindow and MaxVotingWindow bound how long a live contest collects votes
	MinVotingWindow = 5 * time.Minute
	MaxVotingWindow = 24 * time.Hour
)

// Arena is the singleton configuration and running totals for one deployment
type Arena struct {
	FeeBps              int64         `db:"fee_bps"`
	MinBet              int64         `db:"min_bet"`
	MinStakeToCreate    int64         `db:"min_stake_to_create"`
	DefaultVotingWindow time.Duration `db:"default_voting_window_seconds"`
	ContestCount        int64         `db:"contest_count"`
	TotalVolume         int64         `db:"total_volume"`
	Treasury            string        `db:"treasury"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// TreasuryAccount returns the logical account that receives settlement fees
func (a *Arena) TreasuryAccount() Account {
	return TreasuryAccount(a.Treasury)
}

// Validate checks the configurable parameters of the arena
func (a *Arena) Validate() error {
	if a.FeeBps < 0 || a.FeeBps > MaxFeeBps {
		return ErrInvalidFeeBps
	}
	if a.MinBet <= 0 || a.MinStakeToCreate <= 0 {
		return ErrInvalidAmount
	}
	if a.Treasury == "" {
		return ErrInvalidTreasury
	}
	return ValidateVotingWindow(a.DefaultVotingWindow)
}

// ValidateVotingWindow checks the window is within [MinVotingWindow, MaxVotingWindow]
func ValidateVotingWindow(window time.Duration) error {
	if window < MinVotingWindow || window > MaxVotingWindow {
		return ErrInvalidVotingWindow
	}
	return nil
}
