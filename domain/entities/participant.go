package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxDisplayNameLength is the longest display name a participant can register
	MaxDisplayNameLength = 32

	// InitialRating is the rating every participant starts with
	InitialRating = 1000
)

// Participant is a registered contestant with a rating and win/loss record
type Participant struct {
	Identity     string    `db:"identity"`
	DisplayName  string    `db:"display_name"`
	Rating       int       `db:"rating"`
	Wins         int       `db:"wins"`
	Losses       int       `db:"losses"`
	Draws        int       `db:"draws"`
	Earnings     int64     `db:"earnings"`
	RegisteredAt time.Time `db:"registered_at"`
}

// NewParticipant validates the name and returns a participant with the initial rating
func NewParticipant(identity, displayName string, now time.Time) (*Participant, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, ErrIdentityEmpty
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	return &Participant{
		Identity:     identity,
		DisplayName:  displayName,
		Rating:       InitialRating,
		RegisteredAt: now,
	}, nil
}

// ValidateDisplayName checks the name is present and at most 32 characters
func ValidateDisplayName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return ErrNameTooLong
	}
	return nil
}

// GamesPlayed returns the number of resolved contests the participant took part in
func (p *Participant) GamesPlayed() int {
	return p.Wins + p.Losses + p.Draws
}

// WinRate returns the share of games won, 0 when no games were played
func (p *Participant) WinRate() float64 {
	games := p.GamesPlayed()
	if games == 0 {
		return 0
	}
	return float64(p.Wins) / float64(games)
}

// RecordWin applies a win with the new rating and the payout the participant's own stake earned
func (p *Participant) RecordWin(newRating int, earned int64) error {
	earnings, err := CheckedAdd(p.Earnings, earned)
	if err != nil {
		return err
	}
	p.Rating = newRating
	p.Wins++
	p.Earnings = earnings
	return nil
}

// RecordLoss applies a loss with the new rating
func (p *Participant) RecordLoss(newRating int) {
	p.Rating = newRating
	p.Losses++
}
