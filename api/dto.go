package api

import (
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"
	"arenaapp/domain/utils"
)

// ArenaDTO is the public view of the arena configuration
type ArenaDTO struct {
	FeeBps              int64  `json:"fee_bps"`
	Fee                 string `json:"fee"`
	MinBet              int64  `json:"min_bet"`
	MinStakeToCreate    int64  `json:"min_stake_to_create"`
	DefaultVotingWindow int64  `json:"default_voting_window_seconds"`
	ContestCount        int64  `json:"contest_count"`
	TotalVolume         int64  `json:"total_volume"`
	TotalVolumeDisplay  string `json:"total_volume_display"`
	Treasury            string `json:"treasury"`
}

// ParticipantDTO is the public view of a participant
type ParticipantDTO struct {
	Identity     string    `json:"identity"`
	DisplayName  string    `json:"display_name"`
	Rating       int       `json:"rating"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Draws        int       `json:"draws"`
	Earnings     int64     `json:"earnings"`
	RegisteredAt time.Time `json:"registered_at"`
}

// SideDTO carries one side's totals
type SideDTO struct {
	Participant string `json:"participant"`
	Stake       int64  `json:"stake"`
	Pool        int64  `json:"pool"`
	Votes       int64  `json:"votes"`
}

// ContestDTO is the public view of a contest
type ContestDTO struct {
	ID           int64      `json:"id"`
	Topic        string     `json:"topic"`
	Status       string     `json:"status"`
	SideA        SideDTO    `json:"side_a"`
	SideB        SideDTO    `json:"side_b"`
	WagerCount   int        `json:"wager_count"`
	VotingWindow int64      `json:"voting_window_seconds"`
	Fee          int64      `json:"fee"`
	PrizePool    int64      `json:"prize_pool"`
	Winner       *string    `json:"winner,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	VotingEndsAt *time.Time `json:"voting_ends_at,omitempty"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

// WagerDTO is the public view of a wager
type WagerDTO struct {
	ContestID int64      `json:"contest_id"`
	Bettor    string     `json:"bettor"`
	Side      string     `json:"side"`
	Amount    int64      `json:"amount"`
	HasVoted  bool       `json:"has_voted"`
	Claimed   bool       `json:"claimed"`
	Payout    *int64     `json:"payout,omitempty"`
	PlacedAt  time.Time  `json:"placed_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	Odds      *OddsDTO   `json:"odds,omitempty"`
}

// SideOddsDTO is one side's pool and payout multipliers, quoted to two places
type SideOddsDTO struct {
	Pool          int64  `json:"pool"`
	Multiplier    string `json:"multiplier,omitempty"`
	NetMultiplier string `json:"net_multiplier,omitempty"`
}

// OddsDTO prices both sides of a contest
type OddsDTO struct {
	ContestID int64       `json:"contest_id"`
	Status    string      `json:"status"`
	TotalPool int64       `json:"total_pool"`
	Fee       int64       `json:"fee"`
	PrizePool int64       `json:"prize_pool"`
	SideA     SideOddsDTO `json:"side_a"`
	SideB     SideOddsDTO `json:"side_b"`
}

// EscrowDTO is the balance held for a contest
type EscrowDTO struct {
	ContestID int64  `json:"contest_id"`
	Balance   int64  `json:"balance"`
	Display   string `json:"display"`
}

// SettlementDTO describes a settled contest
type SettlementDTO struct {
	Contest     ContestDTO     `json:"contest"`
	Winner      string         `json:"winner"`
	Loser       string         `json:"loser"`
	TotalPool   int64          `json:"total_pool"`
	Fee         int64          `json:"fee"`
	PrizePool   int64          `json:"prize_pool"`
	RatingDelta map[string]int `json:"rating_delta"`
}

// ErrorDTO is the body of every failed request
type ErrorDTO struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request bodies

type registerRequest struct {
	DisplayName string `json:"display_name"`
}

type createContestRequest struct {
	Opponent            string `json:"opponent"`
	Topic               string `json:"topic"`
	Stake               int64  `json:"stake"`
	VotingWindowSeconds *int64 `json:"voting_window_seconds"`
}

type stakeRequest struct {
	Stake int64 `json:"stake"`
}

type wagerRequest struct {
	Side   string `json:"side"`
	Amount int64  `json:"amount"`
}

func toArenaDTO(a *entities.Arena) ArenaDTO {
	return ArenaDTO{
		FeeBps:              a.FeeBps,
		Fee:                 utils.FormatBps(a.FeeBps),
		MinBet:              a.MinBet,
		MinStakeToCreate:    a.MinStakeToCreate,
		DefaultVotingWindow: int64(a.DefaultVotingWindow / time.Second),
		ContestCount:        a.ContestCount,
		TotalVolume:         a.TotalVolume,
		TotalVolumeDisplay:  utils.FormatSOL(a.TotalVolume),
		Treasury:            a.Treasury,
	}
}

func toParticipantDTO(p *entities.Participant) ParticipantDTO {
	return ParticipantDTO{
		Identity:     p.Identity,
		DisplayName:  p.DisplayName,
		Rating:       p.Rating,
		Wins:         p.Wins,
		Losses:       p.Losses,
		Draws:        p.Draws,
		Earnings:     p.Earnings,
		RegisteredAt: p.RegisteredAt,
	}
}

func toParticipantDTOs(participants []*entities.Participant) []ParticipantDTO {
	out := make([]ParticipantDTO, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantDTO(p))
	}
	return out
}

func toSideDTO(c *entities.Contest, side entities.Side) SideDTO {
	totals := c.TotalsFor(side)
	return SideDTO{
		Participant: c.ParticipantFor(side),
		Stake:       totals.Stake,
		Pool:        totals.Pool,
		Votes:       totals.Votes,
	}
}

func toContestDTO(c *entities.Contest) ContestDTO {
	dto := ContestDTO{
		ID:           c.ID,
		Topic:        c.Topic,
		Status:       string(c.Status),
		SideA:        toSideDTO(c, entities.SideA),
		SideB:        toSideDTO(c, entities.SideB),
		WagerCount:   c.WagerCount,
		VotingWindow: int64(c.VotingWindow / time.Second),
		Fee:          c.Fee,
		PrizePool:    c.PrizePool,
		CreatedAt:    c.CreatedAt,
		AcceptedAt:   c.AcceptedAt,
		VotingEndsAt: c.VotingEndsAt,
		SettledAt:    c.SettledAt,
		CancelledAt:  c.CancelledAt,
	}
	if c.Winner != nil {
		winner := string(*c.Winner)
		dto.Winner = &winner
	}
	return dto
}

func toContestDTOs(contests []*entities.Contest) []ContestDTO {
	out := make([]ContestDTO, 0, len(contests))
	for _, c := range contests {
		out = append(out, toContestDTO(c))
	}
	return out
}

func toWagerDTO(w *entities.Wager) WagerDTO {
	return WagerDTO{
		ContestID: w.ContestID,
		Bettor:    w.Bettor,
		Side:      string(w.Side),
		Amount:    w.Amount,
		HasVoted:  w.HasVoted,
		Claimed:   w.Claimed,
		Payout:    w.Payout,
		PlacedAt:  w.PlacedAt,
		ClaimedAt: w.ClaimedAt,
	}
}

func toWagerDTOs(wagers []*entities.Wager) []WagerDTO {
	out := make([]WagerDTO, 0, len(wagers))
	for _, w := range wagers {
		out = append(out, toWagerDTO(w))
	}
	return out
}

func toSideOddsDTO(o entities.SideOdds) SideOddsDTO {
	dto := SideOddsDTO{Pool: o.Pool}
	if o.Multiplier != nil {
		dto.Multiplier = o.Multiplier.StringFixed(2)
	}
	if o.NetMultiplier != nil {
		dto.NetMultiplier = o.NetMultiplier.StringFixed(2)
	}
	return dto
}

func toOddsDTO(o *entities.Odds) OddsDTO {
	return OddsDTO{
		ContestID: o.ContestID,
		Status:    string(o.Status),
		TotalPool: o.TotalPool,
		Fee:       o.Fee,
		PrizePool: o.PrizePool,
		SideA:     toSideOddsDTO(o.For(entities.SideA)),
		SideB:     toSideOddsDTO(o.For(entities.SideB)),
	}
}

func toEscrowDTO(e *entities.Escrow) EscrowDTO {
	return EscrowDTO{
		ContestID: e.ContestID,
		Balance:   e.Balance,
		Display:   utils.FormatSOL(e.Balance),
	}
}

func toSettlementDTO(r *interfaces.SettlementResult) SettlementDTO {
	return SettlementDTO{
		Contest:     toContestDTO(r.Contest),
		Winner:      r.Winner.Identity,
		Loser:       r.Loser.Identity,
		TotalPool:   r.TotalPool,
		Fee:         r.Fee,
		PrizePool:   r.PrizePool,
		RatingDelta: r.RatingDelta,
	}
}
