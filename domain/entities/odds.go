package entities

import (
	"github.com/shopspring/decimal"
)

// multiplierPlaces is the precision odds are quoted with
const multiplierPlaces = 2

// SideOdds is the pool behind one side and what one unit wagered on it returns
type SideOdds struct {
	Side Side
	Pool int64
	// Multiplier is totalPool / pool, nil while nobody backs the side
	Multiplier *decimal.Decimal
	// NetMultiplier is the same ratio after the fee, which is what a claim actually pays
	NetMultiplier *decimal.Decimal
}

// Odds is the current price of both sides of a contest
type Odds struct {
	ContestID int64
	Status    ContestStatus
	TotalPool int64
	Fee       int64
	PrizePool int64
	Sides     [2]SideOdds
}

// For returns the odds of one side
func (o *Odds) For(side Side) SideOdds {
	return o.Sides[side.Index()]
}

// ComputeOdds prices both sides from the pools. A resolved contest quotes the fee it
// was actually charged; otherwise the fee is what settling now would charge at feeBps.
func ComputeOdds(c *Contest, feeBps int64) (*Odds, error) {
	total, err := c.TotalPool()
	if err != nil {
		return nil, err
	}

	fee := c.Fee
	if !c.IsResolved() {
		if fee, err = ComputeFee(total, feeBps); err != nil {
			return nil, err
		}
	}
	prize, err := CheckedSub(total, fee)
	if err != nil {
		return nil, err
	}

	odds := &Odds{
		ContestID: c.ID,
		Status:    c.Status,
		TotalPool: total,
		Fee:       fee,
		PrizePool: prize,
	}
	for _, side := range Sides {
		pool := c.TotalsFor(side).Pool
		sideOdds := SideOdds{Side: side, Pool: pool}
		if pool > 0 {
			gross := multiplier(total, pool)
			net := multiplier(prize, pool)
			sideOdds.Multiplier = &gross
			sideOdds.NetMultiplier = &net
		}
		odds.Sides[side.Index()] = sideOdds
	}
	return odds, nil
}

func multiplier(numerator, pool int64) decimal.Decimal {
	return decimal.NewFromInt(numerator).DivRound(decimal.NewFromInt(pool), multiplierPlaces)
}
