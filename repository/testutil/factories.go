package testutil

import (
	"time"

	"arenaapp/domain/entities"
)

// TestNow is a fixed, microsecond-truncated instant that survives a round trip through Postgres
var TestNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// CreateTestArena creates an arena configuration with default values
func CreateTestArena() *entities.Arena {
	return &entities.Arena{
		FeeBps:              500,
		MinBet:              10,
		MinStakeToCreate:    100,
		DefaultVotingWindow: time.Hour,
		Treasury:            "house",
		CreatedAt:           TestNow,
		UpdatedAt:           TestNow,
	}
}

// CreateTestParticipant creates a participant with the initial rating
func CreateTestParticipant(identity string) *entities.Participant {
	return &entities.Participant{
		Identity:     identity,
		DisplayName:  identity,
		Rating:       entities.InitialRating,
		RegisteredAt: TestNow,
	}
}

// CreateTestContest creates a proposed contest with the initiator's stake recorded
func CreateTestContest(id int64, initiator, opponent string, stake int64) *entities.Contest {
	contest, err := entities.NewContest(id, initiator, opponent, "Tabs or spaces", time.Hour, TestNow)
	if err != nil {
		panic(err)
	}
	if err := contest.AddStake(entities.SideA, stake); err != nil {
		panic(err)
	}
	return contest
}

// CreateTestWager creates an unvoted wager
func CreateTestWager(contestID int64, bettor string, side entities.Side, amount int64) *entities.Wager {
	wager, err := entities.NewWager(contestID, bettor, side, amount, TestNow)
	if err != nil {
		panic(err)
	}
	return wager
}
