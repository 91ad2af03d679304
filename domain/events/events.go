package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeParticipantRegistered EventType = "participant_registered"
	EventTypeContestCreated        EventType = "contest_created"
	EventTypeContestAccepted       EventType = "contest_accepted"
	EventTypeContestCancelled      EventType = "contest_cancelled"
	EventTypeWagerPlaced           EventType = "wager_placed"
	EventTypeVoteCast              EventType = "vote_cast"
	EventTypeContestSettled        EventType = "contest_settled"
	EventTypeWinningsClaimed       EventType = "winnings_claimed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ParticipantRegisteredEvent is published when a new participant joins the arena
type ParticipantRegisteredEvent struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
}

func (e ParticipantRegisteredEvent) Type() EventType {
	return EventTypeParticipantRegistered
}

// ContestCreatedEvent is published when an initiator stakes a new contest
type ContestCreatedEvent struct {
	ContestID    int64  `json:"contest_id"`
	Initiator    string `json:"initiator"`
	Opponent     string `json:"opponent"`
	Topic        string `json:"topic"`
	Stake        int64  `json:"stake"`
	VotingWindow int64  `json:"voting_window_seconds"`
}

func (e ContestCreatedEvent) Type() EventType {
	return EventTypeContestCreated
}

// ContestAcceptedEvent is published when the opponent matches the stake and voting opens
type ContestAcceptedEvent struct {
	ContestID    int64  `json:"contest_id"`
	Opponent     string `json:"opponent"`
	Stake        int64  `json:"stake"`
	VotingEndsAt int64  `json:"voting_ends_at"`
}

func (e ContestAcceptedEvent) Type() EventType {
	return EventTypeContestAccepted
}

// ContestCancelledEvent is published when the initiator withdraws a proposed contest
type ContestCancelledEvent struct {
	ContestID int64 `json:"contest_id"`
	Refunded  int64 `json:"refunded"`
}

func (e ContestCancelledEvent) Type() EventType {
	return EventTypeContestCancelled
}

// WagerPlacedEvent is published when a bettor backs a side
type WagerPlacedEvent struct {
	ContestID int64  `json:"contest_id"`
	Bettor    string `json:"bettor"`
	Side      string `json:"side"`
	Amount    int64  `json:"amount"`
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// VoteCastEvent is published when a bettor's stake is counted as vote weight
type VoteCastEvent struct {
	ContestID int64  `json:"contest_id"`
	Bettor    string `json:"bettor"`
	Side      string `json:"side"`
	Weight    int64  `json:"weight"`
}

func (e VoteCastEvent) Type() EventType {
	return EventTypeVoteCast
}

// ContestSettledEvent is published when the voting window closed and a winner was fixed
type ContestSettledEvent struct {
	ContestID    int64  `json:"contest_id"`
	Topic        string `json:"topic"`
	Winner       string `json:"winner"`
	WinningSide  string `json:"winning_side"`
	Loser        string `json:"loser"`
	TotalPool    int64  `json:"total_pool"`
	Fee          int64  `json:"fee"`
	PrizePool    int64  `json:"prize_pool"`
	WinnerRating int    `json:"winner_rating"`
	LoserRating  int    `json:"loser_rating"`
	VotesForA    int64  `json:"votes_a"`
	VotesForB    int64  `json:"votes_b"`
}

func (e ContestSettledEvent) Type() EventType {
	return EventTypeContestSettled
}

// WinningsClaimedEvent is published when a winning wager is paid out
type WinningsClaimedEvent struct {
	ContestID int64  `json:"contest_id"`
	Bettor    string `json:"bettor"`
	Amount    int64  `json:"amount"`
	Payout    int64  `json:"payout"`
}

func (e WinningsClaimedEvent) Type() EventType {
	return EventTypeWinningsClaimed
}
