package entities

import (
	"fmt"
	"time"
)

// Account is a logical account name understood by the funds transfer collaborator
type Account string

// UserAccount is the account of an identity
func UserAccount(identity string) Account {
	return Account("user:" + identity)
}

// EscrowAccount is the account holding the funds of one contest
func EscrowAccount(contestID int64) Account {
	return Account(fmt.Sprintf("escrow:%d", contestID))
}

// TreasuryAccount is the account receiving settlement fees
func TreasuryAccount(name string) Account {
	return Account("treasury:" + name)
}

// TransferReason records why funds moved
type TransferReason string

const (
	TransferReasonStake  TransferReason = "stake"
	TransferReasonWager  TransferReason = "wager"
	TransferReasonFee    TransferReason = "fee"
	TransferReasonPayout TransferReason = "payout"
	TransferReasonRefund TransferReason = "refund"
)

// Transfer is one entry in the funds movement journal
type Transfer struct {
	ID        int64          `db:"id"`
	ContestID int64          `db:"contest_id"`
	From      Account        `db:"from_account"`
	To        Account        `db:"to_account"`
	Amount    int64          `db:"amount"`
	Reason    TransferReason `db:"reason"`
	CreatedAt time.Time      `db:"created_at"`
}

// Escrow is the balance currently held for one contest
type Escrow struct {
	ContestID int64     `db:"contest_id"`
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}
