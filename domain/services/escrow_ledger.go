package services

import (
	"context"
	"fmt"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// EscrowLedger moves funds in and out of a contest's escrow and keeps the balance honest.
// Every movement is journalled through the TransferRepository and reflected in the escrow balance
// within the same transaction.
type EscrowLedger struct {
	escrowRepo   interfaces.EscrowRepository
	transferRepo interfaces.TransferRepository
}

// NewEscrowLedger creates a new escrow ledger
func NewEscrowLedger(escrowRepo interfaces.EscrowRepository, transferRepo interfaces.TransferRepository) *EscrowLedger {
	return &EscrowLedger{
		escrowRepo:   escrowRepo,
		transferRepo: transferRepo,
	}
}

// Open creates an empty escrow for a new contest
func (l *EscrowLedger) Open(ctx context.Context, contestID int64) error {
	if err := l.escrowRepo.Create(ctx, contestID); err != nil {
		return fmt.Errorf("failed to open escrow: %w", err)
	}
	return nil
}

// Deposit moves amount from an account into the contest escrow
func (l *EscrowLedger) Deposit(ctx context.Context, contestID int64, from entities.Account, amount int64, reason entities.TransferReason) (int64, error) {
	if amount <= 0 {
		return 0, entities.ErrInvalidAmount
	}

	if err := l.transferRepo.Transfer(ctx, &entities.Transfer{
		ContestID: contestID,
		From:      from,
		To:        entities.EscrowAccount(contestID),
		Amount:    amount,
		Reason:    reason,
	}); err != nil {
		return 0, fmt.Errorf("failed to transfer into escrow: %w", err)
	}

	balance, err := l.escrowRepo.Adjust(ctx, contestID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit escrow: %w", err)
	}

	log.WithFields(log.Fields{
		"contestID": contestID,
		"from":      from,
		"amount":    amount,
		"reason":    reason,
		"balance":   balance,
	}).Debug("Escrow deposit")

	return balance, nil
}

// Withdraw moves amount out of the contest escrow to an account.
// It fails with ErrEscrowOverdrawn if the escrow cannot cover the amount.
func (l *EscrowLedger) Withdraw(ctx context.Context, contestID int64, to entities.Account, amount int64, reason entities.TransferReason) (int64, error) {
	if amount <= 0 {
		return 0, entities.ErrInvalidAmount
	}

	escrow, err := l.escrowRepo.Get(ctx, contestID)
	if err != nil {
		return 0, fmt.Errorf("failed to get escrow: %w", err)
	}
	if escrow == nil || escrow.Balance < amount {
		return 0, entities.ErrEscrowOverdrawn
	}

	if err := l.transferRepo.Transfer(ctx, &entities.Transfer{
		ContestID: contestID,
		From:      entities.EscrowAccount(contestID),
		To:        to,
		Amount:    amount,
		Reason:    reason,
	}); err != nil {
		return 0, fmt.Errorf("failed to transfer out of escrow: %w", err)
	}

	balance, err := l.escrowRepo.Adjust(ctx, contestID, -amount)
	if err != nil {
		return 0, fmt.Errorf("failed to debit escrow: %w", err)
	}

	log.WithFields(log.Fields{
		"contestID": contestID,
		"to":        to,
		"amount":    amount,
		"reason":    reason,
		"balance":   balance,
	}).Debug("Escrow withdrawal")

	return balance, nil
}

// Balance returns the current escrow balance of a contest
func (l *EscrowLedger) Balance(ctx context.Context, contestID int64) (int64, error) {
	escrow, err := l.escrowRepo.Get(ctx, contestID)
	if err != nil {
		return 0, fmt.Errorf("failed to get escrow: %w", err)
	}
	if escrow == nil {
		return 0, nil
	}
	return escrow.Balance, nil
}

// VerifyPools checks the escrow holds exactly the contest's pools
func (l *EscrowLedger) VerifyPools(ctx context.Context, contest *entities.Contest) error {
	total, err := contest.TotalPool()
	if err != nil {
		return err
	}
	balance, err := l.Balance(ctx, contest.ID)
	if err != nil {
		return err
	}
	if balance != total {
		log.WithFields(log.Fields{
			"contestID": contest.ID,
			"balance":   balance,
			"pools":     total,
		}).Error("Escrow does not match contest pools")
		return entities.ErrEscrowMismatch
	}
	return nil
}
