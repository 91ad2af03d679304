package infrastructure

import (
	"context"

	"arenaapp/application"
	"arenaapp/domain/interfaces"
)

// unitOfWork wraps the repository UnitOfWork and flushes events after commit
type unitOfWork struct {
	inner                  application.UnitOfWork
	transactionalPublisher *NATSTransactionalPublisher
	ctx                    context.Context
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	u.ctx = ctx
	return u.inner.Begin(ctx)
}

// Commit commits the transaction and flushes events on success
func (u *unitOfWork) Commit() error {
	if err := u.inner.Commit(); err != nil {
		u.transactionalPublisher.Discard()
		return err
	}

	// events are best-effort once the transaction committed
	_ = u.transactionalPublisher.Flush(u.ctx)
	return nil
}

// Rollback discards pending events and rolls back the transaction
func (u *unitOfWork) Rollback() error {
	u.transactionalPublisher.Discard()
	return u.inner.Rollback()
}

func (u *unitOfWork) ArenaRepository() interfaces.ArenaRepository {
	return u.inner.ArenaRepository()
}

func (u *unitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	return u.inner.ParticipantRepository()
}

func (u *unitOfWork) ContestRepository() interfaces.ContestRepository {
	return u.inner.ContestRepository()
}

func (u *unitOfWork) WagerRepository() interfaces.WagerRepository {
	return u.inner.WagerRepository()
}

func (u *unitOfWork) EscrowRepository() interfaces.EscrowRepository {
	return u.inner.EscrowRepository()
}

func (u *unitOfWork) TransferRepository() interfaces.TransferRepository {
	return u.inner.TransferRepository()
}

// EventBus returns the transactional event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
