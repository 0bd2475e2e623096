package repository

import (
	"context"
	"fmt"

	"eddies/database"
	"eddies/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db        *database.DB
	tx        pgx.Tx
	ctx       context.Context
	guildID   int64
	publisher interfaces.TransactionalEventPublisher

	accountRepo     interfaces.AccountRepository
	transactionRepo interfaces.TransactionRepository
	betRepo         interfaces.BetRepository
	revolutionRepo  interfaces.RevolutionRepository
	settingsRepo    interfaces.GuildSettingsRepository
}

type unitOfWorkFactory struct {
	db           *database.DB
	newPublisher func() interfaces.TransactionalEventPublisher
}

// NewUnitOfWorkFactory creates a factory producing guild-scoped units of
// work. newPublisher is called once per unit of work so each transaction gets
// its own pending-event buffer.
func NewUnitOfWorkFactory(db *database.DB, newPublisher func() interfaces.TransactionalEventPublisher) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:           db,
		newPublisher: newPublisher,
	}
}

// CreateForGuild creates a new unit of work scoped to one guild
func (f *unitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	return &unitOfWork{
		db:        f.db,
		guildID:   guildID,
		publisher: f.newPublisher(),
	}
}

// Begin starts the transaction and binds the guild-scoped repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = NewAccountRepositoryScoped(tx, u.guildID)
	u.transactionRepo = NewTransactionRepositoryScoped(tx, u.guildID)
	u.betRepo = NewBetRepositoryScoped(tx, u.guildID)
	u.revolutionRepo = NewRevolutionRepositoryScoped(tx, u.guildID)
	u.settingsRepo = NewGuildSettingsRepositoryScoped(tx, u.guildID)

	return nil
}

// Commit commits the transaction and flushes the buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.publisher != nil {
		u.publisher.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and discards the buffered events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	if u.publisher != nil {
		u.publisher.Discard()
	}
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// RevolutionRepository returns the revolution repository for this unit of work
func (u *unitOfWork) RevolutionRepository() interfaces.RevolutionRepository {
	if u.revolutionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.revolutionRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	if u.settingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settingsRepo
}

// EventPublisher returns the transaction-scoped event publisher
func (u *unitOfWork) EventPublisher() interfaces.EventPublisher {
	return u.publisher
}
