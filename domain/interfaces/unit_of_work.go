package interfaces

import "context"

// UnitOfWork scopes a set of repositories to one guild and one database
// transaction. Every user action and scheduled tick runs inside exactly one
// unit of work: commit publishes the batched domain events, rollback discards
// them, so no operation is ever left half-done.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	BetRepository() BetRepository
	RevolutionRepository() RevolutionRepository
	GuildSettingsRepository() GuildSettingsRepository

	EventPublisher() EventPublisher
}

// UnitOfWorkFactory creates guild-scoped units of work
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}

// TransactionalEventPublisher buffers events during a transaction. Flush is
// called after a successful commit, Discard on rollback.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
