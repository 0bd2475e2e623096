package repository

import (
	"context"
	"testing"

	"eddies/domain/entities"
	"eddies/domain/events"
	"eddies/domain/interfaces"
	"eddies/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	pending []events.Event
	flushed []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.pending...)
	p.pending = p.pending[:0]
	return nil
}

func (p *recordingPublisher) Discard() {
	p.pending = p.pending[:0]
}

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	publisher := &recordingPublisher{}
	factory := NewUnitOfWorkFactory(testDB.DB, func() interfaces.TransactionalEventPublisher {
		return publisher
	})

	uow := factory.CreateForGuild(testGuildID)
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, 100, entities.StartingBalance)
	require.NoError(t, err)
	require.NoError(t, uow.EventPublisher().Publish(events.AccountCreatedEvent{
		DiscordID: 100, GuildID: testGuildID, InitialBalance: entities.StartingBalance,
	}))

	assert.Empty(t, publisher.flushed)
	require.NoError(t, uow.Commit())
	assert.Len(t, publisher.flushed, 1)

	// The committed row is visible outside the transaction
	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	account, err := repo.GetByDiscordID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, account)
}

func TestUnitOfWork_RollbackDiscardsEverything(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	publisher := &recordingPublisher{}
	factory := NewUnitOfWorkFactory(testDB.DB, func() interfaces.TransactionalEventPublisher {
		return publisher
	})

	uow := factory.CreateForGuild(testGuildID)
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, 100, entities.StartingBalance)
	require.NoError(t, err)
	require.NoError(t, uow.EventPublisher().Publish(events.AccountCreatedEvent{
		DiscordID: 100, GuildID: testGuildID, InitialBalance: entities.StartingBalance,
	}))

	require.NoError(t, uow.Rollback())
	assert.Empty(t, publisher.flushed)
	assert.Empty(t, publisher.pending)

	repo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	account, err := repo.GetByDiscordID(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestTransactionRepository_LedgerRoundTrip(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	accountRepo := NewAccountRepositoryScoped(testDB.DB.Pool, testGuildID)
	txRepo := NewTransactionRepositoryScoped(testDB.DB.Pool, testGuildID)

	_, err := accountRepo.Create(ctx, 100, 0)
	require.NoError(t, err)

	betID := "0001"
	comment := "won big"
	for _, entry := range []*entities.TransactionEntry{
		{DiscordID: 100, Type: entities.TransactionTypeDailySalary, Amount: 50},
		{DiscordID: 100, Type: entities.TransactionTypeBetPlace, Amount: -20, BetID: &betID},
		{DiscordID: 100, Type: entities.TransactionTypeBetWin, Amount: 40, BetID: &betID, Comment: &comment},
	} {
		require.NoError(t, txRepo.Record(ctx, entry))
		assert.NotZero(t, entry.ID)
	}

	sum, err := txRepo.SumByUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(70), sum)

	entries, err := txRepo.GetByUser(ctx, 100, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.TransactionTypeBetWin, entries[0].Type)
	require.NotNil(t, entries[0].Comment)
	assert.Equal(t, comment, *entries[0].Comment)

	betEntries, err := txRepo.GetByBet(ctx, betID)
	require.NoError(t, err)
	assert.Len(t, betEntries, 2)
}
