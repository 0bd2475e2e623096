package infrastructure

import (
	"context"
	"testing"

	"eddies/domain/entities"
	"eddies/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPublisher records published events for assertions
type capturingPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *capturingPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestTransactionalPublisher_FlushPublishesQueuedEvents(t *testing.T) {
	real := &capturingPublisher{}
	publisher := NewTransactionalPublisher(real)

	testEvent := events.BalanceChangeEvent{
		DiscordID:       123,
		GuildID:         456,
		OldBalance:      100,
		NewBalance:      140,
		TransactionType: entities.TransactionTypeBetWin,
		ChangeAmount:    40,
	}

	err := publisher.Publish(testEvent)
	require.NoError(t, err)

	// Nothing reaches the real publisher until flush
	assert.Len(t, real.PublishedEvents, 0)

	err = publisher.Flush(context.Background())
	require.NoError(t, err)

	require.Len(t, real.PublishedEvents, 1)
	assert.Equal(t, testEvent, real.PublishedEvents[0])
}

func TestTransactionalPublisher_FlushContinuesPastFailures(t *testing.T) {
	real := &capturingPublisher{PublishError: assert.AnError}
	publisher := NewTransactionalPublisher(real)

	require.NoError(t, publisher.Publish(events.AccountCreatedEvent{DiscordID: 1, GuildID: 2, InitialBalance: 100}))
	require.NoError(t, publisher.Publish(events.BetSettledEvent{BetID: "0001", GuildID: 2}))

	// Flush itself succeeds even when the real publisher rejects everything
	err := publisher.Flush(context.Background())
	require.NoError(t, err)

	// Queue is drained either way
	err = publisher.Flush(context.Background())
	require.NoError(t, err)
	assert.Len(t, real.PublishedEvents, 0)
}

func TestTransactionalPublisher_DiscardDropsQueuedEvents(t *testing.T) {
	real := &capturingPublisher{}
	publisher := NewTransactionalPublisher(real)

	testEvent := events.StakePlacedEvent{
		DiscordID:  123,
		GuildID:    456,
		BetID:      "0007",
		OutcomeKey: "a",
		Amount:     50,
	}

	require.NoError(t, publisher.Publish(testEvent))

	publisher.Discard()

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Len(t, real.PublishedEvents, 0)
}
