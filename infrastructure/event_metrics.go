package infrastructure

import (
	"context"

	"eddies/domain/events"
	"eddies/infrastructure/observability"
)

// RegisterMetricsHandlers wires domain events into the metrics provider.
// Handlers run in-process on every publish, so counters stay accurate even
// when NATS drops the message.
func RegisterMetricsHandlers(publisher *NATSEventPublisher, metrics *observability.MetricsProvider) {
	publisher.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			metrics.RecordBalanceTransaction(e.TransactionType.String(), e.ChangeAmount)
		}
		return nil
	})

	publisher.RegisterLocalHandler(events.EventTypeStakePlaced, func(ctx context.Context, event events.Event) error {
		metrics.RecordStakePlaced()
		return nil
	})

	publisher.RegisterLocalHandler(events.EventTypeBetStateChange, func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.BetStateChangeEvent)
		if !ok {
			return nil
		}
		switch {
		case e.OldState == "" && e.NewState == "open":
			metrics.UpdateActiveBets(1)
		case e.NewState == "settled":
			metrics.UpdateActiveBets(-1)
		}
		return nil
	})

	publisher.RegisterLocalHandler(events.EventTypeBetSettled, func(ctx context.Context, event events.Event) error {
		metrics.RecordBetSettled()
		return nil
	})

	publisher.RegisterLocalHandler(events.EventTypeRevolutionResolved, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.RevolutionResolvedEvent); ok {
			metrics.RecordRevolutionResolved(e.Success)
		}
		return nil
	})
}
