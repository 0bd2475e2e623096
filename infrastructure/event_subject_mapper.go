package infrastructure

import (
	"fmt"

	"eddies/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "accounts.balance_changed"
	case events.EventTypeAccountCreated:
		return "accounts.created"
	case events.EventTypeStakePlaced:
		return "bets.stake_placed"
	case events.EventTypeBetStateChange:
		return "bets.state_changed"
	case events.EventTypeBetSettled:
		return "bets.settled"
	case events.EventTypeRevolutionResolved:
		return "revolutions.resolved"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "accounts.balance_changed":
		return events.EventTypeBalanceChange
	case "accounts.created":
		return events.EventTypeAccountCreated
	case "bets.stake_placed":
		return events.EventTypeStakePlaced
	case "bets.state_changed":
		return events.EventTypeBetStateChange
	case "bets.settled":
		return events.EventTypeBetSettled
	case "revolutions.resolved":
		return events.EventTypeRevolutionResolved
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"accounts.balance_changed",
		"accounts.created",
		"bets.stake_placed",
		"bets.state_changed",
		"bets.settled",
		"revolutions.resolved",
	}
}
