package events

import "eddies/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeAccountCreated     EventType = "account_created"
	EventTypeStakePlaced        EventType = "stake_placed"
	EventTypeBetStateChange     EventType = "bet_state_change"
	EventTypeBetSettled         EventType = "bet_settled"
	EventTypeRevolutionResolved EventType = "revolution_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	DiscordID       int64
	GuildID         int64
	OldBalance      int64
	NewBalance      int64
	TransactionType entities.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new account creation
type AccountCreatedEvent struct {
	DiscordID      int64
	GuildID        int64
	InitialBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// StakePlacedEvent represents eddies placed on a bet
type StakePlacedEvent struct {
	DiscordID  int64
	GuildID    int64
	BetID      string
	OutcomeKey string
	Amount     int64
}

func (e StakePlacedEvent) Type() EventType {
	return EventTypeStakePlaced
}

// BetStateChangeEvent represents a bet lifecycle transition
type BetStateChangeEvent struct {
	BetID     string
	GuildID   int64
	OldState  string
	NewState  string
	MessageID int64
	ChannelID int64
}

func (e BetStateChangeEvent) Type() EventType {
	return EventTypeBetStateChange
}

// BetSettledEvent represents a bet that paid out
type BetSettledEvent struct {
	BetID    string
	GuildID  int64
	Result   string
	Winners  int
	Losers   int
	TotalPot int64
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// RevolutionResolvedEvent represents a resolved uprising
type RevolutionResolvedEvent struct {
	EventID  int64
	GuildID  int64
	Success  bool
	KingLoss int64
}

func (e RevolutionResolvedEvent) Type() EventType {
	return EventTypeRevolutionResolved
}
