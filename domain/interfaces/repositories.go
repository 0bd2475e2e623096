package interfaces

import (
	"context"
	"time"

	"eddies/domain/entities"
	"eddies/domain/events"
)

// AccountRepository defines guild-scoped access to eddies accounts. Every
// balance mutation is a single atomic statement on the account row; the
// high-water mark is refreshed inside the same statement.
type AccountRepository interface {
	// GetByDiscordID retrieves an account, or nil if none exists
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error)

	// Create creates a new account with the initial balance
	Create(ctx context.Context, discordID int64, initialBalance int64) (*entities.Account, error)

	// AdjustBalance atomically applies a delta and refreshes the high score,
	// returning the updated account
	AdjustBalance(ctx context.Context, discordID int64, delta int64) (*entities.Account, error)

	// TryDebit atomically subtracts amount only if the balance covers it.
	// The boolean reports whether the debit happened.
	TryDebit(ctx context.Context, discordID int64, amount int64) (*entities.Account, bool, error)

	// SetBalance sets the balance to an absolute value, refreshing the high score
	SetBalance(ctx context.Context, discordID int64, value int64) (*entities.Account, error)

	// SetDailyMinimum sets the daily salary floor
	SetDailyMinimum(ctx context.Context, discordID int64, value int64) error

	// DecayDailyMinimum decrements the salary floor by one, never below zero
	DecayDailyMinimum(ctx context.Context, discordID int64) error

	// SetActive flags the account active or inactive
	SetActive(ctx context.Context, discordID int64, active bool) error

	// GetAllActive returns all active accounts in the guild
	GetAllActive(ctx context.Context) ([]*entities.Account, error)

	// GetTopBalances returns active accounts ordered by balance
	GetTopBalances(ctx context.Context, limit int) ([]*entities.Account, error)

	// GetTopHighScores returns accounts ordered by historical high score
	GetTopHighScores(ctx context.Context, limit int) ([]*entities.Account, error)
}

// TransactionRepository defines access to the append-only ledger
type TransactionRepository interface {
	// Record appends a new ledger entry
	Record(ctx context.Context, entry *entities.TransactionEntry) error

	// GetByUser returns a user's entries, newest first
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionEntry, error)

	// GetByBet returns all entries referencing a bet
	GetByBet(ctx context.Context, betID string) ([]*entities.TransactionEntry, error)

	// SumByUser replays the ledger: the sum of all entry amounts for an
	// account, which must equal its current balance
	SumByUser(ctx context.Context, discordID int64) (int64, error)
}

// BetRepository defines guild-scoped access to bets, options and stakes
type BetRepository interface {
	// NextBetID atomically draws the next 4-digit bet ID from the guild counter
	NextBetID(ctx context.Context) (string, error)

	// CreateWithOptions creates a bet and its options atomically
	CreateWithOptions(ctx context.Context, bet *entities.Bet, options []*entities.BetOption) error

	// GetDetailByBetID returns a bet with options and stakes, or nil
	GetDetailByBetID(ctx context.Context, betID string) (*entities.BetDetail, error)

	// Update updates a bet's mutable fields (state, message ids, timeout)
	Update(ctx context.Context, bet *entities.Bet) error

	// ClaimSettle atomically flips the bet to settled with the given result.
	// Returns false when the bet was already settled, which makes double
	// settlement impossible no matter how many closers race.
	ClaimSettle(ctx context.Context, id int64, result string, closedAt time.Time) (bool, error)

	// CreateStake records a better's first stake on a bet
	CreateStake(ctx context.Context, stake *entities.BetStake) error

	// IncrementStake atomically grows an existing stake
	IncrementStake(ctx context.Context, stakeID int64, amount int64, lastBetAt time.Time) error

	// CountOpenByCreator counts a creator's bets that are not yet settled
	CountOpenByCreator(ctx context.Context, creatorDiscordID int64) (int, error)

	// GetOpenBets returns all open bets in the guild
	GetOpenBets(ctx context.Context) ([]*entities.Bet, error)

	// GetExpiredOpenBets returns open bets whose timeout has passed
	GetExpiredOpenBets(ctx context.Context, now time.Time) ([]*entities.Bet, error)
}

// RevolutionRepository defines guild-scoped access to revolution events
type RevolutionRepository interface {
	// CreateEvent creates a new open event
	CreateEvent(ctx context.Context, event *entities.RevolutionEvent) error

	// GetOpenEvent returns the guild's open event with participants, or nil
	GetOpenEvent(ctx context.Context) (*entities.RevolutionDetail, error)

	// GetDetailByID returns an event with participants, or nil
	GetDetailByID(ctx context.Context, id int64) (*entities.RevolutionDetail, error)

	// Update updates an event's mutable fields
	Update(ctx context.Context, event *entities.RevolutionEvent) error

	// ClaimResolve atomically flips the event to resolved. Returns false when
	// it was already resolved.
	ClaimResolve(ctx context.Context, id int64, success bool, resolvedAt time.Time) (bool, error)

	// SaveParticipant records or re-sides a participant
	SaveParticipant(ctx context.Context, participant *entities.RevolutionParticipant) error
}

// GuildSettingsRepository defines access to per-guild settings
type GuildSettingsRepository interface {
	// GetOrCreate retrieves the guild settings, creating defaults if absent
	GetOrCreate(ctx context.Context) (*entities.GuildSettings, error)

	// Update updates guild settings
	Update(ctx context.Context, settings *entities.GuildSettings) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}
